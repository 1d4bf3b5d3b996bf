package handlers

import (
	"net/http"
	"net/netip"

	"github.com/gin-gonic/gin"

	"myradio/internal/listeners"
	"myradio/internal/models"
)

func (h *RadioHandler) GetListeners(c *gin.Context) {
	roster, err := h.reader.Listeners(c.Request.Context())
	if err != nil {
		unavailable(c, err, unavailableList[models.Listener]())
		return
	}
	c.JSON(http.StatusOK, roster)
}

// PostListeners handles {"action": "connect"|"disconnect", ...}.
func (h *RadioHandler) PostListeners(c *gin.Context) {
	var input struct {
		Action   string `json:"action"`
		ID       string `json:"id"`
		Name     string `json:"name"`
		Avatar   string `json:"avatar"`
		Location string `json:"location"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	var (
		listener *models.Listener
		found    = true
		err      error
	)

	switch input.Action {
	case "connect":
		addr, _ := netip.ParseAddr(c.ClientIP())
		var l models.Listener
		l, err = h.roster.Connect(ctx, listeners.ConnectRequest{
			ID:       input.ID,
			Name:     input.Name,
			Avatar:   input.Avatar,
			Location: input.Location,
			Addr:     addr,
		})
		listener = &l
	case "disconnect":
		if input.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
			return
		}
		found, err = h.roster.Disconnect(ctx, input.ID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
		return
	}
	if err != nil {
		unavailable(c, err, gin.H{"success": false, "unavailable": true})
		return
	}

	roster, err := h.reader.Listeners(ctx)
	if err != nil {
		roster = []models.Listener{}
	}
	body := gin.H{"success": found, "listeners": roster}
	if listener != nil {
		body["listener"] = listener
	}
	c.JSON(http.StatusOK, body)
}
