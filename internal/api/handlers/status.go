package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myradio/internal/query"
)

func (h *RadioHandler) GetStreamStatus(c *gin.Context) {
	view, err := h.reader.StreamStatus(c.Request.Context())
	if err != nil {
		h.statusUnavailable(c, err, "Failed to fetch stream status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": view})
}

// RefreshStreamStatus drops the cached status and reads it again.
func (h *RadioHandler) RefreshStreamStatus(c *gin.Context) {
	h.reader.Refresh(query.KindCurrentTrack)
	h.reader.Refresh(query.KindStats)
	h.reader.Refresh(query.KindStreamStatus)

	view, err := h.reader.StreamStatus(c.Request.Context())
	if err != nil {
		h.statusUnavailable(c, err, "Failed to refresh stream status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cache refreshed", "data": view})
}

func (h *RadioHandler) statusUnavailable(c *gin.Context, err error, msg string) {
	view := h.reader.OfflineStatus()
	view.Unavailable = true
	unavailable(c, err, gin.H{
		"success":     false,
		"error":       msg,
		"unavailable": true,
		"data":        view,
	})
}
