package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"myradio/internal/models"
)

// GetHistory returns the most recent plays, newest first.
// ?limit=N picks the size (default 20, max 100).
func (h *RadioHandler) GetHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	records, err := h.reader.History(c.Request.Context(), limit)
	if err != nil {
		unavailable(c, err, unavailableList[models.TrackRecord]())
		return
	}
	c.JSON(http.StatusOK, records)
}
