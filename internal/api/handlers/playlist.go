package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myradio/internal/models"
)

func (h *RadioHandler) GetPlaylist(c *gin.Context) {
	playlist, err := h.reader.Playlist(c.Request.Context())
	if err != nil {
		unavailable(c, err, unavailableList[models.PlaylistEntry]())
		return
	}
	c.JSON(http.StatusOK, playlist)
}

// PostPlaylist replaces the whole playlist with {"playlist": [...]}.
// A body without a playlist array leaves it unchanged.
func (h *RadioHandler) PostPlaylist(c *gin.Context) {
	var input struct {
		Playlist []models.PlaylistEntry `json:"playlist"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid playlist"})
		return
	}

	ctx := c.Request.Context()
	if input.Playlist != nil {
		if err := h.reader.ReplacePlaylist(ctx, input.Playlist); err != nil {
			unavailable(c, err, gin.H{"success": false, "unavailable": true, "playlist": []models.PlaylistEntry{}})
			return
		}
	}

	playlist, err := h.reader.Playlist(ctx)
	if err != nil {
		unavailable(c, err, gin.H{"success": false, "unavailable": true, "playlist": []models.PlaylistEntry{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "playlist": playlist})
}
