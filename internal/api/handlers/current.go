package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myradio/internal/query"
)

// GetCurrent returns the player view of what is on air.
func (h *RadioHandler) GetCurrent(c *gin.Context) {
	current, err := h.reader.CurrentTrack(c.Request.Context())
	if err != nil {
		v := h.reader.IdlePlayer(query.UnavailableTitle)
		v.Unavailable = true
		unavailable(c, err, v)
		return
	}
	c.JSON(http.StatusOK, h.reader.Player(current))
}

// PostCurrent handles the player controls. On a live relay "play" and
// "pause" only change isPlaying; every action re-reads the current track.
func (h *RadioHandler) PostCurrent(c *gin.Context) {
	var input struct {
		Action string `json:"action"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	switch input.Action {
	case "play", "pause", "refresh":
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action not supported for live streams"})
		return
	}

	h.reader.Refresh(query.KindCurrentTrack)
	current, err := h.reader.CurrentTrack(c.Request.Context())
	if err != nil {
		v := h.reader.IdlePlayer(query.UnavailableTitle)
		v.Unavailable = true
		unavailable(c, err, v)
		return
	}

	v := h.reader.Player(current)
	if input.Action != "refresh" {
		v.IsPlaying = input.Action == "play" && v.IsLive
	}
	c.JSON(http.StatusOK, v)
}
