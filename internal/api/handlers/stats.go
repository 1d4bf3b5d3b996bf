package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myradio/internal/models"
	"myradio/internal/stats"
)

// StatsView is the stats record plus the formatted uptime.
type StatsView struct {
	models.StatsRecord
	Uptime      string `json:"uptime"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

func (h *RadioHandler) GetStats(c *gin.Context) {
	record, err := h.reader.Stats(c.Request.Context())
	if err != nil {
		unavailable(c, err, StatsView{Uptime: "0m", Unavailable: true})
		return
	}
	c.JSON(http.StatusOK, StatsView{
		StatsRecord: record,
		Uptime:      stats.FormatUptime(record.StreamUptimeSeconds),
	})
}
