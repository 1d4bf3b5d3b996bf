package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"myradio/internal/listeners"
	"myradio/internal/models"
	"myradio/internal/query"
)

// Reader is the read side the handlers serve from.
type Reader interface {
	CurrentTrack(ctx context.Context) (models.CurrentTrackDocument, error)
	StreamStatus(ctx context.Context) (query.StreamStatusView, error)
	History(ctx context.Context, n int) ([]models.TrackRecord, error)
	Stats(ctx context.Context) (models.StatsRecord, error)
	Listeners(ctx context.Context) ([]models.Listener, error)
	Playlist(ctx context.Context) ([]models.PlaylistEntry, error)
	ReplacePlaylist(ctx context.Context, entries []models.PlaylistEntry) error
	Refresh(kind query.Kind) error

	Player(current models.CurrentTrackDocument) query.PlayerView
	IdlePlayer(title string) query.PlayerView
	OfflineStatus() query.StreamStatusView
}

// Roster accepts listener connects and disconnects.
type Roster interface {
	Connect(ctx context.Context, req listeners.ConnectRequest) (models.Listener, error)
	Disconnect(ctx context.Context, id string) (bool, error)
}

// RadioHandler serves /api/radio/*. Failures never surface as 500: the
// client gets the default payload marked "unavailable" with a 503.
type RadioHandler struct {
	reader Reader
	roster Roster
}

func NewRadioHandler(reader Reader, roster Roster) *RadioHandler {
	return &RadioHandler{reader: reader, roster: roster}
}

// unavailable attaches err to the request for the access log and answers
// 503 with payload.
func unavailable(c *gin.Context, err error, payload any) {
	c.Error(err)
	c.JSON(http.StatusServiceUnavailable, payload)
}

// unavailableList is the 503 body of the list endpoints.
func unavailableList[T any]() gin.H {
	return gin.H{"data": []T{}, "unavailable": true}
}
