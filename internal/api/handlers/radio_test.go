package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"myradio/internal/clock"
	"myradio/internal/listeners"
	"myradio/internal/models"
	"myradio/internal/query"
	"myradio/internal/storage"
	"myradio/internal/store"
)

var start = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type brokenBackend struct{}

func (brokenBackend) Load(context.Context, store.Document) ([]byte, error) {
	return nil, errors.New("disk gone")
}
func (brokenBackend) Save(context.Context, store.Document, []byte) error {
	return errors.New("disk gone")
}

type fakeRoster struct {
	connected []listeners.ConnectRequest
	known     map[string]bool
}

func (f *fakeRoster) Connect(_ context.Context, req listeners.ConnectRequest) (models.Listener, error) {
	f.connected = append(f.connected, req)
	return models.Listener{ID: "new-id", Name: "Listener", Avatar: "L", JoinedAt: start}, nil
}

func (f *fakeRoster) Disconnect(_ context.Context, id string) (bool, error) {
	return f.known[id], nil
}

func setupRouter(t *testing.T, backend store.Backend) (*gin.Engine, *store.Store, *fakeRoster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if backend == nil {
		backend = store.NewObjectBackend(storage.NewClient(storage.NewLocalProvider(t.TempDir()), "", ""))
	}
	st := store.New(backend)
	svc := query.New(st, query.Options{
		StreamURL: "http://localhost:8000/stream",
		Host:      "localhost",
		Clock:     clock.NewMock(start),
	})
	roster := &fakeRoster{known: map[string]bool{"abc": true}}
	h := NewRadioHandler(svc, roster)

	r := gin.New()
	api := r.Group("/api/radio")
	api.GET("/current", h.GetCurrent)
	api.POST("/current", h.PostCurrent)
	api.GET("/stream-status", h.GetStreamStatus)
	api.POST("/stream-status", h.RefreshStreamStatus)
	api.GET("/history", h.GetHistory)
	api.GET("/stats", h.GetStats)
	api.GET("/listeners", h.GetListeners)
	api.POST("/listeners", h.PostListeners)
	api.GET("/playlist", h.GetPlaylist)
	api.POST("/playlist", h.PostPlaylist)
	return r, st, roster
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func writeLive(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	started := start.Add(-5 * time.Minute)
	st.Write(ctx, store.CurrentTrack, models.CurrentTrackDocument{
		StreamStatus: models.StreamStatus{
			IsOnline:        true,
			CurrentTrack:    &models.TrackInfo{Title: "Bohemian Rhapsody", Artist: "Queen"},
			Listeners:       42,
			Bitrate:         128,
			StreamStartedAt: &started,
			Server:          models.ServerInfo{Version: "Icecast 2.4.4", Location: "Madrid"},
		},
		State:     models.StateLive,
		UpdatedAt: start,
	})
	st.Write(ctx, store.Stats, models.StatsRecord{TotalListeners: 42, PeakListeners: 57, StreamUptimeSeconds: 3900})
}

func TestGetCurrent(t *testing.T) {
	r, st, _ := setupRouter(t, nil)

	w := do(r, http.MethodGet, "/api/radio/current", "")
	var idle query.PlayerView
	decode(t, w, &idle)
	if w.Code != http.StatusOK || idle.Title != "Waiting for broadcast..." || idle.Artist != "MyRadio" || idle.IsLive {
		t.Errorf("before first sync: %d %+v", w.Code, idle)
	}

	writeLive(t, st)
	w = do(r, http.MethodPost, "/api/radio/current", `{"action":"refresh"}`)
	var live query.PlayerView
	decode(t, w, &live)
	if !live.IsLive || !live.IsPlaying || live.Title != "Bohemian Rhapsody" || live.Listeners != 42 {
		t.Errorf("live player = %+v", live)
	}
}

func TestPostCurrent_Actions(t *testing.T) {
	r, st, _ := setupRouter(t, nil)
	writeLive(t, st)

	tests := []struct {
		body        string
		wantCode    int
		wantPlaying bool
	}{
		{`{"action":"play"}`, http.StatusOK, true},
		{`{"action":"pause"}`, http.StatusOK, false},
		{`{"action":"skip"}`, http.StatusBadRequest, false},
		{`not json`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		w := do(r, http.MethodPost, "/api/radio/current", tt.body)
		if w.Code != tt.wantCode {
			t.Errorf("%s: code = %d; want %d", tt.body, w.Code, tt.wantCode)
			continue
		}
		if w.Code == http.StatusOK {
			var v query.PlayerView
			decode(t, w, &v)
			if v.IsPlaying != tt.wantPlaying {
				t.Errorf("%s: isPlaying = %v", tt.body, v.IsPlaying)
			}
		}
	}
}

func TestGetStreamStatus(t *testing.T) {
	r, st, _ := setupRouter(t, nil)
	writeLive(t, st)

	w := do(r, http.MethodGet, "/api/radio/stream-status", "")
	var body struct {
		Success bool                   `json:"success"`
		Data    query.StreamStatusView `json:"data"`
	}
	decode(t, w, &body)
	if !body.Success || !body.Data.IsOnline || body.Data.PeakListeners != 57 || body.Data.Uptime != "5m" {
		t.Errorf("stream-status = %+v", body)
	}
	if body.Data.ServerInfo.Host != "localhost" || body.Data.StreamURL != "http://localhost:8000/stream" {
		t.Errorf("server info = %+v", body.Data)
	}

	w = do(r, http.MethodPost, "/api/radio/stream-status", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Cache refreshed") {
		t.Errorf("refresh = %d %s", w.Code, w.Body.String())
	}
}

func TestGetHistory_Limit(t *testing.T) {
	r, st, _ := setupRouter(t, nil)
	records := make([]models.TrackRecord, 50)
	for i := range records {
		records[i] = models.TrackRecord{ID: string(rune('a' + i%26)), Title: "Song"}
	}
	st.Write(context.Background(), store.History, records)

	tests := map[string]int{
		"/api/radio/history":           20,
		"/api/radio/history?limit=5":   5,
		"/api/radio/history?limit=abc": 20,
		"/api/radio/history?limit=500": 50,
	}
	for path, want := range tests {
		var got []models.TrackRecord
		decode(t, do(r, http.MethodGet, path, ""), &got)
		if len(got) != want {
			t.Errorf("%s: %d records; want %d", path, len(got), want)
		}
	}
}

func TestGetStats(t *testing.T) {
	r, st, _ := setupRouter(t, nil)
	writeLive(t, st)

	var v StatsView
	decode(t, do(r, http.MethodGet, "/api/radio/stats", ""), &v)
	if v.PeakListeners != 57 || v.Uptime != "1h 5m" {
		t.Errorf("stats = %+v", v)
	}
}

func TestPostListeners(t *testing.T) {
	r, _, roster := setupRouter(t, nil)

	w := do(r, http.MethodPost, "/api/radio/listeners", `{"action":"connect","name":"Ana"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("connect = %d %s", w.Code, w.Body.String())
	}
	if len(roster.connected) != 1 || roster.connected[0].Name != "Ana" {
		t.Errorf("roster saw %+v", roster.connected)
	}
	var body struct {
		Success  bool            `json:"success"`
		Listener models.Listener `json:"listener"`
	}
	decode(t, w, &body)
	if !body.Success || body.Listener.ID != "new-id" {
		t.Errorf("connect body = %+v", body)
	}

	w = do(r, http.MethodPost, "/api/radio/listeners", `{"action":"disconnect","id":"zzz"}`)
	decode(t, w, &body)
	if w.Code != http.StatusOK || body.Success {
		t.Errorf("unknown disconnect = %d %s", w.Code, w.Body.String())
	}

	if w := do(r, http.MethodPost, "/api/radio/listeners", `{"action":"wave"}`); w.Code != http.StatusBadRequest {
		t.Errorf("unknown action = %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/api/radio/listeners", `{"action":"disconnect"}`); w.Code != http.StatusBadRequest {
		t.Errorf("disconnect without id = %d", w.Code)
	}
}

func TestPlaylist(t *testing.T) {
	r, _, _ := setupRouter(t, nil)

	w := do(r, http.MethodPost, "/api/radio/playlist", `{"playlist":[{"id":1,"title":"Teardrop","artist":"Massive Attack","album":"Mezzanine","duration":330}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST playlist = %d %s", w.Code, w.Body.String())
	}

	var got []models.PlaylistEntry
	decode(t, do(r, http.MethodGet, "/api/radio/playlist", ""), &got)
	if len(got) != 1 || got[0].Title != "Teardrop" || got[0].Duration != 330 {
		t.Errorf("playlist = %+v", got)
	}

	// No playlist field: unchanged.
	do(r, http.MethodPost, "/api/radio/playlist", `{}`)
	decode(t, do(r, http.MethodGet, "/api/radio/playlist", ""), &got)
	if len(got) != 1 {
		t.Errorf("empty POST changed the playlist: %+v", got)
	}
}

func TestUnavailable(t *testing.T) {
	r, _, _ := setupRouter(t, brokenBackend{})

	paths := []string{
		"/api/radio/current",
		"/api/radio/stream-status",
		"/api/radio/history",
		"/api/radio/stats",
		"/api/radio/listeners",
		"/api/radio/playlist",
	}
	for _, p := range paths {
		w := do(r, http.MethodGet, p, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: code = %d; want 503", p, w.Code)
		}
		var body map[string]any
		decode(t, w, &body)
		if body["unavailable"] != true {
			t.Errorf("%s: body %s lacks unavailable:true", p, w.Body.String())
		}
	}

	var v query.PlayerView
	decode(t, do(r, http.MethodGet, "/api/radio/current", ""), &v)
	if v.Title != "Service Unavailable" || v.Artist != "MyRadio" {
		t.Errorf("fallback player = %+v", v)
	}
}

func TestUnavailable_AttachesError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := query.New(store.New(brokenBackend{}), query.Options{Clock: clock.NewMock(start)})
	h := NewRadioHandler(svc, &fakeRoster{})

	var attached []string
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Next()
		attached = c.Errors.Errors()
	})
	r.GET("/stats", h.GetStats)

	w := do(r, http.MethodGet, "/stats", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d; want 503", w.Code)
	}
	if len(attached) != 1 || !strings.Contains(attached[0], "disk gone") {
		t.Errorf("attached errors = %v", attached)
	}
}
