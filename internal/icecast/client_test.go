package icecast

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const twoMounts = `{
  "icestats": {
    "admin": "icemaster@localhost",
    "host": "radio.example.org",
    "location": "Madrid",
    "server_id": "Icecast 2.4.4",
    "source": [
      {
        "mount": "/backup",
        "listeners": 1,
        "bitrate": 64,
        "samplerate": 22050,
        "title": "Backup - Loop"
      },
      {
        "mount": "/stream",
        "listeners": "42",
        "listener_peak": 57,
        "bitrate": "128",
        "samplerate": 44100,
        "genre": "Rock",
        "title": "Queen - Bohemian Rhapsody",
        "stream_start": "Mon, 15 Jan 2024 10:00:00 +0000",
        "stream_start_iso8601": "2024-01-15T10:00:00+0000"
      }
    ]
  }
}`

const oneMount = `{
  "icestats": {
    "server_id": "Icecast 2.4.4",
    "source": {
      "listenurl": "http://radio.example.org:8000/stream",
      "listeners": 3,
      "bitrate": 192,
      "samplerate": 48000
    }
  }
}`

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStatus_SelectsConfiguredMount(t *testing.T) {
	srv := serve(t, http.StatusOK, twoMounts)

	st, err := New(srv.URL, "/stream", "", time.Second).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if st.Source == nil {
		t.Fatal("Expected /stream to be selected, got nil source")
	}
	src := st.Source
	if src.Mount != "/stream" || src.Listeners != 42 || src.ListenerPeak != 57 || src.Bitrate != 128 || src.SampleRate != 44100 {
		t.Errorf("Unexpected source: %+v", src)
	}
	if !src.HasTitle || src.Title != "Queen - Bohemian Rhapsody" {
		t.Errorf("Title = %q (present=%v)", src.Title, src.HasTitle)
	}
	if st.Server.ServerID != "Icecast 2.4.4" || st.Server.Location != "Madrid" {
		t.Errorf("Unexpected server info: %+v", st.Server)
	}

	started, ok := src.StartedAt()
	if !ok || !started.Equal(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("StartedAt = %v, %v", started, ok)
	}
}

func TestFetchStatus_SingleSourceObject(t *testing.T) {
	srv := serve(t, http.StatusOK, oneMount)

	st, err := New(srv.URL, "/stream", "", time.Second).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if st.Source == nil {
		t.Fatal("Expected the single source to match via listenurl")
	}
	if st.Source.HasTitle {
		t.Error("Source without title should report HasTitle=false")
	}
	if _, ok := st.Source.StartedAt(); ok {
		t.Error("Source without stream_start should not report a start time")
	}
}

func TestFetchStatus_NoMatchingMountIsOffline(t *testing.T) {
	srv := serve(t, http.StatusOK, twoMounts)

	st, err := New(srv.URL, "/live", "", time.Second).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if st.Source != nil {
		t.Errorf("Expected nil source for unknown mount, got %+v", st.Source)
	}
}

func TestFetchStatus_NoSources(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"icestats":{"server_id":"Icecast 2.4.4"}}`)

	st, err := New(srv.URL, "", "", time.Second).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if st.Source != nil {
		t.Errorf("Expected nil source, got %+v", st.Source)
	}
}

func TestFetchStatus_EmptyMountPicksFirst(t *testing.T) {
	srv := serve(t, http.StatusOK, twoMounts)

	st, err := New(srv.URL, "", "", time.Second).FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if st.Source == nil || st.Source.Mount != "/backup" {
		t.Errorf("Expected first source, got %+v", st.Source)
	}
}

func TestFetchStatus_Errors(t *testing.T) {
	badStatus := serve(t, http.StatusInternalServerError, "oops")
	malformed := serve(t, http.StatusOK, `{"icestats": {"source": [`)
	badCount := serve(t, http.StatusOK, `{"icestats": {"source": {"mount": "/stream", "listeners": "many"}}}`)

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		slow.Close()
	})

	gone := httptest.NewServer(http.NotFoundHandler())
	goneURL := gone.URL
	gone.Close()

	tests := []struct {
		name string
		url  string
		want ErrorKind
	}{
		{"non-2xx", badStatus.URL, BadStatus},
		{"truncated json", malformed.URL, MalformedBody},
		{"non-numeric count", badCount.URL, MalformedBody},
		{"timeout", slow.URL, Timeout},
		{"connection refused", goneURL, Unreachable},
	}

	for _, tt := range tests {
		_, err := New(tt.url, "/stream", "", 100*time.Millisecond).FetchStatus(context.Background())
		if err == nil {
			t.Errorf("%s: expected error, got nil", tt.name)
			continue
		}
		kind, ok := KindOf(err)
		if !ok {
			t.Errorf("%s: error %v is not a FetchError", tt.name, err)
			continue
		}
		if kind != tt.want {
			t.Errorf("%s: kind = %s; want %s", tt.name, kind, tt.want)
		}
	}
}

func TestFetchStatus_SendsUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(`{"icestats":{}}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, "/stream", "", time.Second).FetchStatus(context.Background()); err != nil {
		t.Fatalf("FetchStatus failed: %v", err)
	}
	if ua != "MyRadio/1.0" {
		t.Errorf("User-Agent = %q", ua)
	}
}
