package icecast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// statusDocument is the body of /status-json.xsl.
type statusDocument struct {
	Icestats Icestats `json:"icestats"`
}

// Icestats is the top level of the Icecast status document.
type Icestats struct {
	Admin              string     `json:"admin"`
	Host               string     `json:"host"`
	Location           string     `json:"location"`
	ServerID           string     `json:"server_id"`
	ServerStart        string     `json:"server_start"`
	ServerStartISO8601 string     `json:"server_start_iso8601"`
	Sources            SourceList `json:"source"`
}

// Source is one mount point as reported by Icecast.
type Source struct {
	Mount              string `json:"mount"`
	ListenURL          string `json:"listenurl"`
	Listeners          Count  `json:"listeners"`
	ListenerPeak       Count  `json:"listener_peak"`
	Bitrate            Count  `json:"bitrate"`
	SampleRate         Count  `json:"samplerate"`
	Title              string `json:"title"`
	Artist             string `json:"artist"`
	Genre              string `json:"genre"`
	ServerName         string `json:"server_name"`
	ServerDescription  string `json:"server_description"`
	StreamStart        string `json:"stream_start"`
	StreamStartISO8601 string `json:"stream_start_iso8601"`

	// HasTitle distinguishes a missing title from an empty one.
	HasTitle bool `json:"-"`
}

func (s *Source) UnmarshalJSON(data []byte) error {
	type plain Source
	var raw struct {
		plain
		Title *json.RawMessage `json:"title"`
		Mount *json.RawMessage `json:"mount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Source(raw.plain)

	// Icecast emits the mount only in some versions; fall back to the
	// path of listenurl.
	if raw.Mount != nil {
		_ = json.Unmarshal(*raw.Mount, &s.Mount)
	}
	if s.Mount == "" && s.ListenURL != "" {
		if u, err := url.Parse(s.ListenURL); err == nil {
			s.Mount = u.Path
		}
	}

	if raw.Title != nil && !bytes.Equal(bytes.TrimSpace(*raw.Title), []byte("null")) {
		// Some encoders send numeric titles; keep their text.
		var str string
		if err := json.Unmarshal(*raw.Title, &str); err != nil {
			str = strings.Trim(string(*raw.Title), `"`)
		}
		s.Title = str
		s.HasTitle = true
	}
	return nil
}

// StartedAt parses the stream start time. The ISO field is preferred.
func (s Source) StartedAt() (time.Time, bool) {
	layouts := []string{
		"2006-01-02T15:04:05-0700",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s.StreamStartISO8601); err == nil {
			return t, true
		}
	}
	for _, layout := range []string{time.RFC1123Z, "02/Jan/2006:15:04:05 -0700"} {
		if t, err := time.Parse(layout, s.StreamStart); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SourceList decodes Icecast's "source" field, which is an object when
// exactly one mount is live, an array when several are, and absent when none.
type SourceList []Source

func (l *SourceList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '[':
		var many []Source
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
		return nil
	case data[0] == '{':
		var one Source
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*l = SourceList{one}
		return nil
	}
	return fmt.Errorf("icecast: unexpected source value %.20q", data)
}

// Count is a non-negative number that Icecast may encode as a string.
// Values above MaxCount are clamped to it.
type Count uint

// MaxCount bounds any count read from the status document.
const MaxCount = math.MaxInt32

func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return fmt.Errorf("icecast: invalid count %q", s)
	}
	switch {
	case f < 0:
		f = 0
	case f > MaxCount:
		f = MaxCount
	}
	*c = Count(f)
	return nil
}

// Status is the successful result of a fetch.
type Status struct {
	Server Icestats
	// Source is the selected mount, nil when the mount is not live.
	Source *Source
}
