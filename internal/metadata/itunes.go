package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultITunesURL is the public iTunes search endpoint.
const DefaultITunesURL = "https://itunes.apple.com/search"

// ITunes looks up the primary genre of a song. Icecast sources rarely
// send a genre per track, so the sync loop may ask here on transitions.
type ITunes struct {
	baseURL string
	client  *http.Client
}

func NewITunes(baseURL string) *ITunes {
	if baseURL == "" {
		baseURL = DefaultITunesURL
	}
	return &ITunes{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// LookupGenre returns the primary genre of the best match for artist/title.
func (it *ITunes) LookupGenre(ctx context.Context, artist, title string) (string, error) {
	term := strings.TrimSpace(title)
	if artist != "" && artist != UnknownArtist {
		term = artist + " " + term
	}

	u, err := url.Parse(it.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("term", term)
	q.Set("media", "music")
	q.Set("entity", "song")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	resp, err := it.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("itunes: status %d", resp.StatusCode)
	}

	var result struct {
		ResultCount int `json:"resultCount"`
		Results     []struct {
			ArtistName       string `json:"artistName"`
			TrackName        string `json:"trackName"`
			PrimaryGenreName string `json:"primaryGenreName"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("itunes: decode: %w", err)
	}

	if result.ResultCount == 0 || len(result.Results) == 0 {
		return "", fmt.Errorf("itunes: no results for '%s'", term)
	}

	return result.Results[0].PrimaryGenreName, nil
}
