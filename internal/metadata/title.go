package metadata

import "strings"

const (
	// UnknownArtist is used when the stream title carries no artist part.
	UnknownArtist = "Unknown Artist"
	// UnknownTitle is the placeholder callers use when there is no title at all.
	UnknownTitle = "Unknown Track"

	titleSeparator = " - "
)

// TitleParts is the structured form of an Icecast "StreamTitle".
type TitleParts struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// ParseTitle splits a raw "Artist - Title" string on the first separator.
// Everything after it is the title, including further " - " sequences
// ("Artist - Song - Live" gives title "Song - Live").
// A nil input returns nil; picking defaults is up to the caller.
func ParseTitle(raw *string) *TitleParts {
	if raw == nil {
		return nil
	}

	artist, title, found := strings.Cut(*raw, titleSeparator)
	if !found {
		return &TitleParts{Artist: UnknownArtist, Title: strings.TrimSpace(*raw)}
	}

	return &TitleParts{
		Artist: strings.TrimSpace(artist),
		Title:  strings.TrimSpace(title),
	}
}
