package models

// PlaylistEntry is one row of the playlist document. The sync loop never
// touches it, the API replaces it wholesale.
type PlaylistEntry struct {
	ID       int    `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Artist   string `json:"artist" yaml:"artist"`
	Album    string `json:"album" yaml:"album"`
	Duration int    `json:"duration" yaml:"duration"`
}
