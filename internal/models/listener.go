package models

import "time"

// Listener is one entry of the roster. Icecast does not expose who is
// connected, so entries marked Simulated are generated to match the count.
type Listener struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	JoinedAt  time.Time `json:"joinedAt"`
	Location  string    `json:"location"`
	Simulated bool      `json:"simulated"`
}
