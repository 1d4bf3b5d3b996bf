// Package listeners maintains the listener roster. Icecast only reports a
// count, so the roster mixes explicitly connected listeners with
// simulated entries that make up the rest of the count.
package listeners

import (
	"fmt"
	"math/rand/v2"
	"net/netip"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"myradio/internal/clock"
	"myradio/internal/models"
)

const (
	DefaultName   = "Listener"
	defaultAvatar = "/placeholder-user.jpg"

	// DefaultMaxSimulated caps the simulated entries of one snapshot.
	DefaultMaxSimulated = 100

	simulatedPrefix = "listener_"
)

var simulatedLocations = []string{"Spain", "Mexico", "Argentina", "Colombia", "Chile"}

// Locator maps a client address to a human readable location.
type Locator interface {
	Location(addr netip.Addr) string
}

// ConnectRequest is what a client sends to join the roster.
type ConnectRequest struct {
	ID       string
	Name     string
	Avatar   string
	Location string
	Addr     netip.Addr
}

type Roster struct {
	clock        clock.Clock
	locator      Locator
	maxSimulated int

	mu        sync.Mutex
	rng       *rand.Rand
	connected []models.Listener
}

// NewRoster restores the connected listeners from a persisted roster.
// Simulated entries in seed are dropped, they are regenerated per cycle.
// maxSimulated <= 0 means DefaultMaxSimulated.
func NewRoster(clk clock.Clock, locator Locator, maxSimulated int, seed []models.Listener) *Roster {
	if clk == nil {
		clk = clock.Real{}
	}
	if maxSimulated <= 0 {
		maxSimulated = DefaultMaxSimulated
	}
	r := &Roster{
		clock:        clk,
		locator:      locator,
		maxSimulated: maxSimulated,
		rng:          rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, l := range seed {
		if !l.Simulated {
			r.connected = append(r.connected, l)
		}
	}
	return r
}

// Connect adds a listener, or refreshes the entry with the same ID.
func (r *Roster) Connect(req ConnectRequest) models.Listener {
	l := models.Listener{
		ID:       req.ID,
		Name:     strings.TrimSpace(req.Name),
		Avatar:   req.Avatar,
		Location: req.Location,
		JoinedAt: r.clock.Now(),
	}
	if l.ID == "" || strings.HasPrefix(l.ID, simulatedPrefix) {
		l.ID = uuid.NewString()
	}
	if l.Name == "" {
		l.Name = DefaultName
	}
	if l.Avatar == "" {
		l.Avatar = Initials(l.Name)
	}
	if l.Location == "" && r.locator != nil {
		l.Location = r.locator.Location(req.Addr)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.connected {
		if r.connected[i].ID == l.ID {
			l.JoinedAt = r.connected[i].JoinedAt
			r.connected[i] = l
			return l
		}
	}
	r.connected = append(r.connected, l)
	return l
}

// Disconnect removes the listener with id and reports whether it existed.
func (r *Roster) Disconnect(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.connected {
		if r.connected[i].ID == id {
			r.connected = append(r.connected[:i], r.connected[i+1:]...)
			return true
		}
	}
	return false
}

// Snapshot builds the roster for a reported listener count: connected
// listeners first, then simulated entries up to count. At most
// maxSimulated entries are simulated, whatever the count.
func (r *Roster) Snapshot(count uint) []models.Listener {
	r.mu.Lock()
	defer r.mu.Unlock()

	simulated := 0
	if count > uint(len(r.connected)) {
		simulated = int(min(count-uint(len(r.connected)), uint(r.maxSimulated)))
	}

	out := make([]models.Listener, 0, len(r.connected)+simulated)
	out = append(out, r.connected...)

	now := r.clock.Now()
	for n := 1; n <= simulated; n++ {
		out = append(out, models.Listener{
			ID:        fmt.Sprintf("%s%d", simulatedPrefix, n),
			Name:      fmt.Sprintf("%s %d", DefaultName, n),
			Avatar:    defaultAvatar,
			JoinedAt:  now.Add(-time.Duration(r.rng.Int64N(int64(time.Hour)))),
			Location:  simulatedLocations[r.rng.IntN(len(simulatedLocations))],
			Simulated: true,
		})
	}
	return out
}

// Initials returns up to two upper-case initials of name ("Ana García" -> "AG").
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, c := range word {
			if unicode.IsLetter(c) || unicode.IsDigit(c) {
				b.WriteRune(unicode.ToUpper(c))
				break
			}
		}
		if b.Len() > 0 && len([]rune(b.String())) == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "L"
	}
	return b.String()
}
