package listeners

import (
	"net/netip"
	"strings"
	"testing"
	"time"

	"myradio/internal/clock"
	"myradio/internal/models"
)

var now = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

type fakeLocator map[netip.Addr]string

func (f fakeLocator) Location(addr netip.Addr) string { return f[addr] }

func TestSnapshot_SimulatesCount(t *testing.T) {
	r := NewRoster(clock.NewMock(now), nil, 0, nil)

	got := r.Snapshot(5)
	if len(got) != 5 {
		t.Fatalf("len = %d; want 5", len(got))
	}
	for i, l := range got {
		if !l.Simulated {
			t.Errorf("entry %d should be simulated", i)
		}
		if l.JoinedAt.After(now) || l.JoinedAt.Before(now.Add(-time.Hour)) {
			t.Errorf("entry %d joinedAt %v outside the last hour", i, l.JoinedAt)
		}
		if l.Location == "" {
			t.Errorf("entry %d has no location", i)
		}
	}
	if got[0].ID != "listener_1" || got[4].ID != "listener_5" {
		t.Errorf("unexpected IDs %s..%s", got[0].ID, got[4].ID)
	}

	if len(r.Snapshot(0)) != 0 {
		t.Error("zero listeners should give an empty roster")
	}
}

func TestSnapshot_ConnectedFirst(t *testing.T) {
	r := NewRoster(clock.NewMock(now), nil, 0, nil)
	r.Connect(ConnectRequest{ID: "abc", Name: "Ana García"})

	got := r.Snapshot(3)
	if len(got) != 3 {
		t.Fatalf("len = %d; want 3", len(got))
	}
	if got[0].ID != "abc" || got[0].Simulated {
		t.Errorf("connected listener should come first: %+v", got[0])
	}
	if !got[1].Simulated || got[1].ID != "listener_1" {
		t.Errorf("second entry = %+v", got[1])
	}

	// More connected listeners than Icecast reports: keep them all.
	if got := r.Snapshot(0); len(got) != 1 {
		t.Errorf("len = %d; want 1", len(got))
	}
}

func TestSnapshot_BoundsSimulatedEntries(t *testing.T) {
	r := NewRoster(clock.NewMock(now), nil, 0, nil)
	r.Connect(ConnectRequest{ID: "abc"})

	got := r.Snapshot(^uint(0))
	if len(got) != 1+DefaultMaxSimulated {
		t.Fatalf("len = %d; want %d", len(got), 1+DefaultMaxSimulated)
	}
	if got[0].ID != "abc" {
		t.Errorf("connected listener dropped: %+v", got[0])
	}

	small := NewRoster(clock.NewMock(now), nil, 3, nil)
	if n := len(small.Snapshot(50_000)); n != 3 {
		t.Errorf("len = %d; want 3", n)
	}
}

func TestConnect_SimulatedIDIsReplaced(t *testing.T) {
	r := NewRoster(clock.NewMock(now), nil, 0, nil)

	l := r.Connect(ConnectRequest{ID: "listener_1", Name: "Ana"})
	if l.ID == "listener_1" || strings.HasPrefix(l.ID, "listener_") {
		t.Fatalf("ID %q collides with simulated entries", l.ID)
	}

	seen := map[string]bool{}
	for _, e := range r.Snapshot(3) {
		if seen[e.ID] {
			t.Errorf("duplicate ID %q in roster", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestConnect_Defaults(t *testing.T) {
	loc := fakeLocator{netip.MustParseAddr("203.0.113.7"): "Madrid, Spain"}
	r := NewRoster(clock.NewMock(now), loc, 0, nil)

	l := r.Connect(ConnectRequest{Addr: netip.MustParseAddr("203.0.113.7")})
	if l.ID == "" {
		t.Error("expected a generated ID")
	}
	if l.Name != "Listener" || l.Avatar != "L" {
		t.Errorf("defaults = %q / %q", l.Name, l.Avatar)
	}
	if l.Location != "Madrid, Spain" {
		t.Errorf("Location = %q", l.Location)
	}
	if !l.JoinedAt.Equal(now) {
		t.Errorf("JoinedAt = %v", l.JoinedAt)
	}
}

func TestConnect_SameIDRefreshes(t *testing.T) {
	clk := clock.NewMock(now)
	r := NewRoster(clk, nil, 0, nil)

	r.Connect(ConnectRequest{ID: "x", Name: "Old"})
	clk.Advance(time.Minute)
	l := r.Connect(ConnectRequest{ID: "x", Name: "New"})

	if len(r.Snapshot(0)) != 1 {
		t.Fatalf("reconnect duplicated the listener")
	}
	if l.Name != "New" || !l.JoinedAt.Equal(now) {
		t.Errorf("reconnect = %+v", l)
	}
}

func TestDisconnect(t *testing.T) {
	r := NewRoster(nil, nil, 0, nil)
	r.Connect(ConnectRequest{ID: "a"})
	r.Connect(ConnectRequest{ID: "b"})

	if !r.Disconnect("a") {
		t.Error("Disconnect(a) = false")
	}
	if r.Disconnect("a") {
		t.Error("second Disconnect(a) = true")
	}
	if c := r.Snapshot(0); len(c) != 1 || c[0].ID != "b" {
		t.Errorf("Connected = %+v", c)
	}
}

func TestNewRoster_DropsSimulatedSeed(t *testing.T) {
	seed := []models.Listener{
		{ID: "real", Name: "Luis Pérez"},
		{ID: "listener_1", Simulated: true},
	}
	r := NewRoster(nil, nil, 0, seed)
	if c := r.Snapshot(0); len(c) != 1 || c[0].ID != "real" {
		t.Errorf("Connected = %+v", c)
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Ana García": "AG",
		"carlos m.":  "CM",
		"María":      "M",
		"a b c":      "AB",
		"   ":        "L",
		"Ñandú Ölz":  "ÑÖ",
	}
	for in, want := range tests {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q; want %q", in, got, want)
		}
	}
}
