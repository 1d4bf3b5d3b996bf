package radio

import (
	"context"
	"errors"
	"log"

	"myradio/internal/models"
	"myradio/internal/store"
)

// StateManager restores the engine's state at boot and writes each
// cycle's documents.
type StateManager struct {
	store *store.Store
}

func NewStateManager(st *store.Store) *StateManager {
	return &StateManager{store: st}
}

// State is what the engine needs to pick up where the previous run left off.
type State struct {
	History   []models.TrackRecord
	Stats     models.StatsRecord
	Listeners []models.Listener
}

// Restore reads the persisted documents. Missing or corrupt documents
// come back as defaults; only I/O failures are errors.
func (sm *StateManager) Restore(ctx context.Context) (State, error) {
	var (
		s    State
		errs [3]error
	)
	s.History, errs[0] = store.ReadHistory(ctx, sm.store)
	s.Stats, errs[1] = store.ReadStats(ctx, sm.store)
	s.Listeners, errs[2] = store.ReadListeners(ctx, sm.store)
	if err := errors.Join(errs[:]...); err != nil {
		return State{}, err
	}
	log.Printf("💾 Restored state: %d history records, peak %d listeners", len(s.History), s.Stats.PeakListeners)
	return s, nil
}

// Persist writes every document present in snap. Documents are written
// independently; one failing does not stop the others.
func (sm *StateManager) Persist(ctx context.Context, snap models.Snapshot) error {
	var errs []error
	if snap.Current != nil {
		errs = append(errs, sm.write(ctx, store.CurrentTrack, snap.Current))
	}
	if snap.History != nil {
		errs = append(errs, sm.write(ctx, store.History, snap.History))
	}
	if snap.Stats != nil {
		errs = append(errs, sm.write(ctx, store.Stats, snap.Stats))
	}
	if snap.Listeners != nil {
		errs = append(errs, sm.write(ctx, store.Listeners, snap.Listeners))
	}
	return errors.Join(errs...)
}

func (sm *StateManager) write(ctx context.Context, doc store.Document, v any) error {
	if err := sm.store.Write(ctx, doc, v); err != nil {
		persistErrors.WithLabelValues(string(doc)).Inc()
		return err
	}
	return nil
}
