package economy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/faideww/fishon/internal/store"
)

// StorageKey is the versioned save key. Bump the version whenever the
// GameState JSON shape changes incompatibly.
const StorageKey = "fishonbase_gamestate_v2"

const saveTimeout = 5 * time.Second

// KeyFor returns the save key of one player. An empty player id maps to the
// bare StorageKey used by single-player front ends.
func KeyFor(player string) string {
	if player == "" {
		return StorageKey
	}
	return StorageKey + ":" + player
}

// load reads the saved state, falling back to defaults when nothing usable
// is stored. Only storage failures are returned as errors.
func (s *Store) load(ctx context.Context) (GameState, error) {
	now := s.clk.Now()
	st := defaultState(now)

	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("load %s: %w", s.key, err)
	}

	// decode onto the defaults so fields missing from older saves keep them
	merged := defaultState(now)
	if err := json.Unmarshal(raw, &merged); err != nil {
		s.log.Printf("economy: save %s is corrupt, starting fresh: %v", s.key, err)
		return st, nil
	}

	normalize(&merged, s.reg, now, s.log)
	return merged, nil
}

// persist writes st under the store key. Failures are logged; the in-memory
// state stays authoritative.
func (s *Store) persist(st GameState) {
	raw, err := json.Marshal(st)
	if err != nil {
		s.log.Printf("economy: failed to encode state: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		s.log.Printf("economy: failed to save state: %v", err)
	}
}

func (s *Store) erase() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.log.Printf("economy: failed to clear save: %v", err)
	}
}
