package selection

import (
	"context"
	"errors"
	"sync"

	"FreshKeeper/entities"
	"FreshKeeper/pkg/inventory"
	"FreshKeeper/pkg/kvstore"

	"github.com/google/uuid"
)

const (
	storageKey    = "selected_items"
	schemaVersion = 1
)

type envelope struct {
	SchemaVersion int      `json:"schema_version"`
	IDs           []string `json:"ids"`
}

type (
	// Store holds the set of item IDs currently chosen for the menu
	// workflow. Only identity keys are persisted; item fields are resolved
	// against the live inventory at read time, so edits propagate and
	// deleted items drop out of the selection.
	Store interface {
		Load(ctx context.Context) error
		IsSelected(id uuid.UUID) bool
		Toggle(ctx context.Context, id uuid.UUID) error
		Clear(ctx context.Context) error
		IDs() []string
		Items() []entities.FoodItem
	}

	store struct {
		kv    kvstore.Store
		items inventory.Store
		mu    sync.Mutex
		ids   []string
	}
)

func NewStore(kv kvstore.Store, items inventory.Store) Store {
	s := &store{kv: kv, items: items}
	// Prune eagerly when the inventory changes so persisted state does not
	// accumulate references to deleted items.
	items.Subscribe(s.prune)
	return s
}

func (s *store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var env envelope
	err := s.kv.Get(ctx, storageKey, &env)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		s.ids = nil
		return nil
	}
	if err != nil {
		return err
	}

	if env.SchemaVersion != schemaVersion {
		s.ids = nil
		return nil
	}

	s.ids = env.IDs
	return nil
}

func (s *store) IsSelected(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfLocked(id.String()) >= 0
}

// Toggle adds the ID when absent and removes it when present, so calling it
// twice always restores the original selection state.
func (s *store) Toggle(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := id.String()
	if i := s.indexOfLocked(key); i >= 0 {
		s.ids = append(s.ids[:i], s.ids[i+1:]...)
	} else {
		s.ids = append(s.ids, key)
	}
	return s.persistLocked(ctx)
}

func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = nil
	return s.persistLocked(ctx)
}

func (s *store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]string, len(s.ids))
	copy(snapshot, s.ids)
	return snapshot
}

// Items resolves the selected IDs against the live inventory, keeping
// selection order and silently skipping IDs whose item no longer exists.
func (s *store) Items() []entities.FoodItem {
	ids := s.IDs()

	resolved := make([]entities.FoodItem, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		item, err := s.items.FindByID(id)
		if err != nil {
			continue
		}
		resolved = append(resolved, item)
	}
	return resolved
}

func (s *store) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.ids[:0]
	dropped := 0
	for _, raw := range s.ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			dropped++
			continue
		}
		if _, err := s.items.FindByID(id); err != nil {
			dropped++
			continue
		}
		kept = append(kept, raw)
	}

	if dropped == 0 {
		return
	}

	s.ids = kept
	_ = s.persistLocked(context.Background())
}

func (s *store) indexOfLocked(key string) int {
	for i, id := range s.ids {
		if id == key {
			return i
		}
	}
	return -1
}

func (s *store) persistLocked(ctx context.Context) error {
	env := envelope{
		SchemaVersion: schemaVersion,
		IDs:           s.ids,
	}
	return s.kv.Set(ctx, storageKey, env)
}
