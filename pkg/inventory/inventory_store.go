package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"FreshKeeper/entities"
	"FreshKeeper/pkg/kvstore"

	"github.com/google/uuid"
)

const (
	storageKey    = "food_items"
	schemaVersion = 1
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrItemNotFound    = errors.New("food item not found in store")
)

// Patch describes a partial update. Nil fields leave the stored value
// untouched; set fields override it.
type Patch struct {
	Name           *string
	ExpirationDate *string
	ExpirationType *string
	ImageURL       *string
	Amount         *float64
	Unit           *string
	Category       *string
	Content        *string
}

type envelope struct {
	SchemaVersion int                 `json:"schema_version"`
	Items         []entities.FoodItem `json:"items"`
}

type (
	// Store is the ordered, observable food item collection. Insertion
	// order is preserved and meaningful (it is the "added order" sort).
	// Every mutating call serializes the full collection to the key-value
	// store; a persistence failure is reported to the caller but the
	// in-memory mutation stands, so memory may temporarily run ahead of
	// disk.
	Store interface {
		Load(ctx context.Context) error
		Append(ctx context.Context, item *entities.FoodItem) error
		ReplaceAt(ctx context.Context, index int, item entities.FoodItem) error
		UpsertByID(ctx context.Context, id uuid.UUID, patch Patch) (int, error)
		RemoveAt(ctx context.Context, index int) error
		RemoveByID(ctx context.Context, id uuid.UUID) (int, error)
		Clear(ctx context.Context) error
		All() []entities.FoodItem
		FindByID(id uuid.UUID) (entities.FoodItem, error)
		Subscribe(fn func())
	}

	store struct {
		kv          kvstore.Store
		mu          sync.Mutex
		items       []entities.FoodItem
		subscribers []func()
	}
)

func NewStore(kv kvstore.Store) Store {
	return &store{kv: kv}
}

func (s *store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var env envelope
	err := s.kv.Get(ctx, storageKey, &env)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		s.items = nil
		return nil
	}
	if err != nil {
		return err
	}

	// An unknown schema loads as empty rather than erroring; the next
	// write rewrites the envelope at the current version.
	if env.SchemaVersion != schemaVersion {
		s.items = nil
		return nil
	}

	s.items = env.Items
	return nil
}

func (s *store) Append(ctx context.Context, item *entities.FoodItem) error {
	s.mu.Lock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.ExpirationType == "" {
		item.ExpirationType = entities.ExpirationTypeBestBefore
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	s.items = append(s.items, *item)
	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return err
}

func (s *store) ReplaceAt(ctx context.Context, index int, item entities.FoodItem) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.items[index] = item
	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return err
}

func (s *store) UpsertByID(ctx context.Context, id uuid.UUID, patch Patch) (int, error) {
	s.mu.Lock()
	touched := 0
	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		applyPatch(&s.items[i], patch)
		touched++
	}

	if touched == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return touched, err
}

func (s *store) RemoveAt(ctx context.Context, index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return err
}

func (s *store) RemoveByID(ctx context.Context, id uuid.UUID) (int, error) {
	s.mu.Lock()
	kept := s.items[:0]
	removed := 0
	for _, item := range s.items {
		if item.ID == id {
			removed++
			continue
		}
		kept = append(kept, item)
	}

	if removed == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	s.items = kept
	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return removed, err
}

func (s *store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.items = nil
	err := s.persistLocked(ctx)
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs)
	return err
}

func (s *store) All() []entities.FoodItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]entities.FoodItem, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

func (s *store) FindByID(id uuid.UUID) (entities.FoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First match wins when duplicates exist.
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return entities.FoodItem{}, ErrItemNotFound
}

func (s *store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *store) persistLocked(ctx context.Context) error {
	env := envelope{
		SchemaVersion: schemaVersion,
		Items:         s.items,
	}
	return s.kv.Set(ctx, storageKey, env)
}

func (s *store) subscribersLocked() []func() {
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	return subs
}

// notify runs outside the store lock so subscribers may read the store.
func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

func applyPatch(item *entities.FoodItem, patch Patch) {
	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.ExpirationDate != nil {
		item.ExpirationDate = *patch.ExpirationDate
	}
	if patch.ExpirationType != nil {
		item.ExpirationType = *patch.ExpirationType
	}
	if patch.ImageURL != nil {
		item.ImageURL = *patch.ImageURL
	}
	if patch.Amount != nil {
		item.Amount = *patch.Amount
	}
	if patch.Unit != nil {
		item.Unit = *patch.Unit
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.Content != nil {
		item.Content = *patch.Content
	}
}
