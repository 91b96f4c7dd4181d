// Package lists owns the canonical collection of shopping lists.
//
// Every mutation follows the same protocol: apply the change to a copy of
// the collection, write the whole copy to the store, and only when the write
// succeeds swap it in and publish it to subscribers. A failed write leaves
// both the in-memory state and the published snapshot untouched.
package lists

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shopping-list/internal/logging"
	"shopping-list/internal/models"
	"shopping-list/internal/store"
)

// StorageKey is the single key holding the encoded collection.
const StorageKey = "shopping-lists"

const DefaultTimeout = 5 * time.Second

type Repository struct {
	open    store.Opener
	logger  logging.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string

	// mu serializes Initialize, mutations and Close; it is held across
	// the store call.
	mu          sync.Mutex
	store       store.Store
	lists       []models.ShoppingList
	initialized bool

	subMu  sync.Mutex
	subs   map[*Subscription]struct{}
	latest []models.ShoppingList
	closed bool
}

// New creates a repository. Call Initialize before mutating it.
func New(open store.Opener, logger logging.Logger, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Repository{
		open:    open,
		logger:  logger.With("component", "lists"),
		timeout: timeout,
		now:     storedNow,
		newID:   uuid.NewString,
		subs:    make(map[*Subscription]struct{}),
	}
}

// storedNow drops the monotonic reading so timestamps compare equal after
// an encode/decode round trip.
func storedNow() time.Time {
	return time.Now().UTC().Round(0)
}

// Initialize opens the store, loads the collection and publishes it once.
//
// If the store cannot be opened or read, the empty collection is published
// instead and the returned error wraps ErrStoreUnavailable. Later mutations
// then fail with ErrStoreUnavailable rather than overwrite data that could
// not be read. Calling Initialize again is a no-op.
func (r *Repository) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		return nil
	}
	r.initialized = true

	loaded, err := r.load(ctx)
	if err != nil {
		r.logger.Error(ctx, "store unavailable, serving an empty collection", "error", err)
		r.lists = []models.ShoppingList{}
		r.publish(r.lists)
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	r.lists = loaded
	r.publish(loaded)
	r.logger.Info(ctx, "shopping lists loaded", "lists", len(loaded))
	return nil
}

func (r *Repository) load(ctx context.Context) ([]models.ShoppingList, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	s, err := r.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	data, err := s.Get(ctx, StorageKey)
	if err != nil {
		closeStore(s)
		return nil, fmt.Errorf("failed to load %s: %w", StorageKey, err)
	}

	var loaded []models.ShoppingList
	if data != nil {
		if err := json.Unmarshal(data, &loaded); err != nil {
			closeStore(s)
			return nil, fmt.Errorf("failed to decode %s: %w", StorageKey, err)
		}
	}
	if loaded == nil {
		loaded = []models.ShoppingList{}
	}
	for i := range loaded {
		if loaded[i].Items == nil {
			loaded[i].Items = []models.ShoppingItem{}
		}
	}

	r.store = s
	return loaded, nil
}

// Subscribe returns a subscription that first receives the latest published
// snapshot, if any, and then every later one.
func (r *Repository) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan []models.ShoppingList, 1), repo: r}

	r.subMu.Lock()
	defer r.subMu.Unlock()

	if r.closed {
		sub.closeChannel()
		return sub
	}
	r.subs[sub] = struct{}{}
	if r.latest != nil {
		sub.deliver(models.CloneLists(r.latest))
	}
	return sub
}

func (r *Repository) unsubscribe(sub *Subscription) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	delete(r.subs, sub)
	sub.closeChannel()
}

// publish makes lists the latest snapshot. lists must not be modified
// afterwards; mutations always work on a copy.
func (r *Repository) publish(lists []models.ShoppingList) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	r.latest = lists
	for sub := range r.subs {
		sub.deliver(models.CloneLists(lists))
	}
}

// Lists returns a copy of the latest published collection.
func (r *Repository) Lists() []models.ShoppingList {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return models.CloneLists(r.latest)
}

// GetList returns a copy of the list with the given id from the latest
// published collection.
func (r *Repository) GetList(listID string) (models.ShoppingList, error) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	if i := findList(r.latest, listID); i >= 0 {
		return r.latest[i].Clone(), nil
	}
	return models.ShoppingList{}, fmt.Errorf("list %s: %w", listID, ErrNotFound)
}

// AddList appends a new, empty list. The name is trimmed and must not be
// blank; priority may be unset.
func (r *Repository) AddList(ctx context.Context, name string, priority models.Priority) (models.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ShoppingList{}, fmt.Errorf("list name is empty: %w", ErrValidation)
	}
	if !priority.Valid() {
		return models.ShoppingList{}, fmt.Errorf("priority %q: %w", priority, ErrValidation)
	}

	var created models.ShoppingList
	err := r.mutate(ctx, "add_list", func(lists []models.ShoppingList) ([]models.ShoppingList, error) {
		id := r.newID()
		for findList(lists, id) >= 0 {
			id = r.newID()
		}
		now := r.now()
		created = models.ShoppingList{
			ID:        id,
			Name:      name,
			Priority:  priority,
			Items:     []models.ShoppingItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		return append(lists, created), nil
	})
	if err != nil {
		return models.ShoppingList{}, err
	}

	r.logger.Debug(ctx, "list added", "list_id", created.ID)
	return created.Clone(), nil
}

// AddItem appends a new unchecked item to a list. A missing name becomes
// the empty string and a missing or zero quantity becomes 1.
func (r *Repository) AddItem(ctx context.Context, listID string, req models.CreateItemRequest) (models.ShoppingItem, error) {
	quantity := 1
	if req.Quantity != nil && *req.Quantity != 0 {
		if *req.Quantity < 0 {
			return models.ShoppingItem{}, fmt.Errorf("quantity %d: %w", *req.Quantity, ErrValidation)
		}
		quantity = *req.Quantity
	}

	var created models.ShoppingItem
	err := r.mutate(ctx, "add_item", func(lists []models.ShoppingList) ([]models.ShoppingList, error) {
		i := findList(lists, listID)
		if i < 0 {
			return nil, fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		list := &lists[i]

		id := r.newID()
		for list.FindItem(id) >= 0 {
			id = r.newID()
		}
		created = models.ShoppingItem{
			ID:       id,
			Name:     req.Name,
			Quantity: quantity,
		}
		if req.Notes != nil {
			notes := *req.Notes
			created.Notes = &notes
		}

		list.Items = append(list.Items, created)
		list.UpdatedAt = r.now()
		return lists, nil
	})
	if err != nil {
		return models.ShoppingItem{}, err
	}

	r.logger.Debug(ctx, "item added", "list_id", listID, "item_id", created.ID)
	return created.Clone(), nil
}

// UpdateItem merges the non-nil fields of req into an item.
func (r *Repository) UpdateItem(ctx context.Context, listID, itemID string, req models.UpdateItemRequest) (models.ShoppingItem, error) {
	if req.Quantity != nil && *req.Quantity < 1 {
		return models.ShoppingItem{}, fmt.Errorf("quantity %d: %w", *req.Quantity, ErrValidation)
	}

	var updated models.ShoppingItem
	err := r.mutate(ctx, "update_item", func(lists []models.ShoppingList) ([]models.ShoppingList, error) {
		i := findList(lists, listID)
		if i < 0 {
			return nil, fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		list := &lists[i]

		j := list.FindItem(itemID)
		if j < 0 {
			return nil, fmt.Errorf("item %s in list %s: %w", itemID, listID, ErrNotFound)
		}

		req.Apply(&list.Items[j])
		list.UpdatedAt = r.now()
		updated = list.Items[j]
		return lists, nil
	})
	if err != nil {
		return models.ShoppingItem{}, err
	}

	r.logger.Debug(ctx, "item updated", "list_id", listID, "item_id", itemID)
	return updated.Clone(), nil
}

// RemoveItem drops an item from a list. An unknown item id is not an
// error: the list is still touched, persisted and published.
func (r *Repository) RemoveItem(ctx context.Context, listID, itemID string) error {
	err := r.mutate(ctx, "remove_item", func(lists []models.ShoppingList) ([]models.ShoppingList, error) {
		i := findList(lists, listID)
		if i < 0 {
			return nil, fmt.Errorf("list %s: %w", listID, ErrNotFound)
		}
		list := &lists[i]

		kept := list.Items[:0]
		for _, item := range list.Items {
			if item.ID != itemID {
				kept = append(kept, item)
			}
		}
		list.Items = kept
		list.UpdatedAt = r.now()
		return lists, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "item removed", "list_id", listID, "item_id", itemID)
	return nil
}

// DeleteList removes a list. Deleting an unknown id persists and publishes
// the unchanged collection, so repeated deletes are harmless.
func (r *Repository) DeleteList(ctx context.Context, listID string) error {
	err := r.mutate(ctx, "delete_list", func(lists []models.ShoppingList) ([]models.ShoppingList, error) {
		kept := lists[:0]
		for _, l := range lists {
			if l.ID != listID {
				kept = append(kept, l)
			}
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "list deleted", "list_id", listID)
	return nil
}

// Close ends all subscriptions and releases the store. It waits for an
// in-flight mutation to finish.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subMu.Lock()
	r.closed = true
	for sub := range r.subs {
		delete(r.subs, sub)
		sub.closeChannel()
	}
	r.subMu.Unlock()

	s := r.store
	r.store = nil
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Repository) mutate(ctx context.Context, op string, fn func([]models.ShoppingList) ([]models.ShoppingList, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		return fmt.Errorf("%s: %w", op, ErrStoreUnavailable)
	}

	next, err := fn(models.CloneLists(r.lists))
	if err != nil {
		return err
	}

	if err := r.persist(ctx, next); err != nil {
		r.logger.Error(ctx, "failed to persist shopping lists", "op", op, "error", err)
		return err
	}

	r.lists = next
	r.publish(next)
	return nil
}

func (r *Repository) persist(ctx context.Context, lists []models.ShoppingList) error {
	data, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrStoreWriteFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.store.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreWriteFailed, err)
	}
	return nil
}

func findList(lists []models.ShoppingList, id string) int {
	for i := range lists {
		if lists[i].ID == id {
			return i
		}
	}
	return -1
}

func closeStore(s store.Store) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}
