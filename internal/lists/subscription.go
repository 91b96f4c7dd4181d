package lists

import (
	"sync"

	"shopping-list/internal/models"
)

// Subscription receives published collection snapshots.
//
// The channel holds at most one pending snapshot. If the receiver falls
// behind, the pending snapshot is replaced by the newer one, so a slow
// subscriber never blocks a mutation and always ends on the latest state.
type Subscription struct {
	ch   chan []models.ShoppingList
	repo *Repository
	once sync.Once
}

// Updates is closed when the subscription or the repository is closed.
func (s *Subscription) Updates() <-chan []models.ShoppingList {
	return s.ch
}

func (s *Subscription) Close() {
	s.repo.unsubscribe(s)
}

// deliver must be called with the repository's subscriber lock held.
func (s *Subscription) deliver(snapshot []models.ShoppingList) {
	select {
	case s.ch <- snapshot:
		return
	default:
	}

	// drop the stale pending snapshot
	select {
	case <-s.ch:
	default:
	}

	select {
	case s.ch <- snapshot:
	default:
	}
}

func (s *Subscription) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}
