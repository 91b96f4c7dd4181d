// Package memory derives item suggestions and usage stats from the current
// collection. Nothing here is persisted; every call works on a snapshot.
package memory

import (
	"sort"
	"strings"
	"time"

	"shopping-list/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	topItems     = 10
)

// CommonItems are offered as quick picks when adding an item.
var CommonItems = []string{
	"Milk",
	"Bread",
	"Eggs",
	"Butter",
	"Cheese",
	"Rice",
	"Pasta",
	"Fruits",
	"Vegetables",
	"Chicken",
}

type MemoryItem struct {
	Name      string    `json:"name"`
	Frequency int       `json:"frequency"`
	LastUsed  time.Time `json:"lastUsed"`
}

type Stats struct {
	TotalLists    int          `json:"totalLists"`
	TotalItems    int          `json:"totalItems"`
	CheckedItems  int          `json:"checkedItems"`
	DistinctItems int          `json:"distinctItems"`
	MostUsedItems []MemoryItem `json:"mostUsedItems"`
}

// ClampLimit maps a requested limit to [1, MaxLimit]; out of range values
// get DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > MaxLimit {
		return DefaultLimit
	}
	return limit
}

// Recall groups item names case-insensitively across all lists and ranks
// them by how many items carry the name, then by name. query filters by
// case-insensitive substring.
func Recall(lists []models.ShoppingList, query string, limit int) []MemoryItem {
	limit = ClampLimit(limit)
	query = strings.ToLower(strings.TrimSpace(query))

	items := make([]MemoryItem, 0)
	for _, item := range group(lists) {
		if query != "" && !strings.Contains(strings.ToLower(item.Name), query) {
			continue
		}
		items = append(items, item)
	}

	rank(items)
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func Summarize(lists []models.ShoppingList) Stats {
	stats := Stats{TotalLists: len(lists)}
	for _, l := range lists {
		stats.TotalItems += len(l.Items)
		stats.CheckedItems += l.CheckedCount()
	}

	grouped := group(lists)
	stats.DistinctItems = len(grouped)

	rank(grouped)
	if len(grouped) > topItems {
		grouped = grouped[:topItems]
	}
	stats.MostUsedItems = grouped
	return stats
}

// group keeps the first spelling seen for each name.
func group(lists []models.ShoppingList) []MemoryItem {
	byKey := make(map[string]*MemoryItem)
	var order []string

	for _, l := range lists {
		for _, item := range l.Items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			key := strings.ToLower(name)

			m, ok := byKey[key]
			if !ok {
				m = &MemoryItem{Name: name}
				byKey[key] = m
				order = append(order, key)
			}
			m.Frequency++
			if l.UpdatedAt.After(m.LastUsed) {
				m.LastUsed = l.UpdatedAt
			}
		}
	}

	out := make([]MemoryItem, 0, len(order))
	for _, key := range order {
		out = append(out, *byKey[key])
	}
	return out
}

func rank(items []MemoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Frequency != items[j].Frequency {
			return items[i].Frequency > items[j].Frequency
		}
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
}
