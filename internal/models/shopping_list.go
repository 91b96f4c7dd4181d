package models

import "time"

type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is unset or one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ShoppingList is stored as one element of the JSON array under the
// "shopping-lists" key.
type ShoppingList struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Priority  Priority       `json:"priority,omitempty"`
	Items     []ShoppingItem `json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type ShoppingItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Notes     *string `json:"notes,omitempty"`
	IsChecked bool    `json:"isChecked"`
}

// Clone returns a deep copy; snapshots handed out never share item slices
// or notes with the canonical collection.
func (l ShoppingList) Clone() ShoppingList {
	out := l
	out.Items = make([]ShoppingItem, len(l.Items))
	for i, item := range l.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

func (i ShoppingItem) Clone() ShoppingItem {
	out := i
	if i.Notes != nil {
		notes := *i.Notes
		out.Notes = &notes
	}
	return out
}

// CloneLists deep-copies a collection. A nil input yields an empty,
// non-nil slice so that it encodes as [].
func CloneLists(lists []ShoppingList) []ShoppingList {
	out := make([]ShoppingList, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}

// FindItem returns the index of the item with the given id, or -1.
func (l *ShoppingList) FindItem(itemID string) int {
	for i := range l.Items {
		if l.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// CheckedCount counts the checked items.
func (l ShoppingList) CheckedCount() int {
	n := 0
	for _, item := range l.Items {
		if item.IsChecked {
			n++
		}
	}
	return n
}

// ListSummary is the list overview row: the list without its items plus
// computed counts.
type ListSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Priority     Priority  `json:"priority,omitempty"`
	ItemCount    int       `json:"itemCount"`
	CheckedCount int       `json:"checkedCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (l ShoppingList) Summary() ListSummary {
	return ListSummary{
		ID:           l.ID,
		Name:         l.Name,
		Priority:     l.Priority,
		ItemCount:    len(l.Items),
		CheckedCount: l.CheckedCount(),
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

type CreateListRequest struct {
	Name     string   `json:"name" validate:"required,min=1,max=255"`
	Priority Priority `json:"priority" validate:"omitempty,oneof=High Medium Low"`
}

// CreateItemRequest carries the fields of a new item. Quantity and Notes
// are optional; Quantity defaults to 1.
type CreateItemRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateItemRequest is a partial update: only non-nil fields are applied.
type UpdateItemRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	IsChecked *bool   `json:"isChecked,omitempty"`
}

// Apply merges the set fields of u into item. Empty notes clear the field.
func (u UpdateItemRequest) Apply(item *ShoppingItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Quantity != nil {
		item.Quantity = *u.Quantity
	}
	if u.Notes != nil {
		if *u.Notes == "" {
			item.Notes = nil
		} else {
			notes := *u.Notes
			item.Notes = &notes
		}
	}
	if u.IsChecked != nil {
		item.IsChecked = *u.IsChecked
	}
}

type TokenRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
	Device     string `json:"device" validate:"omitempty,max=100"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}
