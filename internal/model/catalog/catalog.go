package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// PricedItem is a rentable extra or a delivery option.
type PricedItem struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// FeeRule is one row of a booking-rule fee table.
type FeeRule struct {
	Rule string `json:"rule"`
	Fee  string `json:"fee"`
}

// Category describes one RV type offered for rent.
type Category struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	IncludedItems   []string     `json:"includedItems"`
	AddOns          []PricedItem `json:"addOns"`
	DeliveryOptions []PricedItem `json:"deliveryOptions"`
	BookingRules    []FeeRule    `json:"bookingRules"`
}

type document struct {
	Categories []Category `json:"categories"`
}

// Store exposes catalog lookups for the help desk.
type Store interface {
	List() []Category
	Find(idOrName string) (Category, bool)
}

// MemoryStore implements Store over a fixed slice.
type MemoryStore struct {
	items []Category
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied categories.
func NewMemoryStore(items []Category) *MemoryStore {
	return &MemoryStore{items: append([]Category(nil), items...)}
}

// Load reads the catalog JSON document from disk.
func Load(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*MemoryStore, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i, c := range doc.Categories {
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("catalog category %d has no id", i)
		}
		if c.Name == "" {
			doc.Categories[i].Name = c.ID
		}
	}
	return NewMemoryStore(doc.Categories), nil
}

// List returns every category in document order.
func (s *MemoryStore) List() []Category {
	return append([]Category(nil), s.items...)
}

// Find looks a category up by id or display name, ignoring case.
func (s *MemoryStore) Find(idOrName string) (Category, bool) {
	key := strings.TrimSpace(idOrName)
	if key == "" {
		return Category{}, false
	}
	for _, item := range s.items {
		if strings.EqualFold(item.ID, key) || strings.EqualFold(item.Name, key) {
			return item, true
		}
	}
	return Category{}, false
}
