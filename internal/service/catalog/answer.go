// Package catalog answers fixed RV catalog questions without the model.
package catalog

import (
	"fmt"
	"strings"

	"github.com/islandrv/helpdesk/backend/internal/analysis/intent"
	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
)

// Answerer renders catalog data as Markdown replies.
type Answerer struct {
	store catalog.Store
}

// NewAnswerer returns an Answerer over store. A nil store answers nothing.
func NewAnswerer(store catalog.Store) *Answerer {
	return &Answerer{store: store}
}

// Categories returns every category, or nil when no catalog is loaded.
func (a *Answerer) Categories() []catalog.Category {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.List()
}

// Find resolves a unit type to a category.
func (a *Answerer) Find(unitType string) (catalog.Category, bool) {
	if a == nil || a.store == nil {
		return catalog.Category{}, false
	}
	return a.store.Find(unitType)
}

// Answer builds a reply for topic. The second result is false when the
// catalog cannot answer and the model should be asked instead.
func (a *Answerer) Answer(topic intent.Topic, unitType string) (string, bool) {
	if topic == intent.TopicNone {
		return "", false
	}

	categories := a.Categories()
	if unitType != "" {
		unit, ok := a.Find(unitType)
		if !ok {
			return "", false
		}
		categories = []catalog.Category{unit}
	}
	if len(categories) == 0 {
		return "", false
	}

	var sections []string
	for _, c := range categories {
		if section := renderSection(topic, c); section != "" {
			sections = append(sections, section)
		}
	}
	if len(sections) == 0 {
		return "", false
	}

	return heading(topic) + "\n\n" + strings.Join(sections, "\n\n"), true
}

func heading(topic intent.Topic) string {
	switch topic {
	case intent.TopicIncluded:
		return "Here is what comes included with each RV:"
	case intent.TopicAddOns:
		return "These add-ons can be rented with your RV:"
	case intent.TopicDelivery:
		return "Delivery options and pricing:"
	case intent.TopicFees:
		return "Booking rules and fees:"
	default:
		return ""
	}
}

func renderSection(topic intent.Topic, c catalog.Category) string {
	var lines []string
	switch topic {
	case intent.TopicIncluded:
		for _, item := range c.IncludedItems {
			lines = append(lines, "- "+item)
		}
	case intent.TopicAddOns:
		for _, item := range c.AddOns {
			lines = append(lines, fmt.Sprintf("- %s: %s", item.Name, item.Price))
		}
	case intent.TopicDelivery:
		for _, item := range c.DeliveryOptions {
			lines = append(lines, fmt.Sprintf("- %s: %s", item.Name, item.Price))
		}
	case intent.TopicFees:
		for _, rule := range c.BookingRules {
			lines = append(lines, fmt.Sprintf("- %s: %s", rule.Rule, rule.Fee))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "**" + c.Name + "**\n" + strings.Join(lines, "\n")
}
