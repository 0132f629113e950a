package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/islandrv/helpdesk/backend/internal/analysis/intent"
	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
)

func testStore() *catalog.MemoryStore {
	return catalog.NewMemoryStore([]catalog.Category{
		{
			ID:            "class-c",
			Name:          "Class C Motorhome",
			IncludedItems: []string{"Kitchen kit", "Bedding"},
			AddOns:        []catalog.PricedItem{{Name: "Bike rack", Price: "$50"}},
		},
		{
			ID:              "trailer",
			Name:            "Travel Trailer",
			IncludedItems:   []string{"Hitch"},
			DeliveryOptions: []catalog.PricedItem{{Name: "Victoria", Price: "$150"}},
			BookingRules:    []catalog.FeeRule{{Rule: "Late return", Fee: "$75/hour"}},
		},
	})
}

func TestAnswerIncludedAllCategories(t *testing.T) {
	a := NewAnswerer(testStore())

	got, ok := a.Answer(intent.TopicIncluded, "")

	assert.True(t, ok)
	assert.Equal(t, "Here is what comes included with each RV:\n\n**Class C Motorhome**\n- Kitchen kit\n- Bedding\n\n**Travel Trailer**\n- Hitch", got)
}

func TestAnswerFiltersByUnitType(t *testing.T) {
	a := NewAnswerer(testStore())

	got, ok := a.Answer(intent.TopicFees, "trailer")

	assert.True(t, ok)
	assert.Equal(t, "Booking rules and fees:\n\n**Travel Trailer**\n- Late return: $75/hour", got)
}

func TestAnswerFallsBackToModel(t *testing.T) {
	a := NewAnswerer(testStore())

	_, ok := a.Answer(intent.TopicNone, "")
	assert.False(t, ok, "no topic")

	_, ok = a.Answer(intent.TopicIncluded, "campervan")
	assert.False(t, ok, "unknown unit")

	_, ok = a.Answer(intent.TopicFees, "class-c")
	assert.False(t, ok, "category without fee table")

	_, ok = NewAnswerer(nil).Answer(intent.TopicIncluded, "")
	assert.False(t, ok, "no catalog loaded")
}
