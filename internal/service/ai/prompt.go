package ai

import (
	"fmt"
	"strings"

	"github.com/islandrv/helpdesk/backend/internal/analysis/intent"
	"github.com/islandrv/helpdesk/backend/internal/model/catalog"
	"github.com/islandrv/helpdesk/backend/internal/model/policy"
)

// Guidance carries per-turn hints appended to the system prompt.
type Guidance struct {
	Decision      intent.Decision
	BookingIntent bool
	UnitType      string
	Unit          *catalog.Category
}

var applianceHints = map[intent.Appliance]string{
	intent.ApplianceFridge:     "The customer needs fridge help. Ask whether the unit is a Dometic or Norcold before giving brand-specific steps.",
	intent.ApplianceStove:      "The customer needs stove help. Start with the propane supply and igniter checks.",
	intent.ApplianceAC:         "The customer needs A/C help. Check shore power or generator, breaker and thermostat mode first.",
	intent.ApplianceFurnace:    "The customer needs furnace help. Check thermostat, propane level and 12V battery charge first.",
	intent.ApplianceWaterHeat:  "The customer needs water heater help. Confirm the bypass valve position and whether they run on gas or electric.",
	intent.ApplianceGenerator:  "The customer needs generator help. Check fuel level, oil level and the 1/4 tank generator cutoff.",
	intent.ApplianceToiletTank: "The customer needs toilet or holding tank help. Give dump station steps and remind them to wear gloves.",
}

// PromptBuilder assembles the system prompt from the policy and turn guidance.
type PromptBuilder struct {
	policy policy.Policy
}

// NewPromptBuilder returns a builder for p.
func NewPromptBuilder(p policy.Policy) *PromptBuilder {
	return &PromptBuilder{policy: p}
}

// BuildSystemPrompt returns the policy prompt, extended with unit context and
// hints for the current turn.
func (b *PromptBuilder) BuildSystemPrompt(g Guidance) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(b.policy.SystemPrompt))

	var notes []string
	if g.Decision.Hazard {
		notes = append(notes, "SAFETY FIRST: the customer may be describing a hazard. Tell them to exit the RV immediately and call 911 before any troubleshooting.")
	}
	if hint := applianceHints[g.Decision.Appliance]; hint != "" {
		notes = append(notes, hint)
	}
	if g.BookingIntent {
		notes = append(notes, fmt.Sprintf("The customer is asking about booking. Include the Markdown link [Book Now](%s).", b.policy.BookingURL))
	}
	if b.policy.TutorialURL != "" && g.Decision.Appliance != intent.ApplianceNone {
		notes = append(notes, fmt.Sprintf("Video tutorials are at [RV Tutorials](%s).", b.policy.TutorialURL))
	}

	if unit := describeUnit(g); unit != "" {
		builder.WriteString("\n\nUnit context:\n")
		builder.WriteString(unit)
	}
	if len(notes) > 0 {
		builder.WriteString("\n\nFor this conversation:\n- ")
		builder.WriteString(strings.Join(notes, "\n- "))
	}
	return builder.String()
}

func describeUnit(g Guidance) string {
	if g.Unit == nil {
		if g.UnitType == "" {
			return ""
		}
		return fmt.Sprintf("The customer is renting a %s.", g.UnitType)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "The customer is renting a %s.", g.Unit.Name)
	if len(g.Unit.IncludedItems) > 0 {
		fmt.Fprintf(&builder, "\nIncluded items: %s.", strings.Join(g.Unit.IncludedItems, ", "))
	}
	if len(g.Unit.AddOns) > 0 {
		parts := make([]string, 0, len(g.Unit.AddOns))
		for _, a := range g.Unit.AddOns {
			parts = append(parts, fmt.Sprintf("%s (%s)", a.Name, a.Price))
		}
		fmt.Fprintf(&builder, "\nAvailable add-ons: %s.", strings.Join(parts, ", "))
	}
	return builder.String()
}
