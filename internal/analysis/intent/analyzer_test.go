package intent

import "testing"

func TestAnalyzeCatalogTopics(t *testing.T) {
	cases := map[string]Topic{
		"See included items":                   TopicIncluded,
		"What comes with the trailer?":         TopicIncluded,
		"Do you have add-ons like a bike rack": TopicAddOns,
		"Can you deliver to Tofino?":           TopicDelivery,
		"What is the cancellation fee?":        TopicFees,
		"Book an RV":                           TopicNone,
		"Is coffee allowed?":                   TopicNone,
	}
	for msg, want := range cases {
		if got := Analyze(msg).Topic; got != want {
			t.Errorf("Analyze(%q).Topic = %q, want %q", msg, got, want)
		}
	}
}

func TestAnalyzeAppliance(t *testing.T) {
	cases := map[string]Appliance{
		"Fridge Help":               ApplianceFridge,
		"AC Help":                   ApplianceAC,
		"Stove Help":                ApplianceStove,
		"The furnace will not heat": ApplianceFurnace,
		"I'd like to go back":       ApplianceNone,
	}
	for msg, want := range cases {
		if got := Analyze(msg).Appliance; got != want {
			t.Errorf("Analyze(%q).Appliance = %q, want %q", msg, got, want)
		}
	}
}

func TestAnalyzeHazard(t *testing.T) {
	if !Analyze("I smell propane near the stove").Hazard {
		t.Fatal("expected propane smell to be a hazard")
	}
	if !Analyze("There is SMOKE coming from the outlet").Hazard {
		t.Fatal("expected smoke to be a hazard")
	}
	if Analyze("How do I light the fireplace?").Hazard {
		t.Fatal("fireplace should not be flagged as a hazard")
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	if got := Analyze("   "); got != (Decision{}) {
		t.Fatalf("expected zero decision, got %+v", got)
	}
}
