// Package intent classifies help desk messages with keyword heuristics.
package intent

import (
	"regexp"
	"strings"
	"sync"
)

// Topic is a catalog question the help desk can answer without the model.
type Topic string

const (
	TopicNone     Topic = ""
	TopicIncluded Topic = "included"
	TopicAddOns   Topic = "add_ons"
	TopicDelivery Topic = "delivery"
	TopicFees     Topic = "fees"
)

// Appliance is an RV system the customer is troubleshooting.
type Appliance string

const (
	ApplianceNone       Appliance = ""
	ApplianceFridge     Appliance = "fridge"
	ApplianceStove      Appliance = "stove"
	ApplianceAC         Appliance = "air_conditioner"
	ApplianceFurnace    Appliance = "furnace"
	ApplianceWaterHeat  Appliance = "water_heater"
	ApplianceGenerator  Appliance = "generator"
	ApplianceToiletTank Appliance = "toilet"
)

// Decision is the outcome of analysing one message.
type Decision struct {
	Topic     Topic
	Appliance Appliance
	Hazard    bool
	Score     int
}

// Ordered so that ties resolve the same way on every call.
var topicBuckets = []struct {
	topic    Topic
	keywords []string
}{
	{TopicIncluded, []string{"included", "include", "what comes with", "comes with", "inventory"}},
	{TopicAddOns, []string{"add-on", "add-ons", "add on", "add ons", "addon", "addons", "extras", "bike rack"}},
	{TopicDelivery, []string{"delivery", "deliver", "drop off", "drop-off", "pick up fee"}},
	{TopicFees, []string{"fee", "fees", "booking rule", "booking rules", "cancellation", "deposit", "damage charge"}},
}

var applianceBuckets = []struct {
	appliance Appliance
	keywords  []string
}{
	{ApplianceFridge, []string{"fridge", "refrigerator", "freezer", "norcold", "dometic"}},
	{ApplianceStove, []string{"stove", "oven", "burner", "cooktop", "range"}},
	{ApplianceAC, []string{"ac", "a/c", "air conditioner", "air conditioning"}},
	{ApplianceFurnace, []string{"furnace", "heat", "heating"}},
	{ApplianceWaterHeat, []string{"water heater", "hot water"}},
	{ApplianceGenerator, []string{"generator", "genset"}},
	{ApplianceToiletTank, []string{"toilet", "black tank", "grey tank", "gray tank"}},
}

var hazardPattern = regexp.MustCompile(`(?i)\b(propane leak|gas leak|smell(s|ing)? (of )?(gas|propane)|(gas|propane) smell|fire|smoke|smoking|sparks?|sparking|carbon monoxide|co alarm|co detector|burning smell)\b`)

// Analyze classifies a customer message.
func Analyze(message string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(message))
	if normalized == "" {
		return Decision{}
	}

	decision := Decision{Hazard: hazardPattern.MatchString(message)}

	for _, bucket := range topicBuckets {
		score := scoreKeywords(normalized, bucket.keywords)
		if score > decision.Score {
			decision.Score = score
			decision.Topic = bucket.topic
		}
	}

	best := 0
	for _, bucket := range applianceBuckets {
		score := scoreKeywords(normalized, bucket.keywords)
		if score > best {
			best = score
			decision.Appliance = bucket.appliance
		}
	}

	return decision
}

var (
	patternMu    sync.Mutex
	patternCache = make(map[string]*regexp.Regexp)
)

// scoreKeywords matches whole words only, so "fee" does not fire on "coffee".
func scoreKeywords(normalized string, keywords []string) int {
	score := 0
	for _, word := range keywords {
		if keywordPattern(word).MatchString(normalized) {
			score += 3
		}
	}
	return score
}

func keywordPattern(word string) *regexp.Regexp {
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[word]; ok {
		return re
	}
	re := regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(word) + `($|[^a-z0-9])`)
	patternCache[word] = re
	return re
}
