// Package reply rewrites raw model output into a policy-compliant message.
package reply

import (
	"regexp"
	"sort"
	"strings"

	"github.com/islandrv/helpdesk/backend/internal/model/policy"
)

var (
	anchorPattern        = regexp.MustCompile(`(?i)<a\s+href=["'](https?://[^"']+)["'][^>]*>(.*?)</a>`)
	numberedBoldPattern  = regexp.MustCompile(`([^\n\d])(\d+\.\s\*\*)`)
	bookingIntentPattern = regexp.MustCompile(`(?i)book|reserve|rental`)
	escalationPattern    = regexp.MustCompile(`(?i)contact support`)
)

// Stage is one rewrite step. userMessage is the caller's original text.
type Stage func(reply, userMessage string) string

// Pipeline applies a fixed, ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// New builds the pipeline for p. Stage order matters: links are normalised
// before the presence checks look for the booking and support URLs.
func New(p policy.Policy) *Pipeline {
	stages := []Stage{AnchorsToMarkdown}
	if p.Stages.ListSpacing {
		stages = append(stages, SpaceNumberedSteps)
	}
	stages = append(stages, BookingLink(p.BookingURL, bookingSentence(p)))
	if p.Stages.EscalationLink && p.SupportURL != "" {
		stages = append(stages, EscalationLink(p.SupportURL, supportLabel(p)))
	}
	stages = append(stages, ScrubCompetitors(p.Competitors, p.Brand))

	return &Pipeline{stages: stages}
}

// Process runs every stage over reply. Running it again on its own output
// yields the same string.
func (p *Pipeline) Process(reply, userMessage string) string {
	for _, stage := range p.stages {
		reply = stage(reply, userMessage)
	}
	return reply
}

// HasBookingIntent reports whether a user message asks about booking.
func HasBookingIntent(userMessage string) bool {
	return bookingIntentPattern.MatchString(userMessage)
}

// AnchorsToMarkdown converts raw HTML anchors into Markdown links. Nested
// anchors need more than one pass; every pass removes at least one.
func AnchorsToMarkdown(reply, _ string) string {
	for {
		next := anchorPattern.ReplaceAllString(reply, "[$2]($1)")
		if next == reply {
			return reply
		}
		reply = next
	}
}

// SpaceNumberedSteps starts a new line before "N. **" markers that are run
// into the preceding text.
func SpaceNumberedSteps(reply, _ string) string {
	return numberedBoldPattern.ReplaceAllString(reply, "$1\n$2")
}

// BookingLink appends sentence when the user asked about booking and the
// reply does not already link bookingURL.
func BookingLink(bookingURL, sentence string) Stage {
	return func(reply, userMessage string) string {
		if !HasBookingIntent(userMessage) || strings.Contains(reply, bookingURL) {
			return reply
		}
		return reply + "\n\n" + sentence
	}
}

// EscalationLink appends the support link whenever the reply tells the
// customer to contact support without linking it.
func EscalationLink(supportURL, label string) Stage {
	link := "[" + label + "](" + supportURL + ")"
	return func(reply, _ string) string {
		if !escalationPattern.MatchString(reply) || strings.Contains(reply, supportURL) {
			return reply
		}
		return reply + "\n\n" + link
	}
}

// ScrubCompetitors replaces every denylisted name, in any casing, with brand.
func ScrubCompetitors(names []string, brand string) Stage {
	pattern := competitorPattern(names)
	if pattern == nil {
		return func(reply, _ string) string { return reply }
	}
	return func(reply, _ string) string {
		return pattern.ReplaceAllLiteralString(reply, brand)
	}
}

func competitorPattern(names []string) *regexp.Regexp {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	if len(quoted) == 0 {
		return nil
	}
	// Longest first so "Cruise America RV" wins over "Cruise America".
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

func bookingSentence(p policy.Policy) string {
	if p.BookingSentence != "" {
		return p.BookingSentence
	}
	return "You can book directly here: [Book Now](" + p.BookingURL + ")"
}

func supportLabel(p policy.Policy) string {
	if p.SupportLabel != "" {
		return p.SupportLabel
	}
	return "Contact Support"
}
