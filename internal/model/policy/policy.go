package policy

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrBrandRequired      = errors.New("brand name is required")
	ErrBookingURLRequired = errors.New("booking url is required")
	ErrPromptRequired     = errors.New("system prompt is required")
)

// QuickReply is a canned message the frontend can submit for the user.
type QuickReply struct {
	Label   string `yaml:"label" json:"label"`
	Message string `yaml:"message" json:"message"`
}

// Stages toggles the optional post-processing stages.
type Stages struct {
	ListSpacing    bool `yaml:"listSpacing" json:"listSpacing"`
	EscalationLink bool `yaml:"escalationLink" json:"escalationLink"`
}

// Policy holds every business rule the assistant enforces. It is loaded once
// at startup and treated as read-only afterwards.
type Policy struct {
	Brand           string       `yaml:"brand" json:"brand"`
	BookingURL      string       `yaml:"bookingUrl" json:"bookingUrl"`
	TutorialURL     string       `yaml:"tutorialUrl" json:"tutorialUrl"`
	SupportURL      string       `yaml:"supportUrl" json:"supportUrl"`
	BookingSentence string       `yaml:"bookingSentence" json:"bookingSentence"`
	SupportLabel    string       `yaml:"supportLabel" json:"supportLabel"`
	Competitors     []string     `yaml:"competitors" json:"competitors"`
	SystemPrompt    string       `yaml:"systemPrompt" json:"-"`
	QuickReplies    []QuickReply `yaml:"quickReplies" json:"quickReplies"`
	Stages          Stages       `yaml:"stages" json:"stages"`
}

const defaultSystemPrompt = `You are the official help desk assistant for Island RV Rentals.

Responsibilities:
- Provide troubleshooting for Island RV rental units (fridges, stoves, A/C).
- Always confirm appliance **brand** (Dometic or Norcold) if applicable.
- Guide step-by-step troubleshooting with clear formatting and line breaks for each step.
- Safety: If propane leaks, electrical fires, or hazards are mentioned, tell the customer to exit immediately and call emergency services.
- For bookings, always provide this Markdown link: [Book Now](https://islandrv.ca/booknow/).
- For video walkthroughs, point customers to [RV Tutorials](https://islandrv.ca/tutorials/).
- If you cannot resolve an issue, tell the customer to contact support.
- For general policies, summarize clearly but include important rules (payments, deposits, cancellations, age limits, towing requirements).
- Never mention competitors. Always keep responses concise, calm, and actionable.

Goal:
Help customers troubleshoot quickly, book rentals, or understand policies, while maintaining safety and clarity.`

// Default returns the Island RV policy the service ships with.
func Default() Policy {
	return Policy{
		Brand:           "Island RV Rentals",
		BookingURL:      "https://islandrv.ca/booknow/",
		TutorialURL:     "https://islandrv.ca/tutorials/",
		SupportURL:      "https://islandrv.ca/contact/",
		BookingSentence: "You can book directly here: [Book Now](https://islandrv.ca/booknow/)",
		SupportLabel:    "Contact Support",
		Competitors:     []string{"Outdoorsy", "RVshare", "Cruise America", "Campanda"},
		SystemPrompt:    defaultSystemPrompt,
		QuickReplies: []QuickReply{
			{Label: "Book an RV", Message: "Book an RV"},
			{Label: "Fridge Help", Message: "Fridge Help"},
			{Label: "AC Help", Message: "AC Help"},
			{Label: "Stove Help", Message: "Stove Help"},
			{Label: "See included items in each type of RV", Message: "See included items"},
		},
		Stages: Stages{ListSpacing: true, EscalationLink: true},
	}
}

// Load reads a YAML policy document. Fields missing from the document keep
// their default values.
func Load(path string) (Policy, error) {
	p := Default()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy file %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the policy for values the reply pipeline cannot work with.
// A denylisted name inside the brand or an appended link would be rewritten
// on every pass, so those combinations are rejected.
func (p Policy) Validate() error {
	if strings.TrimSpace(p.Brand) == "" {
		return ErrBrandRequired
	}
	if strings.TrimSpace(p.BookingURL) == "" {
		return ErrBookingURLRequired
	}
	if strings.TrimSpace(p.SystemPrompt) == "" {
		return ErrPromptRequired
	}

	for _, raw := range []string{p.BookingURL, p.SupportURL, p.TutorialURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid url %q", raw)
		}
	}

	if p.BookingSentence != "" && !strings.Contains(p.BookingSentence, p.BookingURL) {
		return fmt.Errorf("booking sentence must contain booking url %q", p.BookingURL)
	}

	guarded := []string{p.Brand, p.BookingURL, p.SupportURL, p.BookingSentence, p.SupportLabel}
	for _, name := range p.Competitors {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			return errors.New("competitor names must not be blank")
		}
		for _, value := range guarded {
			if strings.Contains(strings.ToLower(value), needle) {
				return fmt.Errorf("competitor %q appears in %q", name, value)
			}
		}
	}
	return nil
}
