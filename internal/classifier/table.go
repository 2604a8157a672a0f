package classifier

import "regexp"

// Signal is one class of textual evidence contributing to the score.
type Signal string

const (
	SignalKeyword       Signal = "keyword"
	SignalUrgency       Signal = "urgency"
	SignalSensitiveData Signal = "sensitive_data"
	SignalLink          Signal = "link"
	SignalPhone         Signal = "phone"
	SignalMoney         Signal = "money"
)

// Keyword is a weighted scam term matched as a lowercase substring.
type Keyword struct {
	Term   string
	Weight float64
}

// Rule is a pattern-based signal. A rule contributes its weight at most
// once per message, on the first pattern that matches.
type Rule struct {
	Signal   Signal
	Weight   float64
	Factor   string
	Patterns []*regexp.Regexp
	// CaseSensitive rules run against the message as received rather than the
	// lowercased copy.
	CaseSensitive bool
}

// Table is the declarative scoring configuration. Order matters: keywords
// are checked first in slice order, then rules in slice order, and risk
// factors are recorded in that same order.
type Table struct {
	Keywords []Keyword
	Rules    []Rule
}

// LinkPattern matches http(s) URLs up to the first disallowed character.
var LinkPattern = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\\(\\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)

// PhonePattern matches a 10-digit mobile number with an optional +91 or 0 prefix.
var PhonePattern = regexp.MustCompile(`(?:\+91|0)?[6-9]\d{9}`)

// DefaultTable returns the production weights and patterns.
func DefaultTable() Table {
	return Table{
		Keywords: []Keyword{
			{"urgent", 3.0},
			{"verify", 2.5},
			{"account blocked", 4.0},
			{"suspended", 3.5},
			{"immediate", 3.0},
			{"click here", 2.5},
			{"confirm", 2.0},
			{"update", 2.0},
			{"security", 2.0},
			{"otp", 3.5},
			{"upi", 2.5},
			{"bank", 2.0},
			{"payment", 2.0},
			{"transfer", 2.5},
			{"prize", 3.0},
			{"winner", 3.0},
			{"congratulations", 2.5},
			{"lottery", 4.0},
			{"refund", 2.5},
			{"cashback", 2.5},
			{"limited time", 3.0},
			{"expire", 2.5},
			{"last chance", 3.0},
			{"act now", 3.0},
			{"kycupdate", 4.0},
			{"block", 3.5},
			{"fraud", 3.0},
			{"unauthorized", 3.0},
		},
		Rules: []Rule{
			{
				Signal: SignalUrgency,
				Weight: 2.0,
				Factor: "Urgency tactic detected",
				Patterns: compile(
					`within \d+ (hours?|minutes?|days?)`,
					`immediately`,
					`right now`,
					`asap`,
					`urgent`,
					`today`,
					`expire`,
					`last chance`,
				),
			},
			{
				Signal: SignalSensitiveData,
				Weight: 3.0,
				Factor: "Requesting sensitive information",
				Patterns: compile(
					`(otp|pin|password|cvv)`,
					`(account number|bank account)`,
					`(upi id|upi pin)`,
					`(card number|debit card|credit card)`,
					`(aadhaar|pan card)`,
					`(verify|confirm|update).*(detail|information)`,
				),
			},
			{
				Signal:        SignalLink,
				Weight:        2.5,
				Factor:        "Contains suspicious link",
				Patterns:      []*regexp.Regexp{LinkPattern},
				CaseSensitive: true,
			},
			{
				Signal:        SignalPhone,
				Weight:        1.5,
				Factor:        "Contains phone number",
				Patterns:      []*regexp.Regexp{PhonePattern},
				CaseSensitive: true,
			},
			{
				Signal: SignalMoney,
				Weight: 3.0,
				Factor: "Money request detected",
				Patterns: compile(
					`₹\s?\d+`,
					`rs\.?\s?\d+`,
					`pay\s+\d+`,
					`\d+\s*rupees`,
				),
			},
		},
	}
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}
