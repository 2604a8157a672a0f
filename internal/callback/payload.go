package callback

import (
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/honeypot/internal/intelligence"
	"github.com/MikeSquared-Agency/honeypot/internal/session"
)

// Payload is the final report for one session.
type Payload struct {
	SessionID              string                              `json:"sessionId"`
	ScamDetected           bool                                `json:"scamDetected"`
	TotalMessagesExchanged int                                 `json:"totalMessagesExchanged"`
	ExtractedIntelligence  map[intelligence.Category][]string `json:"extractedIntelligence"`
	AgentNotes             string                              `json:"agentNotes"`
}

// maxTactics is how many risk factors the agent notes quote.
const maxTactics = 3

// Compile builds the report from a session. The caller holds the session lock.
func Compile(s *session.Session) Payload {
	intel := s.Intelligence().Snapshot()
	if keywords := intelligence.KeywordDigest(s.CounterpartText()); len(keywords) > 0 {
		intel[intelligence.SuspiciousKeywords] = keywords
	}

	category := "Unknown"
	var factors []string
	detection, detected := s.Detection()
	if detected {
		category = string(detection.Category)
		factors = detection.RiskFactors
	}

	return Payload{
		SessionID:              s.ID,
		ScamDetected:           detected,
		TotalMessagesExchanged: s.MessageCount(),
		ExtractedIntelligence:  intel,
		AgentNotes:             AgentNotes(category, s.Intelligence().TotalCount(), factors),
	}
}

// AgentNotes summarizes a session in one line.
func AgentNotes(category string, items int, factors []string) string {
	notes := fmt.Sprintf("Scam Type: %s. Extracted %d intelligence items.", category, items)
	if len(factors) > maxTactics {
		factors = factors[:maxTactics]
	}
	if len(factors) > 0 {
		notes += fmt.Sprintf(" Key tactics: %s.", strings.Join(factors, ", "))
	}
	return notes
}
