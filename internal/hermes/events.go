package hermes

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle subjects.
const (
	SubjectDetected = "honeypot.session.detected"
	SubjectReported = "honeypot.session.reported"
	SubjectAll      = "honeypot.session.>"
)

// DetectedEvent is published once per session, when its first scam verdict lands.
type DetectedEvent struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Category     string    `json:"category"`
	Confidence   float64   `json:"confidence"`
	RiskFactors  []string  `json:"risk_factors"`
	MessageCount int       `json:"message_count"`
	DetectedAt   time.Time `json:"detected_at"`
}

// ReportedEvent is published after the final report has been attempted.
type ReportedEvent struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	ScamDetected  bool      `json:"scam_detected"`
	TotalMessages int       `json:"total_messages"`
	ItemCount     int       `json:"item_count"`
	Acknowledged  bool      `json:"acknowledged"`
	ArchiveID     string    `json:"archive_id,omitempty"`
	ReportedAt    time.Time `json:"reported_at"`
}

// NewEventID returns a fresh id for an outgoing event.
func NewEventID() string {
	return uuid.NewString()
}
