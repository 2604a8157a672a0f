package conversation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSender is returned when a wire sender value maps to no known party.
var ErrUnknownSender = errors.New("unknown sender")

// Sender identifies which side of the conversation produced a message.
type Sender int

const (
	// Counterpart is the suspected fraud actor.
	Counterpart Sender = iota
	// Operator is the honeypot itself.
	Operator
)

func (s Sender) String() string {
	switch s {
	case Counterpart:
		return "scammer"
	case Operator:
		return "user"
	default:
		return fmt.Sprintf("sender(%d)", int(s))
	}
}

// ParseSender maps a wire value to a Sender. Clients send
// "scammer" and "user"; the role names are accepted as well.
func ParseSender(v string) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "scammer", "counterpart":
		return Counterpart, nil
	case "user", "operator":
		return Operator, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSender, v)
	}
}

func (s Sender) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Sender) UnmarshalText(b []byte) error {
	v, err := ParseSender(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Message is a single immutable entry in a conversation log.
type Message struct {
	Sender    Sender `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}
