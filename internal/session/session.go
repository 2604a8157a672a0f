package session

import (
	"strings"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
	"github.com/MikeSquared-Agency/honeypot/internal/intelligence"
	"github.com/MikeSquared-Agency/honeypot/internal/persona"
)

// Session is the state of one engagement. Its methods do no locking of
// their own; callers go through Registry.With, which holds the session's
// mutex for the duration of the callback.
type Session struct {
	ID        string
	StartedAt time.Time

	mu           sync.Mutex
	messages     []conversation.Message
	detection    *classifier.Result
	intel        *intelligence.Extractor
	persona      persona.Persona
	callbackSent bool
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		StartedAt: now,
		intel:     intelligence.NewExtractor(),
	}
}

// Append adds a message to the end of the log.
func (s *Session) Append(m conversation.Message) {
	s.messages = append(s.messages, m)
}

// Messages returns a copy of the log.
func (s *Session) Messages() []conversation.Message {
	out := make([]conversation.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) MessageCount() int {
	return len(s.messages)
}

func (s *Session) Detection() (classifier.Result, bool) {
	if s.detection == nil {
		return classifier.Result{}, false
	}
	return *s.detection, true
}

// SetDetection records the first scam verdict. Later calls are ignored and
// return false.
func (s *Session) SetDetection(r classifier.Result) bool {
	if s.detection != nil {
		return false
	}
	s.detection = &r
	return true
}

func (s *Session) Persona() persona.Persona {
	return s.persona
}

// AssignPersona sets the persona once. It returns false when one was
// already assigned.
func (s *Session) AssignPersona(p persona.Persona) bool {
	if s.persona != persona.None || p == persona.None {
		return false
	}
	s.persona = p
	return true
}

func (s *Session) Intelligence() *intelligence.Extractor {
	return s.intel
}

// MarkCallbackSent flips the callback flag. Only the first caller gets true.
func (s *Session) MarkCallbackSent() bool {
	if s.callbackSent {
		return false
	}
	s.callbackSent = true
	return true
}

func (s *Session) CallbackSent() bool {
	return s.callbackSent
}

// LastCounterpartTexts returns up to n of the most recent counterpart
// messages, oldest first.
func (s *Session) LastCounterpartTexts(n int) []string {
	var out []string
	for i := len(s.messages) - 1; i >= 0 && len(out) < n; i-- {
		if s.messages[i].Sender == conversation.Counterpart {
			out = append(out, s.messages[i].Text)
		}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// CounterpartText concatenates everything the counterpart has said.
func (s *Session) CounterpartText() string {
	var parts []string
	for _, m := range s.messages {
		if m.Sender == conversation.Counterpart {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, " ")
}

// View is a read-only copy of a session.
type View struct {
	SessionID    string                              `json:"sessionId"`
	StartedAt    time.Time                           `json:"startedAt"`
	MessageCount int                                 `json:"messageCount"`
	ScamDetected bool                                `json:"scamDetected"`
	Detection    *classifier.Result                  `json:"detection,omitempty"`
	Persona      persona.Persona                     `json:"persona,omitempty"`
	Intelligence map[intelligence.Category][]string `json:"extractedIntelligence"`
	CallbackSent bool                                `json:"callbackSent"`
	Messages     []conversation.Message              `json:"messages"`
}

func (s *Session) View() View {
	v := View{
		SessionID:    s.ID,
		StartedAt:    s.StartedAt,
		MessageCount: len(s.messages),
		Persona:      s.persona,
		Intelligence: s.intel.Snapshot(),
		CallbackSent: s.callbackSent,
		Messages:     s.Messages(),
	}
	if d, ok := s.Detection(); ok {
		v.ScamDetected = true
		v.Detection = &d
	}
	return v
}
