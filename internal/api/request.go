package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
	"github.com/MikeSquared-Agency/honeypot/internal/processor"
)

type wireMessage struct {
	Sender    string          `json:"sender"`
	Text      string          `json:"text"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type honeypotRequest struct {
	SessionID           string         `json:"sessionId"`
	Message             *wireMessage   `json:"message"`
	ConversationHistory []wireMessage  `json:"conversationHistory"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

type honeypotResponse struct {
	Status string `json:"status"`
	Reply  string `json:"reply"`
}

// inbound validates the request and converts it for the processor. History
// entries with an unrecognised sender are dropped rather than rejected.
func (r honeypotRequest) inbound() (processor.Inbound, error) {
	if strings.TrimSpace(r.SessionID) == "" {
		return processor.Inbound{}, errors.New("sessionId is required")
	}
	if r.Message == nil {
		return processor.Inbound{}, errors.New("message is required")
	}

	msg, err := r.Message.toMessage()
	if err != nil {
		return processor.Inbound{}, fmt.Errorf("message: %w", err)
	}

	history := make([]conversation.Message, 0, len(r.ConversationHistory))
	for _, h := range r.ConversationHistory {
		m, err := h.toMessage()
		if err != nil {
			continue
		}
		history = append(history, m)
	}

	return processor.Inbound{
		SessionID: r.SessionID,
		Message:   msg,
		History:   history,
	}, nil
}

func (m wireMessage) toMessage() (conversation.Message, error) {
	sender, err := conversation.ParseSender(m.Sender)
	if err != nil {
		return conversation.Message{}, err
	}
	ts, err := timestampText(m.Timestamp)
	if err != nil {
		return conversation.Message{}, err
	}
	return conversation.Message{Sender: sender, Text: m.Text, Timestamp: ts}, nil
}

// timestampText accepts a JSON string or number and returns it as text.
func timestampText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("timestamp: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("timestamp must be a string or number: %w", err)
	}
	return n.String(), nil
}
