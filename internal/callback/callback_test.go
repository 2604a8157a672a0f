package callback

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
	"github.com/MikeSquared-Agency/honeypot/internal/intelligence"
	"github.com/MikeSquared-Agency/honeypot/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(t *testing.T, texts ...string) *session.Session {
	t.Helper()
	r := session.NewRegistry()
	s, _ := r.GetOrCreate("sess-1")
	for _, text := range texts {
		s.Append(conversation.Message{Sender: conversation.Counterpart, Text: text})
		s.Intelligence().Extract(text)
		s.Append(conversation.Message{Sender: conversation.Operator, Text: "ok"})
	}
	return s
}

func TestAgentNotes(t *testing.T) {
	tests := []struct {
		name     string
		category string
		items    int
		factors  []string
		want     string
	}{
		{
			name:     "three leading factors",
			category: "Bank Account Fraud",
			items:    4,
			factors:  []string{"a", "b", "c", "d"},
			want:     "Scam Type: Bank Account Fraud. Extracted 4 intelligence items. Key tactics: a, b, c.",
		},
		{
			name:     "fewer factors",
			category: "UPI Fraud",
			items:    1,
			factors:  []string{"Urgency tactics"},
			want:     "Scam Type: UPI Fraud. Extracted 1 intelligence items. Key tactics: Urgency tactics.",
		},
		{
			name:     "no factors",
			category: "Unknown",
			want:     "Scam Type: Unknown. Extracted 0 intelligence items.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgentNotes(tt.category, tt.items, tt.factors); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompile_Detected(t *testing.T) {
	s := newSession(t, "Your bank account is blocked, verify now", "Pay to fraud@paytm urgently")
	s.SetDetection(classifier.Result{
		IsScam:      true,
		Category:    classifier.CategoryBankAccount,
		RiskFactors: []string{"Scam keyword: 'blocked'", "Urgency tactics", "Requests sensitive information", "Extra"},
	})

	p := Compile(s)
	if p.SessionID != "sess-1" || !p.ScamDetected || p.TotalMessagesExchanged != 4 {
		t.Errorf("unexpected header fields: %+v", p)
	}
	if got := p.ExtractedIntelligence[intelligence.UPIIDs]; len(got) != 1 || got[0] != "fraud@paytm" {
		t.Errorf("unexpected upi ids %v", got)
	}
	keywords := p.ExtractedIntelligence[intelligence.SuspiciousKeywords]
	want := []string{"urgent", "verify", "block", "bank", "pay"}
	if strings.Join(keywords, ",") != strings.Join(want, ",") {
		t.Errorf("expected keywords %v, got %v", want, keywords)
	}
	if !strings.HasPrefix(p.AgentNotes, "Scam Type: Bank Account Fraud. Extracted 2 intelligence items.") {
		t.Errorf("unexpected notes %q", p.AgentNotes)
	}
	if strings.Contains(p.AgentNotes, "Extra") {
		t.Errorf("expected notes to quote at most three tactics, got %q", p.AgentNotes)
	}
}

func TestCompile_NotDetected(t *testing.T) {
	s := newSession(t, "hello there")
	p := Compile(s)
	if p.ScamDetected {
		t.Error("expected scamDetected false")
	}
	if p.AgentNotes != "Scam Type: Unknown. Extracted 0 intelligence items." {
		t.Errorf("unexpected notes %q", p.AgentNotes)
	}
	if p.ExtractedIntelligence == nil || len(p.ExtractedIntelligence) != 0 {
		t.Errorf("expected empty non-nil intelligence, got %v", p.ExtractedIntelligence)
	}
}

func TestSend_Success(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, discardLogger())
	err := c.Send(context.Background(), Payload{
		SessionID:              "abc",
		ScamDetected:           true,
		TotalMessagesExchanged: 18,
		ExtractedIntelligence:  map[intelligence.Category][]string{intelligence.PhoneNumbers: {"9876543210"}},
		AgentNotes:             "notes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"sessionId", "scamDetected", "totalMessagesExchanged", "extractedIntelligence", "agentNotes"} {
		if _, ok := got[key]; !ok {
			t.Errorf("expected payload key %q", key)
		}
	}
	if got["totalMessagesExchanged"].(float64) != 18 {
		t.Errorf("unexpected message total %v", got["totalMessagesExchanged"])
	}
}

func TestSend_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("down"))
	}))
	defer server.Close()

	c := NewClient(server.URL, time.Second, discardLogger())
	err := c.Send(context.Background(), Payload{SessionID: "abc"})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestSend_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(server.URL, 20*time.Millisecond, discardLogger())
	if err := c.Send(context.Background(), Payload{SessionID: "abc"}); err == nil {
		t.Fatal("expected timeout error")
	}
}
