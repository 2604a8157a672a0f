package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/honeypot/internal/persona"
	"github.com/MikeSquared-Agency/honeypot/internal/randsrc"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubGenerator struct {
	reply string
	err   error
	delay time.Duration

	system, prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	s.system, s.prompt = system, prompt
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func TestReply_Success(t *testing.T) {
	gen := &stubGenerator{reply: "  As the victim, *Oh no!* What is your **branch** number?  "}
	a := New(gen, randsrc.Fixed(0), time.Second, discardLogger())

	got, fellBack := a.Reply(context.Background(), persona.Prompt{System: "sys", User: "latest"})
	if fellBack {
		t.Fatal("did not expect fallback")
	}
	if got != "Oh no! What is your branch number?" {
		t.Errorf("unexpected sanitized reply %q", got)
	}
	if gen.system != "sys" || gen.prompt != "latest" {
		t.Errorf("generator got system=%q prompt=%q", gen.system, gen.prompt)
	}
}

func TestReply_ErrorFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("boom")}
	a := New(gen, randsrc.Fixed(2), time.Second, discardLogger())

	got, fellBack := a.Reply(context.Background(), persona.Prompt{})
	if !fellBack {
		t.Fatal("expected fallback")
	}
	if got != FallbackReplies[2] {
		t.Errorf("expected %q, got %q", FallbackReplies[2], got)
	}
}

func TestReply_TimeoutFallsBack(t *testing.T) {
	gen := &stubGenerator{reply: "too late", delay: time.Second}
	a := New(gen, randsrc.Fixed(1), 20*time.Millisecond, discardLogger())

	start := time.Now()
	got, fellBack := a.Reply(context.Background(), persona.Prompt{})
	if !fellBack || got != FallbackReplies[1] {
		t.Errorf("expected fallback %q, got %q (fellBack=%v)", FallbackReplies[1], got, fellBack)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("reply took %v, expected the timeout to bound it", elapsed)
	}
}

func TestReply_EmptyFallsBack(t *testing.T) {
	gen := &stubGenerator{reply: " ** "}
	a := New(gen, randsrc.Fixed(0), time.Second, discardLogger())

	if _, fellBack := a.Reply(context.Background(), persona.Prompt{}); !fellBack {
		t.Error("expected fallback for empty reply")
	}
}

func TestReply_NoGenerator(t *testing.T) {
	a := New(nil, randsrc.Fixed(3), time.Second, discardLogger())
	got, fellBack := a.Reply(context.Background(), persona.Prompt{})
	if !fellBack || got != FallbackReplies[3] {
		t.Errorf("expected fallback %q, got %q", FallbackReplies[3], got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain reply", "plain reply"},
		{"As the victim, I am scared", "I am scared"},
		{`"Please help me"`, "Please help me"},
		{"__really__ worried", "really worried"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
