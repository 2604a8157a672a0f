package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/honeypot/internal/persona"
	"github.com/MikeSquared-Agency/honeypot/internal/randsrc"
)

// NeutralReply is sent while no scam has been detected.
const NeutralReply = "I'm not sure I understand. Can you explain more?"

// FallbackReplies stand in for the generator when it fails or times out.
var FallbackReplies = []string{
	"I am worried. Can you please explain more?",
	"What should I do? I don't want my account blocked!",
	"Can you give me your phone number? I want to call and verify.",
	"Is there a website I can check? My son told me to always verify.",
}

// Generator produces a free-text reply for a system prompt and the latest
// inbound message.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Agent turns prompts into replies the counterpart will see.
type Agent struct {
	gen     Generator
	rng     randsrc.Source
	timeout time.Duration
	logger  *slog.Logger
}

// New returns an agent. gen may be nil, in which case every reply is a fallback.
func New(gen Generator, rng randsrc.Source, timeout time.Duration, logger *slog.Logger) *Agent {
	return &Agent{gen: gen, rng: rng, timeout: timeout, logger: logger}
}

// Reply generates a reply within the agent's timeout. The second return is
// true when a fallback was used.
func (a *Agent) Reply(ctx context.Context, p persona.Prompt) (string, bool) {
	if a.gen == nil {
		return a.Fallback(), true
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.gen.Generate(ctx, p.System, p.User)
	if err != nil {
		a.logger.Warn("reply generation failed, using fallback",
			"persona", string(p.Persona),
			"error", err,
		)
		return a.Fallback(), true
	}

	reply := Sanitize(raw)
	if reply == "" {
		a.logger.Warn("reply generation returned nothing usable, using fallback",
			"persona", string(p.Persona),
		)
		return a.Fallback(), true
	}
	return reply, false
}

// Fallback picks one of the stall replies.
func (a *Agent) Fallback() string {
	return FallbackReplies[a.rng.IntN(len(FallbackReplies))]
}

var metaMarkers = []string{
	"As the victim,",
	"As the victim:",
	"As a victim,",
	"(as the victim)",
}

// Sanitize strips meta commentary and emphasis markup from a raw reply.
func Sanitize(raw string) string {
	s := raw
	for _, m := range metaMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	s = strings.NewReplacer("*", "", "__", "").Replace(s)
	s = strings.Trim(strings.TrimSpace(s), `"`)
	return strings.TrimSpace(s)
}
