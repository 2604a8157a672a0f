package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/honeypot/internal/agent"
	"github.com/MikeSquared-Agency/honeypot/internal/callback"
	"github.com/MikeSquared-Agency/honeypot/internal/classifier"
	"github.com/MikeSquared-Agency/honeypot/internal/conversation"
	"github.com/MikeSquared-Agency/honeypot/internal/hermes"
	"github.com/MikeSquared-Agency/honeypot/internal/metrics"
	"github.com/MikeSquared-Agency/honeypot/internal/persona"
	"github.com/MikeSquared-Agency/honeypot/internal/session"
)

// ErrSessionNotFound is returned by operations that need an existing session.
var ErrSessionNotFound = session.ErrNotFound

// ErrEmptySessionID is returned when an inbound message carries no session id.
var ErrEmptySessionID = errors.New("empty session id")

// repetitionFloor is the message count a session must exceed before a
// repeated counterpart message ends it.
const repetitionFloor = 10

// Reporter delivers the final report for a session.
type Reporter interface {
	Send(ctx context.Context, p callback.Payload) error
}

// Publisher emits lifecycle events.
type Publisher interface {
	Publish(subject string, data any) error
}

// Archiver keeps an audit copy of each final report.
type Archiver interface {
	WriteReport(ctx context.Context, p callback.Payload, acknowledged bool) (uuid.UUID, error)
}

// Claimer coordinates callback dispatch across replicas. Claim returns
// false when another process already reported the session.
type Claimer interface {
	Claim(ctx context.Context, sessionID string) (bool, error)
}

// Deps are the collaborators of a Processor. Classifier, Strategy and Agent
// are required; the rest are optional and skipped when nil.
type Deps struct {
	Classifier *classifier.Classifier
	Strategy   *persona.Strategy
	Agent      *agent.Agent
	Reporter   Reporter
	Publisher  Publisher
	Archiver   Archiver
	Claimer    Claimer
}

type Config struct {
	MaxMessages     int
	MinMessages     int
	CallbackTimeout time.Duration
}

// Processor orchestrates the per-message engagement workflow.
type Processor struct {
	sessions   *session.Registry
	classifier *classifier.Classifier
	strategy   *persona.Strategy
	agent      *agent.Agent
	reporter   Reporter
	publisher  Publisher
	archiver   Archiver
	claimer    Claimer
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time

	// inflight tracks asynchronous callback dispatches.
	inflight sync.WaitGroup
}

func New(d Deps, cfg Config, logger *slog.Logger) *Processor {
	return &Processor{
		sessions:   session.NewRegistry(),
		classifier: d.Classifier,
		strategy:   d.Strategy,
		agent:      d.Agent,
		reporter:   d.Reporter,
		publisher:  d.Publisher,
		archiver:   d.Archiver,
		claimer:    d.Claimer,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Inbound is one message from the counterpart, as handed over by the transport.
type Inbound struct {
	SessionID string
	Message   conversation.Message
	// History is the transport's view of prior turns. When empty the
	// session's own log is used for the prompt.
	History []conversation.Message
}

// Outcome describes what HandleMessage did.
type Outcome struct {
	SessionID         string
	Reply             string
	ReplySource       string
	ScamDetected      bool
	Category          classifier.Category
	Persona           persona.Persona
	MessageCount      int
	Terminated        bool
	CallbackScheduled bool
}

// GetOrCreate opens the session on first reference.
func (p *Processor) GetOrCreate(sessionID string) *session.Session {
	s, created := p.sessions.GetOrCreate(sessionID)
	if created {
		metrics.SessionsCreated.Inc()
		p.logger.Info("session opened", "session_id", sessionID)
	}
	return s
}

func (p *Processor) RecordInbound(sessionID string, sender conversation.Sender, text, timestamp string) error {
	return p.record(sessionID, conversation.Message{Sender: sender, Text: text, Timestamp: timestamp})
}

func (p *Processor) RecordOutbound(sessionID, text, timestamp string) error {
	return p.record(sessionID, conversation.Message{Sender: conversation.Operator, Text: text, Timestamp: timestamp})
}

func (p *Processor) record(sessionID string, m conversation.Message) error {
	err := p.sessions.With(sessionID, func(s *session.Session) error {
		s.Append(m)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record %s message for %s: %w", m.Sender, sessionID, err)
	}
	metrics.Messages.WithLabelValues(m.Sender.String()).Inc()
	return nil
}

// ShouldTerminate evaluates the termination policy against the session's log.
func (p *Processor) ShouldTerminate(sessionID string, maxMessages int) (bool, error) {
	var done bool
	err := p.sessions.With(sessionID, func(s *session.Session) error {
		done = shouldTerminate(s, maxMessages)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("evaluate termination for %s: %w", sessionID, err)
	}
	return done, nil
}

// shouldTerminate ends a session at the hard cap, or once it has run past
// repetitionFloor and the counterpart's two latest messages are identical.
func shouldTerminate(s *session.Session, maxMessages int) bool {
	count := s.MessageCount()
	if count >= maxMessages {
		return true
	}
	if count > repetitionFloor {
		last := s.LastCounterpartTexts(2)
		if len(last) == 2 && last[0] == last[1] {
			return true
		}
	}
	return false
}

// DispatchFinalCallback sends the session's report and waits for the
// result. It reports whether the remote acknowledged. It does nothing and
// returns false when the report was already attempted or the session has
// fewer than minMessages messages.
func (p *Processor) DispatchFinalCallback(ctx context.Context, sessionID string, minMessages int) (bool, error) {
	var (
		payload callback.Payload
		claimed bool
	)
	err := p.sessions.With(sessionID, func(s *session.Session) error {
		payload, claimed = p.claimReport(s, minMessages)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("dispatch callback for %s: %w", sessionID, err)
	}
	if !claimed {
		return false, nil
	}
	return p.deliver(ctx, payload), nil
}

// claimReport marks the session reported and compiles its payload. The
// flag is set on attempt, so a failed delivery is never retried.
func (p *Processor) claimReport(s *session.Session, minMessages int) (callback.Payload, bool) {
	if s.CallbackSent() || s.MessageCount() < minMessages {
		return callback.Payload{}, false
	}
	s.MarkCallbackSent()
	return callback.Compile(s), true
}

// HandleMessage runs the full workflow for one inbound message: record,
// classify, extract, reply, record the reply, and report if the session
// has ended. The reply is always produced, whatever the state of the
// external collaborators.
func (p *Processor) HandleMessage(ctx context.Context, in Inbound) (*Outcome, error) {
	if in.SessionID == "" {
		return nil, ErrEmptySessionID
	}
	p.GetOrCreate(in.SessionID)

	var (
		out     = Outcome{SessionID: in.SessionID}
		payload callback.Payload
	)
	err := p.sessions.With(in.SessionID, func(s *session.Session) error {
		prior := s.Messages()
		s.Append(in.Message)
		metrics.Messages.WithLabelValues(in.Message.Sender.String()).Inc()

		history := in.History
		if len(history) == 0 {
			history = prior
		}

		p.detect(s, in.Message.Text, history)
		s.Intelligence().Extract(in.Message.Text)

		start := p.now()
		out.Reply, out.ReplySource = p.reply(ctx, s, history, in.Message.Text)
		metrics.ReplyLatency.Observe(p.now().Sub(start).Seconds())
		metrics.Replies.WithLabelValues(out.ReplySource).Inc()

		s.Append(conversation.Message{
			Sender:    conversation.Operator,
			Text:      out.Reply,
			Timestamp: p.now().UTC().Format(time.RFC3339),
		})
		metrics.Messages.WithLabelValues(conversation.Operator.String()).Inc()

		if d, ok := s.Detection(); ok {
			out.ScamDetected = true
			out.Category = d.Category
		}
		out.Persona = s.Persona()
		out.MessageCount = s.MessageCount()
		out.Terminated = shouldTerminate(s, p.cfg.MaxMessages)
		if out.Terminated {
			payload, out.CallbackScheduled = p.claimReport(s, p.cfg.MinMessages)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("handle message for %s: %w", in.SessionID, err)
	}

	if out.CallbackScheduled {
		p.logger.Info("session ended, dispatching report",
			"session_id", in.SessionID,
			"message_count", out.MessageCount,
		)
		p.dispatchAsync(ctx, payload)
	}
	return &out, nil
}

// detect classifies text until the session has its first scam verdict.
func (p *Processor) detect(s *session.Session, text string, history []conversation.Message) {
	if _, ok := s.Detection(); ok {
		return
	}
	result := p.classifier.Classify(text, history)
	if !result.IsScam || !s.SetDetection(result) {
		return
	}

	metrics.ScamsDetected.WithLabelValues(string(result.Category)).Inc()
	p.logger.Info("scam detected",
		"session_id", s.ID,
		"category", result.Category,
		"confidence", result.Confidence,
	)
	p.publish(hermes.SubjectDetected, hermes.DetectedEvent{
		ID:           hermes.NewEventID(),
		SessionID:    s.ID,
		Category:     string(result.Category),
		Confidence:   result.Confidence,
		RiskFactors:  result.RiskFactors,
		MessageCount: s.MessageCount(),
		DetectedAt:   p.now().UTC(),
	})
}

func (p *Processor) reply(ctx context.Context, s *session.Session, history []conversation.Message, latest string) (string, string) {
	detection, ok := s.Detection()
	if !ok {
		return agent.NeutralReply, metrics.SourceNeutral
	}

	s.AssignPersona(p.strategy.Assign(s.Persona(), detection.Category))
	goal := persona.StageGoal(s.MessageCount())
	prompt := persona.BuildPrompt(s.Persona(), detection.Category, goal, history, latest)

	text, fellBack := p.agent.Reply(ctx, prompt)
	if fellBack {
		return text, metrics.SourceFallback
	}
	return text, metrics.SourceGenerated
}

func (p *Processor) dispatchAsync(ctx context.Context, payload callback.Payload) {
	ctx = context.WithoutCancel(ctx)
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		p.deliver(ctx, payload)
	}()
}

// deliver sends a compiled report, then archives and announces it.
// Failures are logged and never returned.
func (p *Processor) deliver(ctx context.Context, payload callback.Payload) bool {
	if p.claimer != nil {
		won, err := p.claimer.Claim(ctx, payload.SessionID)
		switch {
		case err != nil:
			p.logger.Warn("callback claim failed, dispatching anyway", "session_id", payload.SessionID, "error", err)
		case !won:
			metrics.Callbacks.WithLabelValues(metrics.OutcomeClaimed).Inc()
			p.logger.Info("callback already claimed elsewhere", "session_id", payload.SessionID)
			return false
		}
	}

	acknowledged := p.send(ctx, payload)

	var archiveID string
	if p.archiver != nil {
		id, err := p.archiver.WriteReport(ctx, payload, acknowledged)
		if err != nil {
			p.logger.Error("failed to archive report", "session_id", payload.SessionID, "error", err)
		} else {
			archiveID = id.String()
		}
	}

	items := 0
	for _, v := range payload.ExtractedIntelligence {
		items += len(v)
	}
	p.publish(hermes.SubjectReported, hermes.ReportedEvent{
		ID:            hermes.NewEventID(),
		SessionID:     payload.SessionID,
		ScamDetected:  payload.ScamDetected,
		TotalMessages: payload.TotalMessagesExchanged,
		ItemCount:     items,
		Acknowledged:  acknowledged,
		ArchiveID:     archiveID,
		ReportedAt:    p.now().UTC(),
	})
	return acknowledged
}

func (p *Processor) send(ctx context.Context, payload callback.Payload) bool {
	if p.reporter == nil {
		p.logger.Warn("no reporter configured, report dropped", "session_id", payload.SessionID)
		metrics.Callbacks.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	}

	if p.cfg.CallbackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.CallbackTimeout)
		defer cancel()
	}

	if err := p.reporter.Send(ctx, payload); err != nil {
		p.logger.Error("final report not acknowledged", "session_id", payload.SessionID, "error", err)
		metrics.Callbacks.WithLabelValues(metrics.OutcomeFailed).Inc()
		return false
	}
	metrics.Callbacks.WithLabelValues(metrics.OutcomeDelivered).Inc()
	return true
}

func (p *Processor) publish(subject string, evt any) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(subject, evt); err != nil {
		p.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// Session returns a snapshot of the session.
func (p *Processor) Session(sessionID string) (session.View, bool) {
	return p.sessions.Lookup(sessionID)
}

// SessionCount is the number of sessions opened since start.
func (p *Processor) SessionCount() int {
	return p.sessions.Len()
}

// Wait blocks until every in-flight report dispatch has finished.
func (p *Processor) Wait() {
	p.inflight.Wait()
}
