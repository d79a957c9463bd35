// Package delivery sends a segmented digest to the notification channel as
// an ordered batch of messages, tracking per-unit outcomes.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cclank/dailynews/internal/telegram"
)

// defaultMessageDelay is the fixed pause between consecutive sends. It is a
// rate-limit courtesy, not adaptive, and does not back off on failures.
const defaultMessageDelay = 500 * time.Millisecond

// Outcome is the result of one send attempt. Transport errors, timeouts and
// API rejections are all mapped into a failed Outcome — senders never panic
// or surface raw errors to the pipeline.
type Outcome struct {
	OK        bool
	MessageID int
	Err       string
}

// Sender delivers one text unit with the given parse mode. An empty parse
// mode disables markup entirely.
type Sender interface {
	Send(ctx context.Context, text, parseMode string) Outcome
}

// Result aggregates the per-unit outcomes of one digest delivery.
//
// OK is true when at least one unit was delivered, even if later units
// failed. This leniency is a deliberate compatibility choice; callers that
// want all-or-nothing semantics should check len(Failures) == 0.
type Result struct {
	OK             bool
	Sent           int
	FirstMessageID int
	Failures       []string
}

// ErrorSummary joins the per-unit failures into one message. Empty when
// every unit succeeded.
func (r Result) ErrorSummary() string {
	if len(r.Failures) == 0 {
		return ""
	}
	return strings.Join(r.Failures, "; ")
}

func (r *Result) record(label string, out Outcome) {
	if out.OK {
		r.Sent++
		if r.FirstMessageID == 0 {
			r.FirstMessageID = out.MessageID
		}
		return
	}
	r.Failures = append(r.Failures, fmt.Sprintf("%s: %s", label, out.Err))
}

// Config controls pipeline limits and pacing.
type Config struct {
	// MaxMessageLength bounds each unit. Zero means telegram.MaxMessageLength.
	MaxMessageLength int

	// MessageDelay is the fixed pause before each item send. Zero means
	// the default 500ms.
	MessageDelay time.Duration
}

func (c *Config) defaults() {
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = telegram.MaxMessageLength
	}
	if c.MessageDelay <= 0 {
		c.MessageDelay = defaultMessageDelay
	}
}

// Pipeline turns digest segments into formatted, length-bounded units and
// sends them strictly in order.
type Pipeline struct {
	sender     Sender
	translator *telegram.Translator
	cfg        Config
	logger     *slog.Logger

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewPipeline creates a delivery pipeline.
func NewPipeline(sender Sender, translator *telegram.Translator, cfg Config, logger *slog.Logger) *Pipeline {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		sender:     sender,
		translator: translator,
		cfg:        cfg,
		logger:     logger,
		sleep:      time.Sleep,
	}
}

// Deliver sends the summary first, then each item in order, pausing a fixed
// delay before every item. A failed unit is recorded and iteration
// continues; nothing aborts the batch.
//
// When items is empty the summary holds the whole digest and is sent as the
// sole message — a distinct path, not a summary with zero items.
func (p *Pipeline) Deliver(ctx context.Context, summary string, items []string) Result {
	var res Result

	if len(items) == 0 {
		res.record("Digest", p.sendUnit(ctx, summary))
		res.OK = res.Sent > 0
		return res
	}

	res.record("Overview", p.sendUnit(ctx, summary))

	for i, item := range items {
		p.sleep(p.cfg.MessageDelay)
		label := fmt.Sprintf("News %d", i+1)
		out := p.sendUnit(ctx, item)
		res.record(label, out)
		if !out.OK {
			p.logger.Warn("digest unit failed", "unit", label, "error", out.Err)
		}
	}

	res.OK = res.Sent > 0
	return res
}

// sendUnit translates, bounds and sends one segment.
func (p *Pipeline) sendUnit(ctx context.Context, text string) Outcome {
	unit := telegram.Truncate(p.translator.Translate(text), p.cfg.MaxMessageLength)
	return p.sendWithFallback(ctx, unit, telegram.ParseModeMarkdownV2)
}

// sendWithFallback sends with the primary parse mode and, when the channel
// rejects the markup itself, retries that exact unit once with markup
// disabled. A second failure is final.
func (p *Pipeline) sendWithFallback(ctx context.Context, text, parseMode string) Outcome {
	out := p.sender.Send(ctx, text, parseMode)
	if out.OK || parseMode == telegram.ParseModeNone || !isParseFailure(out.Err) {
		return out
	}

	p.logger.Warn("markup rejected, retrying as plain text", "error", out.Err)
	return p.sender.Send(ctx, text, telegram.ParseModeNone)
}

// isParseFailure matches the Bot API's markup parse-error descriptions,
// e.g. "Bad Request: can't parse entities".
func isParseFailure(desc string) bool {
	return strings.Contains(strings.ToLower(desc), "can't parse")
}
