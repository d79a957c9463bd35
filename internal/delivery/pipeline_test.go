package delivery

import (
	"context"
	"log/slog"
	"reflect"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/cclank/dailynews/internal/telegram"
)

type sendCall struct {
	text      string
	parseMode string
}

// fakeSender scripts one Outcome per call; extra calls succeed.
type fakeSender struct {
	calls    []sendCall
	script   []Outcome
	nextID   int
	returned int
}

func (f *fakeSender) Send(_ context.Context, text, parseMode string) Outcome {
	f.calls = append(f.calls, sendCall{text: text, parseMode: parseMode})
	if f.returned < len(f.script) {
		out := f.script[f.returned]
		f.returned++
		return out
	}
	f.nextID++
	return Outcome{OK: true, MessageID: f.nextID}
}

func newTestPipeline(t *testing.T, sender Sender, cfg Config) (*Pipeline, *int) {
	t.Helper()
	tr := telegram.NewTranslator(telegram.DefaultTranslatorConfig(), nil)
	p := NewPipeline(sender, tr, cfg, slog.Default())
	sleeps := 0
	p.sleep = func(time.Duration) { sleeps++ }
	return p, &sleeps
}

func TestDeliverAllSuccess(t *testing.T) {
	sender := &fakeSender{}
	p, sleeps := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "summary", []string{"item one", "item two"})

	if !res.OK {
		t.Error("OK = false, want true")
	}
	if res.Sent != 3 {
		t.Errorf("Sent = %d, want 3", res.Sent)
	}
	if res.FirstMessageID != 1 {
		t.Errorf("FirstMessageID = %d, want 1", res.FirstMessageID)
	}
	if len(res.Failures) != 0 {
		t.Errorf("Failures = %q, want none", res.Failures)
	}
	if len(sender.calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(sender.calls))
	}
	if sender.calls[0].text != "summary" {
		t.Errorf("first send = %q, want the summary", sender.calls[0].text)
	}
	if *sleeps != 2 {
		t.Errorf("sleeps = %d, want one per item", *sleeps)
	}
}

func TestDeliverSummaryFailureIsNotFatal(t *testing.T) {
	sender := &fakeSender{script: []Outcome{{Err: "boom"}}}
	p, _ := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "summary", []string{"item"})

	if !res.OK {
		t.Error("OK = false, want true (one item succeeded)")
	}
	if res.Sent != 1 {
		t.Errorf("Sent = %d, want 1", res.Sent)
	}
	want := []string{"Overview: boom"}
	if !reflect.DeepEqual(res.Failures, want) {
		t.Errorf("Failures = %q, want %q", res.Failures, want)
	}
	// First success is the item, not the failed summary.
	if res.FirstMessageID != 1 {
		t.Errorf("FirstMessageID = %d, want 1", res.FirstMessageID)
	}
}

func TestDeliverTotalFailure(t *testing.T) {
	sender := &fakeSender{script: []Outcome{
		{Err: "err a"},
		{Err: "err b"},
		{Err: "err c"},
	}}
	p, _ := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "summary", []string{"one", "two"})

	if res.OK {
		t.Error("OK = true, want false")
	}
	if res.Sent != 0 {
		t.Errorf("Sent = %d, want 0", res.Sent)
	}
	want := []string{"Overview: err a", "News 1: err b", "News 2: err c"}
	if !reflect.DeepEqual(res.Failures, want) {
		t.Errorf("Failures = %q, want %q", res.Failures, want)
	}
	if res.ErrorSummary() != "Overview: err a; News 1: err b; News 2: err c" {
		t.Errorf("ErrorSummary = %q", res.ErrorSummary())
	}
}

func TestDeliverEmptyItemsSingleMessagePath(t *testing.T) {
	sender := &fakeSender{script: []Outcome{{Err: "down"}}}
	p, sleeps := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "the whole digest", nil)

	if res.OK {
		t.Error("OK = true, want false")
	}
	if len(sender.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(sender.calls))
	}
	want := []string{"Digest: down"}
	if !reflect.DeepEqual(res.Failures, want) {
		t.Errorf("Failures = %q, want %q", res.Failures, want)
	}
	if *sleeps != 0 {
		t.Errorf("sleeps = %d, want 0 for single message", *sleeps)
	}
}

func TestDeliverMarkupRejectionRetriesPlainOnce(t *testing.T) {
	sender := &fakeSender{script: []Outcome{
		{Err: "Bad Request: can't parse entities: character '.' must be escaped"},
	}}
	p, _ := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "digest", nil)

	if !res.OK {
		t.Errorf("OK = false, want true after plain-text retry (failures: %q)", res.Failures)
	}
	if len(sender.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(sender.calls))
	}
	if sender.calls[0].parseMode != telegram.ParseModeMarkdownV2 {
		t.Errorf("first parse mode = %q", sender.calls[0].parseMode)
	}
	if sender.calls[1].parseMode != telegram.ParseModeNone {
		t.Errorf("retry parse mode = %q, want plain", sender.calls[1].parseMode)
	}
	if sender.calls[0].text != sender.calls[1].text {
		t.Error("retry must resend the exact same unit")
	}
}

func TestDeliverMarkupRejectionSecondFailureIsFinal(t *testing.T) {
	sender := &fakeSender{script: []Outcome{
		{Err: "Bad Request: can't parse entities"},
		{Err: "Bad Request: can't parse entities"},
	}}
	p, _ := newTestPipeline(t, sender, Config{})

	res := p.Deliver(context.Background(), "digest", nil)

	if res.OK {
		t.Error("OK = true, want false")
	}
	if len(sender.calls) != 2 {
		t.Fatalf("calls = %d, want exactly 2 (no second retry)", len(sender.calls))
	}
}

func TestDeliverNonParseFailureIsNotRetried(t *testing.T) {
	sender := &fakeSender{script: []Outcome{{Err: "Forbidden: bot was blocked"}}}
	p, _ := newTestPipeline(t, sender, Config{})

	p.Deliver(context.Background(), "digest", nil)

	if len(sender.calls) != 1 {
		t.Errorf("calls = %d, want 1", len(sender.calls))
	}
}

func TestDeliverBoundsUnitLength(t *testing.T) {
	sender := &fakeSender{}
	p, _ := newTestPipeline(t, sender, Config{MaxMessageLength: 100})

	long := ""
	for i := 0; i < 50; i++ {
		long += "a line of digest text\n"
	}
	p.Deliver(context.Background(), long, nil)

	if n := utf8.RuneCountInString(sender.calls[0].text); n > 100 {
		t.Errorf("sent unit has %d runes, want <= 100", n)
	}
}
