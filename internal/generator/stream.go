package generator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// maxStreamLine bounds a single stream-json event. Assistant text events
// can be large; 10 MiB is far above anything the CLI emits.
const maxStreamLine = 10 << 20

// streamEvent is one line of --output-format stream-json. Only the fields
// the collector needs are decoded.
type streamEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`

	// type == "assistant"
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`

	// type == "result"
	Result  string `json:"result"`
	IsError bool   `json:"is_error"`
	Subtype string `json:"subtype"`
}

// runStreaming invokes the CLI with --output-format stream-json and collects
// assistant text incrementally, preferring the final result event when the
// CLI emits one.
func (r *Runner) runStreaming(ctx context.Context, prompt string) (*Response, error) {
	cmd := exec.CommandContext(ctx, r.cfg.Command, r.buildArgs(prompt, "stream-json")...)
	cmd.Stdin = nil

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("generator: stdout pipe: %w", err)
	}

	r.logger.Info("generator: invoking assistant (streaming)",
		"command", r.cfg.Command,
		"profile", r.cfg.Profile,
		"model", r.cfg.Model,
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("generator: start %s: %w", r.cfg.Command, err)
	}

	resp, parseErr := collectStream(stdout)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("generator: timed out after %s: %w", r.cfg.Timeout, ctx.Err())
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if waitErr != nil && resp == nil {
		return nil, fmt.Errorf("generator: %s exited: %w", r.cfg.Command, waitErr)
	}
	if resp == nil {
		return nil, ErrEmptyOutput
	}
	return resp, nil
}

// collectStream reads stream-json events and assembles the response. The
// final "result" event is authoritative; accumulated assistant text is the
// fallback when the stream ends without one. Malformed lines are skipped.
func collectStream(rd io.Reader) (*Response, error) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLine)

	var (
		parts     []string
		sessionID string
		final     *streamEvent
	)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.SessionID != "" {
			sessionID = ev.SessionID
		}

		switch ev.Type {
		case "assistant":
			for _, block := range ev.Message.Content {
				if block.Type == "text" && block.Text != "" {
					parts = append(parts, block.Text)
				}
			}
		case "result":
			final = &ev
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("generator: read stream: %w", err)
	}

	if final != nil {
		if final.IsError {
			msg := final.Result
			if msg == "" {
				msg = "assistant returned an error (" + final.Subtype + ")"
			}
			return nil, fmt.Errorf("generator: %s", msg)
		}
		if final.Result != "" {
			return &Response{Content: final.Result, SessionID: sessionID}, nil
		}
	}

	if len(parts) == 0 {
		return nil, ErrEmptyOutput
	}
	return &Response{Content: strings.Join(parts, "\n"), SessionID: sessionID}, nil
}
