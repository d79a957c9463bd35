package app

import (
	"strings"
	"time"
)

// StepStatus is the outcome of one optional pipeline step.
type StepStatus string

const (
	StepOK            StepStatus = "ok"
	StepFailed        StepStatus = "failed"
	StepSkipped       StepStatus = "skipped"
	StepNotConfigured StepStatus = "not_configured"
)

// Report summarizes one digest run.
type Report struct {
	Date      string
	Preset    string
	ItemCount int
	FilePath  string

	Telegram       StepStatus
	MessagesSent   int
	MessagesFailed int
	TelegramError  string

	GitHub      StepStatus
	GitHubError string
	ArchiveURL  string

	Duration time.Duration
}

// OK reports overall success: generation and the file always succeeded when
// a Report exists, so only actively failed outputs count against the run.
func (r *Report) OK() bool {
	return r.Telegram != StepFailed && r.GitHub != StepFailed
}

// ErrorDetail joins step errors for logging and the history record.
func (r *Report) ErrorDetail() string {
	var parts []string
	if r.TelegramError != "" {
		parts = append(parts, "telegram: "+r.TelegramError)
	}
	if r.GitHubError != "" {
		parts = append(parts, "github: "+r.GitHubError)
	}
	return strings.Join(parts, "; ")
}
