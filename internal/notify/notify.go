// Package notify emails a summary after each update run.
package notify

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	gomail "gopkg.in/mail.v2"

	"github.com/hquach/intern-tracker/internal/sheet"
	"github.com/hquach/intern-tracker/internal/types"
)

// Config holds SMTP settings for the run-summary email.
type Config struct {
	Enabled    bool
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	From       string
	To         string
}

// RunSummary describes what one update run did.
type RunSummary struct {
	Fetched        int
	Fresh          int
	Submitted      int
	AIExtracted    int
	RegexExtracted int
	Errors         int
	Duration       time.Duration
	Records        []types.ApplicationRecord
}

// Notifier delivers run summaries via SMTP.
type Notifier struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a notifier with the given SMTP configuration.
func New(cfg Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{cfg: cfg, logger: logger}
}

// SendRunSummary emails the run report. A disabled config is a no-op so
// callers never need to branch.
func (n *Notifier) SendRunSummary(s RunSummary) error {
	if !n.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", n.cfg.To)
	m.SetHeader("Subject", subjectFor(s))
	m.SetBody("text/plain", bodyFor(s))

	d := gomail.NewDialer(n.cfg.SMTPServer, n.cfg.SMTPPort, n.cfg.Username, n.cfg.Password)
	d.Timeout = 10 * time.Second

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send summary email: %w", err)
	}
	n.logger.Info("sent run summary",
		zap.String("to", n.cfg.To),
		zap.Int("applications", len(s.Records)))
	return nil
}

func subjectFor(s RunSummary) string {
	switch len(s.Records) {
	case 0:
		return "Internship Tracker: no new applications"
	case 1:
		return "Internship Tracker: 1 new application"
	default:
		return fmt.Sprintf("Internship Tracker: %d new applications", len(s.Records))
	}
}

func bodyFor(s RunSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run finished in %s.\n\n", s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Fetched:    %d emails\n", s.Fetched)
	fmt.Fprintf(&b, "Fresh:      %d after dedup\n", s.Fresh)
	fmt.Fprintf(&b, "Submitted:  %d\n", s.Submitted)
	fmt.Fprintf(&b, "Extraction: %d model, %d patterns\n", s.AIExtracted, s.RegexExtracted)
	if s.Errors > 0 {
		fmt.Fprintf(&b, "Errors:     %d (see logs)\n", s.Errors)
	}
	if len(s.Records) == 0 {
		return b.String()
	}

	b.WriteString("\nNew applications:\n")
	for _, r := range s.Records {
		company := r.Company
		if company == "" {
			company = "(unknown company)"
		}
		position := r.Position
		if position == "" {
			position = "(unknown position)"
		}
		fmt.Fprintf(&b, "  - %s | %s | %s\n", company, position, sheet.FormatDate(r.Date))
	}
	return b.String()
}
