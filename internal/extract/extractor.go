// Package extract pulls structured application fields out of classified
// emails. Extraction is two-tiered: a model call under a strict JSON
// contract, then an offline pattern cascade whenever the model is disabled,
// errors, times out, or replies with something unparseable. The fallback is
// silent to callers; a batch never stops because one reply was garbage.
package extract

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hquach/intern-tracker/internal/types"
)

// Generator produces a text completion for a prompt. *GeminiClient is the
// production implementation; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config controls the model tier.
type Config struct {
	Enabled   bool          // model tier on/off, decided once at startup
	Timeout   time.Duration // deadline for one model call
	BodyLimit int           // prompt body truncation, in runes
}

// Extractor applies the two extraction tiers.
type Extractor struct {
	gen    Generator
	cfg    Config
	logger *zap.Logger
}

// New builds an Extractor. A nil gen disables the model tier regardless of
// cfg.Enabled.
func New(gen Generator, cfg Config, logger *zap.Logger) *Extractor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = 2000
	}
	if gen == nil {
		cfg.Enabled = false
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{gen: gen, cfg: cfg, logger: logger}
}

// Extract returns the best available fields for one email. It never fails:
// every model-tier problem downgrades to the pattern tier, and the Method
// field records which tier produced the result.
func (e *Extractor) Extract(ctx context.Context, subject, body, sender string) types.ExtractionResult {
	if e.cfg.Enabled {
		if res, ok := e.tryModel(ctx, subject, body, sender); ok {
			return res
		}
	}
	return Regex(subject, body, sender)
}

func (e *Extractor) tryModel(ctx context.Context, subject, body, sender string) (types.ExtractionResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	reply, err := e.gen.Generate(ctx, BuildPrompt(subject, body, sender, e.cfg.BodyLimit))
	if err != nil {
		e.logger.Warn("model extraction failed, using pattern fallback",
			zap.String("subject", subject), zap.Error(err))
		return types.ExtractionResult{}, false
	}
	if strings.TrimSpace(reply) == "" {
		e.logger.Warn("empty model reply, using pattern fallback",
			zap.String("subject", subject))
		return types.ExtractionResult{}, false
	}

	fields, err := ParseReply(reply)
	if err != nil {
		e.logger.Warn("unparseable model reply, using pattern fallback",
			zap.String("subject", subject), zap.Error(err))
		return types.ExtractionResult{}, false
	}

	return types.ExtractionResult{
		Company:            fields.Company,
		Position:           fields.Position,
		Location:           fields.Location,
		CandidatePortalURL: fields.CandidatePortalURL,
		Method:             types.MethodAI,
	}, true
}
