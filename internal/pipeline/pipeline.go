// Package pipeline runs fetched emails through classification and
// extraction to produce application records.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hquach/intern-tracker/internal/classify"
	"github.com/hquach/intern-tracker/internal/extract"
	"github.com/hquach/intern-tracker/internal/feature"
	"github.com/hquach/intern-tracker/internal/types"
)

// Stats holds run statistics.
type Stats struct {
	Total          int
	Submitted      int
	AIExtracted    int
	RegexExtracted int
	Errors         int
	Duration       time.Duration
}

// Pipeline classifies emails and extracts structured fields from the
// ones predicted Submitted.
type Pipeline struct {
	encoder     *feature.Encoder
	model       *classify.Model
	extractor   *extract.Extractor
	logger      *zap.Logger
	concurrency int
}

// New assembles a pipeline around trained artifacts.
func New(encoder *feature.Encoder, model *classify.Model, extractor *extract.Extractor, logger *zap.Logger, concurrency int) (*Pipeline, error) {
	if encoder == nil || model == nil {
		return nil, fmt.Errorf("pipeline needs a trained encoder and model")
	}
	if extractor == nil {
		return nil, fmt.Errorf("pipeline needs an extractor")
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		encoder:     encoder,
		model:       model,
		extractor:   extractor,
		logger:      logger,
		concurrency: concurrency,
	}, nil
}

// Run classifies every email and extracts fields from the positives.
// Records come back in input order. One bad email is counted and
// skipped; it never stops the batch.
func (p *Pipeline) Run(ctx context.Context, emails []types.RawEmail) ([]types.ApplicationRecord, *Stats, error) {
	start := time.Now()
	stats := &Stats{Total: len(emails)}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Classification is cheap; do it serially and collect the positives.
	var positives []int
	for i, em := range emails {
		pred, err := p.model.Predict(p.encoder.EncodeOne(em.Subject, em.Body, em.Sender))
		if err != nil {
			p.logger.Warn("classify email", zap.String("id", em.ID), zap.Error(err))
			stats.Errors++
			continue
		}
		if pred == 1 {
			positives = append(positives, i)
		}
	}
	stats.Submitted = len(positives)
	p.logger.Info("classification complete",
		zap.Int("total", len(emails)),
		zap.Int("submitted", stats.Submitted))

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	// Extraction blocks on the model call, so fan out. Each task owns a
	// fixed slot in records, which keeps output in input order no matter
	// how the workers interleave.
	type task struct {
		slot  int
		email types.RawEmail
	}
	tasks := make(chan task, len(positives))
	for slot, idx := range positives {
		tasks <- task{slot: slot, email: emails[idx]}
	}
	close(tasks)

	records := make([]types.ApplicationRecord, len(positives))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for range p.concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				res := p.extractor.Extract(ctx, t.email.Subject, t.email.Body, t.email.Sender)
				records[t.slot] = types.ApplicationRecord{
					EmailID:            t.email.ID,
					Date:               t.email.Date,
					Company:            res.Company,
					Position:           res.Position,
					Location:           res.Location,
					CandidatePortalURL: res.CandidatePortalURL,
					Method:             res.Method,
				}
				mu.Lock()
				if res.Method == types.MethodAI {
					stats.AIExtracted++
				} else {
					stats.RegexExtracted++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	stats.Duration = time.Since(start)
	p.logger.Info("pipeline complete",
		zap.Int("submitted", stats.Submitted),
		zap.Int("ai", stats.AIExtracted),
		zap.Int("regex", stats.RegexExtracted),
		zap.Int("errors", stats.Errors),
		zap.Duration("duration", stats.Duration))

	return records, stats, nil
}
