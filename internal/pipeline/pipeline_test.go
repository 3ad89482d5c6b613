package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hquach/intern-tracker/internal/classify"
	"github.com/hquach/intern-tracker/internal/extract"
	"github.com/hquach/intern-tracker/internal/feature"
	"github.com/hquach/intern-tracker/internal/types"
)

var (
	submittedBodies = []string{
		"thank you for applying to initech we received your application",
		"your application has been received by the globex recruiting team",
		"we have received your application for the software engineer intern position",
		"thanks for submitting your application to hooli careers",
		"your application for the data intern role was received successfully",
		"application received we will review your candidacy shortly",
	}
	otherBodies = []string{
		"weekly newsletter top stories from around the industry this week",
		"your package has shipped and the tracking number is enclosed below",
		"flash sale everything must go up to seventy percent off today",
		"reminder your dentist appointment is coming up next tuesday morning",
		"monthly statement for your checking account is now available online",
		"new sign in to your streaming account from an unrecognized device",
	}
)

func trainedArtifacts(t *testing.T) (*feature.Encoder, *classify.Model) {
	t.Helper()

	var train []types.LabeledEmail
	var labels []int
	for i, body := range submittedBodies {
		train = append(train, types.LabeledEmail{
			RawEmail: types.RawEmail{
				ID:      fmt.Sprintf("pos-%d", i),
				Subject: "application received",
				Sender:  "careers@initech.com",
				Body:    body,
			},
			Label: types.LabelSubmitted,
		})
		labels = append(labels, 1)
	}
	for i, body := range otherBodies {
		train = append(train, types.LabeledEmail{
			RawEmail: types.RawEmail{
				ID:      fmt.Sprintf("neg-%d", i),
				Subject: "this week",
				Sender:  "news@updates.example.com",
				Body:    body,
			},
			Label: types.LabelNotSubmitted,
		})
		labels = append(labels, 0)
	}

	enc, err := feature.Fit(train, feature.Options{SubjectFeatures: 50, BodyFeatures: 300, TopDomains: 10})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	model, err := classify.Train(enc.EncodeLabeled(train), labels, classify.DefaultTrainOptions())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return enc, model
}

// stubGenerator answers every prompt with a fixed reply after an
// optional per-call delay.
type stubGenerator struct {
	reply string
	err   error
	delay time.Duration
	calls atomic.Int64
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	n := s.calls.Add(1)
	if s.delay > 0 && n == 1 {
		time.Sleep(s.delay)
	}
	return s.reply, s.err
}

func inferenceBatch() []types.RawEmail {
	return []types.RawEmail{
		{ID: "a", Subject: "application received", Sender: "careers@initech.com",
			Body: submittedBodies[0], Date: "2025-09-10"},
		{ID: "b", Subject: "this week", Sender: "news@updates.example.com",
			Body: otherBodies[0], Date: "2025-09-10"},
		{ID: "c", Subject: "application received", Sender: "careers@initech.com",
			Body: submittedBodies[2], Date: "2025-09-11"},
		{ID: "d", Subject: "this week", Sender: "news@updates.example.com",
			Body: otherBodies[3], Date: "2025-09-11"},
	}
}

func TestRunExtractsOnlyPositives(t *testing.T) {
	enc, model := trainedArtifacts(t)
	gen := &stubGenerator{
		reply: `{"company": "Initech", "position": "Software Engineer Intern", "location": "Remote", "candidate_portal_url": ""}`,
	}
	ext := extract.New(gen, extract.Config{Enabled: true}, nil)

	p, err := New(enc, model, ext, nil, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, stats, err := p.Run(context.Background(), inferenceBatch())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.Total != 4 || stats.Submitted != 2 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].EmailID != "a" || records[1].EmailID != "c" {
		t.Errorf("record ids = %s, %s; want a, c", records[0].EmailID, records[1].EmailID)
	}
	for _, r := range records {
		if r.Method != types.MethodAI {
			t.Errorf("record %s method = %q", r.EmailID, r.Method)
		}
		if r.Company != "Initech" || r.Location != "Remote" {
			t.Errorf("record %s fields = %+v", r.EmailID, r)
		}
	}
	if stats.AIExtracted != 2 || stats.RegexExtracted != 0 {
		t.Errorf("extraction counts = %+v", stats)
	}
}

func TestRunFallsBackPerEmail(t *testing.T) {
	enc, model := trainedArtifacts(t)
	gen := &stubGenerator{err: errors.New("quota exhausted")}
	ext := extract.New(gen, extract.Config{Enabled: true}, nil)

	p, err := New(enc, model, ext, nil, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, stats, err := p.Run(context.Background(), inferenceBatch())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(records) != 2 || stats.RegexExtracted != 2 || stats.AIExtracted != 0 {
		t.Fatalf("records = %d, stats = %+v", len(records), stats)
	}
	for _, r := range records {
		if r.Method != types.MethodRegex {
			t.Errorf("record %s method = %q", r.EmailID, r.Method)
		}
		// Pattern tier derives the company from the sender domain.
		if r.Company != "Initech" {
			t.Errorf("record %s company = %q", r.EmailID, r.Company)
		}
		if r.Location != "" {
			t.Errorf("record %s location = %q, pattern tier never fills it", r.EmailID, r.Location)
		}
	}
}

func TestRunKeepsInputOrderUnderConcurrency(t *testing.T) {
	enc, model := trainedArtifacts(t)
	// First extraction call stalls so a later email finishes first.
	gen := &stubGenerator{
		reply: `{"company": "Initech", "position": "", "location": "", "candidate_portal_url": ""}`,
		delay: 50 * time.Millisecond,
	}
	ext := extract.New(gen, extract.Config{Enabled: true}, nil)

	p, err := New(enc, model, ext, nil, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	records, _, err := p.Run(context.Background(), inferenceBatch())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != 2 || records[0].EmailID != "a" || records[1].EmailID != "c" {
		t.Fatalf("record order = %+v", records)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	enc, model := trainedArtifacts(t)
	ext := extract.New(nil, extract.Config{}, nil)

	p, err := New(enc, model, ext, nil, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := p.Run(ctx, inferenceBatch()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestNewValidatesArtifacts(t *testing.T) {
	enc, model := trainedArtifacts(t)
	ext := extract.New(nil, extract.Config{}, nil)

	if _, err := New(nil, model, ext, nil, 1); err == nil {
		t.Error("expected error for nil encoder")
	}
	if _, err := New(enc, nil, ext, nil, 1); err == nil {
		t.Error("expected error for nil model")
	}
	if _, err := New(enc, model, nil, nil, 1); err == nil {
		t.Error("expected error for nil extractor")
	}
}
