package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hquach/intern-tracker/internal/classify"
	"github.com/hquach/intern-tracker/internal/config"
	"github.com/hquach/intern-tracker/internal/dataset"
	"github.com/hquach/intern-tracker/internal/extract"
	"github.com/hquach/intern-tracker/internal/feature"
	"github.com/hquach/intern-tracker/internal/mailbox"
	"github.com/hquach/intern-tracker/internal/notify"
	"github.com/hquach/intern-tracker/internal/pipeline"
	"github.com/hquach/intern-tracker/internal/sheet"
	"github.com/hquach/intern-tracker/internal/storage"
	"github.com/hquach/intern-tracker/internal/types"
)

const defaultConfigPath = "config.yaml"

var (
	cfg    *config.Config
	logger *zap.Logger
)

func main() {
	// Parse global flags
	globalFlags := flag.NewFlagSet("global", flag.ExitOnError)
	configPath := globalFlags.String("config", defaultConfigPath, "Path to yaml config file")

	// Check if we have any arguments
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Find where the command starts (skip global flags)
	commandIdx := 1
	for i := 1; i < len(os.Args); i++ {
		if !strings.HasPrefix(os.Args[i], "-") {
			commandIdx = i
			break
		}
	}

	// Parse global flags if any exist before the command
	if commandIdx > 1 {
		globalFlags.Parse(os.Args[1:commandIdx])
	}

	cfg = loadConfig(*configPath)

	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer zl.Sync()
	logger = zl

	command := os.Args[commandIdx]

	switch command {
	case "harvest":
		harvestFlags := flag.NewFlagSet("harvest", flag.ExitOnError)
		starredOnly := harvestFlags.Bool("starred-only", false, "Only fetch starred emails")
		limit := harvestFlags.Int("limit", 800, "Maximum recent emails to fetch")

		harvestFlags.Parse(os.Args[commandIdx+1:])

		runHarvest(*starredOnly, *limit)
	case "synth":
		synthFlags := flag.NewFlagSet("synth", flag.ExitOnError)
		n := synthFlags.Int("n", 600, "Number of synthetic emails to generate")
		seed := synthFlags.Int64("seed", 42, "Random seed for reproducible output")

		synthFlags.Parse(os.Args[commandIdx+1:])

		runSynth(*n, *seed)
	case "train":
		runTrain()
	case "update":
		updateFlags := flag.NewFlagSet("update", flag.ExitOnError)
		since := updateFlags.String("since", "", "Fetch emails since date (YYYY-MM-DD, default lookback window)")
		dryRun := updateFlags.Bool("dry-run", false, "Classify and extract but write nothing")

		updateFlags.Parse(os.Args[commandIdx+1:])

		runUpdate(*since, *dryRun)
	case "stats":
		runStats()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Intern Tracker - internship application tracking from your inbox")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  intern-tracker [global-flags] <command> [flags]")
	fmt.Println()
	fmt.Println("Global Flags:")
	fmt.Println("  --config=<path>   Path to yaml config file (default: config.yaml)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  harvest [flags]   Fetch labeled training emails (starred = submitted)")
	fmt.Println("  synth [flags]     Generate synthetic submitted-application emails")
	fmt.Println("  train             Train the classifier and save the model bundle")
	fmt.Println("  update [flags]    Classify new mail and update the tracking sheet")
	fmt.Println("  stats             Show database and model statistics")
	fmt.Println()
	fmt.Println("Harvest Flags:")
	fmt.Println("  -starred-only     Skip the recent unstarred batch")
	fmt.Println("  -limit=<n>        Maximum recent emails to fetch (default: 800)")
	fmt.Println()
	fmt.Println("Synth Flags:")
	fmt.Println("  -n=<n>            Number of emails to generate (default: 600)")
	fmt.Println("  -seed=<s>         Random seed (default: 42)")
	fmt.Println()
	fmt.Println("Update Flags:")
	fmt.Println("  -since=<date>     Fetch emails since YYYY-MM-DD (default: lookback window)")
	fmt.Println("  -dry-run          Print what would be added without writing anything")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  intern-tracker harvest                  # Build the training set from your inbox")
	fmt.Println("  intern-tracker synth -n=600             # Top up positives with synthetic emails")
	fmt.Println("  intern-tracker train                    # Fit the encoder + classifier")
	fmt.Println("  intern-tracker update                   # Process the last two weeks of mail")
	fmt.Println("  intern-tracker update -since=2025-09-01 # Process mail since a date")
	fmt.Println("  intern-tracker update -dry-run          # Preview without touching the sheet")
	fmt.Println("  intern-tracker stats                    # Where things stand")
	fmt.Println()
	fmt.Println("Using a custom config:")
	fmt.Println("  intern-tracker --config=/path/to/config.yaml update")
}

// loadConfig reads the config file, falling back to built-in defaults
// plus environment credentials when the default file does not exist.
func loadConfig(path string) *config.Config {
	c, err := config.Load(path)
	if err == nil {
		return c
	}
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		return config.Default()
	}
	log.Fatalf("Error loading config: %v", err)
	return nil
}

func openDB() *storage.DB {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("Error creating data directory: %v", err)
	}
	db, err := storage.Open(cfg.DBPath())
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	return db
}

func newMailbox() *mailbox.Client {
	if err := cfg.RequireIMAP(); err != nil {
		log.Fatalf("Error: %v", err)
	}
	token := cfg.IMAP.AccessToken
	if token == "" && cfg.IMAP.OAuth.RefreshToken != "" {
		t, err := mailbox.AccessToken(context.Background(),
			cfg.IMAP.OAuth.ClientID, cfg.IMAP.OAuth.ClientSecret, cfg.IMAP.OAuth.RefreshToken)
		if err != nil {
			log.Fatalf("Error redeeming OAuth refresh token: %v", err)
		}
		token = t
	}
	return mailbox.New(mailbox.Config{
		Host:        cfg.IMAP.Host,
		Email:       cfg.IMAP.Email,
		Password:    cfg.IMAP.Password,
		AccessToken: token,
		Folder:      cfg.IMAP.Folder,
	}, logger)
}

func runHarvest(starredOnly bool, limit int) {
	db := openDB()
	defer db.Close()

	mb := newMailbox()

	starred, err := mb.FetchStarred()
	if err != nil {
		log.Fatalf("Error fetching starred emails: %v", err)
	}
	starredInserted, err := db.InsertLabeledBatch(labelEmails(starred, true))
	if err != nil {
		log.Fatalf("Error storing starred emails: %v", err)
	}

	var recent []types.RawEmail
	recentInserted := 0
	if !starredOnly {
		recent, err = mb.FetchRecent(limit)
		if err != nil {
			log.Fatalf("Error fetching recent emails: %v", err)
		}
		recentInserted, err = db.InsertLabeledBatch(labelEmails(recent, false))
		if err != nil {
			log.Fatalf("Error storing recent emails: %v", err)
		}
	}

	fmt.Println()
	fmt.Println("=== Harvest Complete ===")
	fmt.Printf("Starred (Submitted):      %d fetched, %d inserted\n", len(starred), starredInserted)
	if !starredOnly {
		fmt.Printf("Recent (Not Submitted):   %d fetched, %d inserted\n", len(recent), recentInserted)
	}
	fmt.Printf("Database:                 %s\n", cfg.DBPath())
}

// labelEmails converts fetched mail into training rows. Starred mail is
// the submitted-application signal; everything else is the negative class.
func labelEmails(emails []types.RawEmail, starred bool) []types.LabeledEmail {
	label := types.LabelNotSubmitted
	if starred {
		label = types.LabelSubmitted
	}
	out := make([]types.LabeledEmail, len(emails))
	for i, em := range emails {
		out[i] = types.LabeledEmail{RawEmail: em, Starred: starred, Label: label}
	}
	return out
}

func runSynth(n int, seed int64) {
	db := openDB()
	defer db.Close()

	rng := rand.New(rand.NewSource(seed))
	emails := dataset.Synthetic(n, rng)

	inserted, err := db.InsertLabeledBatch(emails)
	if err != nil {
		log.Fatalf("Error storing synthetic emails: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Synthetic Generation Complete ===")
	fmt.Printf("Generated: %d\n", len(emails))
	fmt.Printf("Inserted:  %d\n", inserted)
	fmt.Printf("Database:  %s\n", cfg.DBPath())
}

func runTrain() {
	db := openDB()
	defer db.Close()

	emails, err := db.ListLabeled()
	if err != nil {
		log.Fatalf("Error loading labeled emails: %v", err)
	}
	if len(emails) == 0 {
		log.Fatalf("Error: no labeled emails; run harvest and/or synth first")
	}

	deduped := dataset.Dedupe(emails)
	kept, dropped := dataset.VerifyLabels(deduped)
	fmt.Printf("Loaded %d labeled emails (%d after dedupe, %d dropped for bad labels)\n",
		len(emails), len(deduped), dropped)

	splits, err := dataset.Split(kept, 42)
	if err != nil {
		log.Fatalf("Error splitting dataset: %v", err)
	}
	fmt.Printf("Split: %d train / %d val / %d test\n",
		len(splits.Train), len(splits.Val), len(splits.Test))

	opts := feature.Options{
		SubjectFeatures: cfg.Features.SubjectFeatures,
		BodyFeatures:    cfg.Features.BodyFeatures,
		TopDomains:      cfg.Features.TopDomains,
	}
	enc, err := feature.Fit(splits.Train, opts)
	if err != nil {
		log.Fatalf("Error fitting encoder: %v", err)
	}

	model, err := classify.Train(enc.EncodeLabeled(splits.Train), labelsFor(splits.Train), classify.DefaultTrainOptions())
	if err != nil {
		log.Fatalf("Error training classifier: %v", err)
	}

	printReport := func(name string, set []types.LabeledEmail) {
		preds, err := model.PredictBatch(enc.EncodeLabeled(set))
		if err != nil {
			log.Fatalf("Error predicting %s set: %v", name, err)
		}
		report, err := classify.Evaluate(labelsFor(set), preds)
		if err != nil {
			log.Fatalf("Error evaluating %s set: %v", name, err)
		}
		fmt.Printf("\n%s:\n%s\n", name, report)
	}
	printReport("Validation", splits.Val)
	printReport("Test", splits.Test)

	bundle := &classify.Bundle{Options: opts, Encoder: enc, Model: model}
	if err := classify.SaveBundle(cfg.ModelPath(), bundle); err != nil {
		log.Fatalf("Error saving model bundle: %v", err)
	}

	fmt.Println()
	fmt.Println("=== Training Complete ===")
	fmt.Printf("Training rows: %d\n", len(splits.Train))
	fmt.Printf("Feature width: %d\n", enc.Width())
	fmt.Printf("Model saved:   %s\n", cfg.ModelPath())
}

func labelsFor(emails []types.LabeledEmail) []int {
	labels := make([]int, len(emails))
	for i, em := range emails {
		if em.Label == types.LabelSubmitted {
			labels[i] = 1
		}
	}
	return labels
}

func runUpdate(since string, dryRun bool) {
	db := openDB()
	defer db.Close()

	bundle, err := classify.LoadBundle(cfg.ModelPath())
	if err != nil {
		log.Fatalf("Error loading model bundle (run train first): %v", err)
	}

	cutoff := time.Now().AddDate(0, 0, -cfg.Fetch.LookbackDays)
	if since != "" {
		cutoff, err = time.Parse("2006-01-02", since)
		if err != nil {
			log.Fatalf("Error: invalid -since date %q (want YYYY-MM-DD)", since)
		}
	}

	mb := newMailbox()
	emails, err := mb.FetchSince(cutoff, cfg.Fetch.MaxEmails)
	if err != nil {
		log.Fatalf("Error fetching emails: %v", err)
	}

	fresh, err := db.FilterNew(emails)
	if err != nil {
		log.Fatalf("Error filtering new emails: %v", err)
	}
	fmt.Printf("Fetched %d emails since %s, %d new\n",
		len(emails), cutoff.Format("2006-01-02"), len(fresh))

	ctx := context.Background()
	p, err := pipeline.New(bundle.Encoder, bundle.Model, buildExtractor(ctx), logger, cfg.Pipeline.Concurrency)
	if err != nil {
		log.Fatalf("Error building pipeline: %v", err)
	}
	records, stats, err := p.Run(ctx, fresh)
	if err != nil {
		log.Fatalf("Error running pipeline: %v", err)
	}

	if dryRun {
		fmt.Println()
		fmt.Printf("[dry run] would add %d applications:\n", len(records))
		for _, r := range records {
			fmt.Printf("  - %s | %s | %s (%s)\n",
				orUnknown(r.Company), orUnknown(r.Position), sheet.FormatDate(r.Date), r.Method)
		}
		fmt.Println("[dry run] nothing written")
		return
	}

	if len(records) > 0 {
		if err := sheet.NewWriter(cfg.SheetPath()).Append(records); err != nil {
			log.Fatalf("Error updating sheet: %v", err)
		}
		if err := db.MarkProcessed(records); err != nil {
			log.Fatalf("Error marking emails processed: %v", err)
		}
	}

	notifier := notify.New(notify.Config{
		Enabled:    cfg.Notify.Enabled,
		SMTPServer: cfg.Notify.SMTPServer,
		SMTPPort:   cfg.Notify.SMTPPort,
		Username:   cfg.Notify.Username,
		Password:   cfg.Notify.Password,
		From:       cfg.Notify.From,
		To:         cfg.Notify.To,
	}, logger)
	summary := notify.RunSummary{
		Fetched:        len(emails),
		Fresh:          len(fresh),
		Submitted:      stats.Submitted,
		AIExtracted:    stats.AIExtracted,
		RegexExtracted: stats.RegexExtracted,
		Errors:         stats.Errors,
		Duration:       stats.Duration,
		Records:        records,
	}
	if err := notifier.SendRunSummary(summary); err != nil {
		logger.Warn("send run summary", zap.Error(err))
	}

	fmt.Println()
	fmt.Println("=== Update Complete ===")
	fmt.Printf("Fetched:    %d\n", len(emails))
	fmt.Printf("New:        %d\n", len(fresh))
	fmt.Printf("Submitted:  %d\n", stats.Submitted)
	fmt.Printf("Extraction: %d model, %d patterns\n", stats.AIExtracted, stats.RegexExtracted)
	fmt.Printf("Errors:     %d\n", stats.Errors)
	fmt.Printf("Duration:   %v\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("Sheet:      %s\n", cfg.SheetPath())
}

// buildExtractor wires the model tier when an API key is configured and
// quietly degrades to the pattern tier when it is not.
func buildExtractor(ctx context.Context) *extract.Extractor {
	var gen extract.Generator
	if cfg.AIEnabled() {
		client, err := extract.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			logger.Warn("gemini client unavailable, using pattern extraction", zap.Error(err))
		} else {
			gen = client
		}
	}
	return extract.New(gen, extract.Config{
		Enabled:   gen != nil,
		Timeout:   cfg.GeminiTimeout(),
		BodyLimit: cfg.Gemini.BodyLimit,
	}, logger)
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}

func runStats() {
	db := openDB()
	defer db.Close()

	counts, err := db.LabelCounts()
	if err != nil {
		log.Fatalf("Error counting labels: %v", err)
	}
	rawCount, err := db.RawCount()
	if err != nil {
		log.Fatalf("Error counting raw emails: %v", err)
	}
	processedCount, err := db.ProcessedCount()
	if err != nil {
		log.Fatalf("Error counting processed emails: %v", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	fmt.Println("=== Tracker Statistics ===")
	fmt.Printf("Labeled emails:  %d (Submitted %d / Not Submitted %d)\n",
		total, counts[types.LabelSubmitted], counts[types.LabelNotSubmitted])
	fmt.Printf("Raw emails seen: %d\n", rawCount)
	fmt.Printf("Processed:       %d\n", processedCount)

	bundle, err := classify.LoadBundle(cfg.ModelPath())
	if err != nil {
		fmt.Printf("Model:           not trained (run: intern-tracker train)\n")
		return
	}
	fmt.Printf("Model:           trained %s, width %d\n",
		bundle.CreatedAt.Format("2006-01-02"), bundle.Encoder.Width())
}
