package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"phone-scrubber/config"
	"phone-scrubber/models"
	"phone-scrubber/services"
	"phone-scrubber/storage"
	"phone-scrubber/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// scrubRequest carries the inputs of one scrub run.
type scrubRequest struct {
	ListPath   string
	LogPaths   []string
	Conditions []string
	Now        time.Time
}

// runScrub executes a full batch: read inputs, scrub, publish artifacts,
// optionally bundle and audit, then print the summary to stdout.
func runScrub(ctx context.Context, cfg *config.Config, req scrubRequest, logger *utils.Logger, stdout io.Writer) error {
	start := time.Now()
	logger.Info("=== Phone Scrubber starting ===")
	logger.Info("Config: logs: %d | conditions: %d | concurrency: %d | capture: %s | out: %s",
		len(req.LogPaths), len(req.Conditions), cfg.MaxConcurrency, cfg.CapturePolicy, cfg.OutputDir)

	if len(req.Conditions) == 0 {
		return &services.ConditionError{Err: errors.New("at least one condition is required")}
	}
	conds, err := services.ParseConditions(req.Conditions)
	if err != nil {
		return err
	}
	policy, err := services.ParseCapturePolicy(cfg.CapturePolicy)
	if err != nil {
		return err
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return err
	}

	list, enc, err := storage.ReadTable(req.ListPath, cfg.CSVEncodings)
	if err != nil {
		return fmt.Errorf("read list: %w", err)
	}
	logger.Info("[main] Loaded list %s: %d rows (%s)", req.ListPath, list.Len(), enc)

	inputs := make([]models.LogInput, len(req.LogPaths))
	for i, path := range req.LogPaths {
		t, enc, err := storage.ReadTable(path, cfg.CSVEncodings)
		inputs[i] = models.LogInput{Name: path, Table: t, Err: err}
		if err != nil {
			logger.Warn("[main] Could not read log %s: %v", path, err)
			continue
		}
		logger.Debug("[main] Loaded log %s: %d rows (%s)", path, t.Len(), enc)
	}

	pipeline := services.NewPipeline(logger, services.Options{
		CategoryColumn: cfg.ListCategoryColumn,
		PhoneColumn:    cfg.ListPhoneColumn,
		Classifier:     classifier,
		CapturePolicy:  policy,
		NumericTextAll: cfg.NumericTextAll,
		DropDuplicates: cfg.DropDuplicates,
		MaxConcurrency: cfg.MaxConcurrency,
	})
	result, err := pipeline.Run(ctx, list, inputs, conds)
	if err != nil {
		return fmt.Errorf("scrub: %w", err)
	}

	artifacts := storage.BuildArtifacts(req.ListPath, result, req.Now, storage.Folders{
		Removed:  cfg.RemovedFolder,
		Scrubbed: cfg.ScrubbedFolder,
	})

	publisher := storage.NewPublisher(storage.NewDirUploader(cfg.OutputDir), logger,
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.MaxRetries)
	var publishErrs []error
	for _, pr := range publisher.Publish(ctx, artifacts) {
		if pr.Err != nil {
			publishErrs = append(publishErrs, pr.Err)
		}
	}

	numbersPath := filepath.Join(cfg.OutputDir, cfg.RemovedFolder,
		fmt.Sprintf("Removed_Numbers_%s_%s.csv", storage.BaseName(req.ListPath), req.Now.Format(storage.DateLayout)))
	if err := storage.WriteRemovalSet(numbersPath, result.RemovalSet); err != nil {
		publishErrs = append(publishErrs, err)
	} else {
		logger.Info("[main] Removal set saved to %s", numbersPath)
	}

	if cfg.ZipOutput {
		if err := writeBundle(cfg.OutputDir, req.Now, artifacts); err != nil {
			publishErrs = append(publishErrs, err)
		} else {
			logger.Info("[main] Bundle saved to %s", filepath.Join(cfg.OutputDir, storage.ZipName(req.Now)))
		}
	}

	if cfg.PostgresEnabled {
		if err := recordRun(ctx, newRunRecorder, cfg.DSN(), req.ListPath, result); err != nil {
			logger.Error("[main] PostgreSQL audit failed: %v", err)
			publishErrs = append(publishErrs, err)
		} else {
			logger.Info("[main] Run %s recorded in PostgreSQL", result.RunID)
		}
	}

	summary := services.NewSummaryService(logger)
	summary.Print(stdout, summary.Generate(result))
	logger.Info("=== Phone Scrubber finished in %s ===", utils.Since(start))

	if len(publishErrs) > 0 {
		return fmt.Errorf("%d output(s) failed: %w", len(publishErrs), errors.Join(publishErrs...))
	}
	return nil
}

// newClassifier prefers PHONE_COLUMN_PATTERN over the substring hints.
func newClassifier(cfg *config.Config) (services.ColumnClassifier, error) {
	if cfg.PhoneColumnPattern != "" {
		return services.NewRegexClassifier(cfg.PhoneColumnPattern)
	}
	return services.NewSubstringClassifier(cfg.PhoneColumnHints...), nil
}

func writeBundle(dir string, now time.Time, artifacts []storage.Artifact) error {
	data, err := storage.BuildZip(artifacts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("zip: create output dir: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, storage.ZipName(now)), data, 0644)
}

// newRunRecorder opens the audit sink for POSTGRES_ENABLED runs.
var newRunRecorder = func(dsn string) (storage.RunRecorder, error) {
	pw, err := storage.NewPostgresWriter(dsn)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func recordRun(ctx context.Context, open func(dsn string) (storage.RunRecorder, error), dsn, listPath string, result *models.RunResult) error {
	recorder, err := open(dsn)
	if err != nil {
		return err
	}
	defer recorder.Close()

	return recorder.RecordRun(ctx, listPath, result)
}
