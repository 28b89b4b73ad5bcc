package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"phone-scrubber/models"
	"phone-scrubber/utils"
)

// Options configures a Pipeline.
type Options struct {
	CategoryColumn string
	PhoneColumn    string
	Classifier     ColumnClassifier
	CapturePolicy  CapturePolicy
	NumericTextAll bool
	DropDuplicates bool
	MaxConcurrency int
}

// DefaultOptions mirrors the column names of the list exports this tool
// was built for.
func DefaultOptions() Options {
	return Options{
		CategoryColumn: "Log Type",
		PhoneColumn:    "Phone",
		CapturePolicy:  CaptureFirstPerRow,
		DropDuplicates: true,
		MaxConcurrency: 1,
	}
}

// Pipeline runs list aggregation, condition evaluation and per-log
// scrubbing for one batch.
type Pipeline struct {
	logger   *utils.Logger
	opts     Options
	scrubber *Scrubber
}

// NewPipeline creates a Pipeline with the given logger and options.
func NewPipeline(logger *utils.Logger, opts Options) *Pipeline {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	return &Pipeline{
		logger:   logger,
		opts:     opts,
		scrubber: NewScrubber(logger, opts.Classifier, opts.CapturePolicy, opts.NumericTextAll),
	}
}

// Run scrubs every log against the numbers selected from list by conds.
//
// SchemaError and ConditionError abort the run. Per-log problems are
// recorded as LogReadError in the matching LogResult and in
// RunResult.Failures, and the log passes through unmodified. Results are
// positionally aligned with logs. When ctx is cancelled, logs not yet
// started are reported as failures and Run returns the partial result
// together with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, list *models.Table, logs []models.LogInput, conds []models.Condition) (*models.RunResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)

	if err := ValidateConditions(conds); err != nil {
		return nil, err
	}

	agg, err := Aggregate(list, p.opts.CategoryColumn, p.opts.PhoneColumn)
	if err != nil {
		return nil, err
	}

	removal, err := EvaluateConditions(agg, conds)
	if err != nil {
		return nil, err
	}
	logger.Info("[pipeline] %d phone numbers matched by %d conditions", removal.Len(), len(conds))

	kept, removedFromList := SplitList(agg, removal, p.opts.DropDuplicates)
	logger.Info("[pipeline] List: %d rows in, %d kept, %d removed",
		list.Len(), kept.Len(), removedFromList.Len())

	result := &models.RunResult{
		RunID:           runID,
		UpdatedList:     kept,
		RemovedFromList: removedFromList,
		RemovalSet:      removal,
		Logs:            make([]models.LogResult, len(logs)),
	}

	// removal is read-only from here on; each job writes only its own slot.
	pool := utils.NewWorkerPool(p.opts.MaxConcurrency, 0)
	for i, in := range logs {
		if err := ctx.Err(); err != nil {
			result.Logs[i] = passThrough(in, &LogReadError{Log: in.Name, Index: i, Err: err})
			continue
		}
		pool.Submit(func() {
			result.Logs[i] = p.scrubOne(ctx, i, in, removal)
		})
	}
	pool.Wait()

	for _, lr := range result.Logs {
		if lr.Err != nil {
			result.Failures = append(result.Failures, lr.Err)
		}
	}

	logger.Info("[pipeline] Processed %d logs (%d failed) in %s",
		len(logs), len(result.Failures), utils.Since(start))
	return result, ctx.Err()
}

func (p *Pipeline) scrubOne(ctx context.Context, index int, in models.LogInput, removal models.RemovalSet) (res models.LogResult) {
	fail := func(err error) models.LogResult {
		lre := &LogReadError{Log: in.Name, Index: index, Err: err}
		p.logger.Error("[pipeline] %v", lre)
		return passThrough(in, lre)
	}

	defer func() {
		if r := recover(); r != nil {
			res = fail(fmt.Errorf("scrub panicked: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if in.Err != nil {
		return fail(in.Err)
	}
	if in.Table == nil {
		return fail(errors.New("no table was provided"))
	}

	res, err := p.scrubber.Scrub(in.Name, in.Table, removal)
	if err != nil {
		return fail(err)
	}
	return res
}

// passThrough returns the log unmodified with an empty removed set.
func passThrough(in models.LogInput, err error) models.LogResult {
	scrubbed := in.Table.Clone()
	if scrubbed == nil {
		scrubbed = &models.Table{}
	}
	return models.LogResult{
		Name:     in.Name,
		Scrubbed: scrubbed,
		Removed:  &models.Table{Columns: append([]string(nil), scrubbed.Columns...)},
		Err:      err,
	}
}
