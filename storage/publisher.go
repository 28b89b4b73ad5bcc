package storage

import (
	"context"
	"time"

	"phone-scrubber/utils"
)

// PublishResult reports where one artifact went, or why it did not.
type PublishResult struct {
	Artifact Artifact
	Location string
	Err      error
}

// Publisher sends artifacts to an Uploader through a rate-limited worker
// pool, retrying failed uploads with back-off.
type Publisher struct {
	uploader    Uploader
	logger      *utils.Logger
	concurrency int
	rateLimitMs int
	retry       *utils.RetryConfig
}

// NewPublisher creates a Publisher.
func NewPublisher(uploader Uploader, logger *utils.Logger, concurrency, rateLimitMs, maxRetries int) *Publisher {
	return &Publisher{
		uploader:    uploader,
		logger:      logger,
		concurrency: concurrency,
		rateLimitMs: rateLimitMs,
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   500 * time.Millisecond,
			Logger:      logger,
		},
	}
}

// Publish uploads every artifact. Results are aligned with artifacts; one
// failed upload never stops the others.
func (p *Publisher) Publish(ctx context.Context, artifacts []Artifact) []PublishResult {
	results := make([]PublishResult, len(artifacts))
	pool := utils.NewWorkerPool(p.concurrency, p.rateLimitMs)

	for i, a := range artifacts {
		pool.Submit(func() {
			results[i] = p.publishOne(ctx, a)
		})
	}
	pool.Wait()
	return results
}

func (p *Publisher) publishOne(ctx context.Context, a Artifact) PublishResult {
	res := PublishResult{Artifact: a}

	data, err := EncodeTable(a.Table)
	if err != nil {
		res.Err = err
		return res
	}

	res.Err = p.retry.Do(ctx, "upload "+a.Name, func() error {
		loc, err := p.uploader.Upload(ctx, a.Folder, a.Name, data)
		if err != nil {
			return err
		}
		res.Location = loc
		return nil
	})

	if res.Err != nil {
		p.logger.Error("[publish] %s: %v", a.Name, res.Err)
	} else {
		p.logger.Info("[publish] Uploaded %s to %s", a.Name, res.Location)
	}
	return res
}
