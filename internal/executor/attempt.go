package executor

import (
	"context"
	"fmt"
	"log/slog"

	"go-autoapply/internal/browser"
	"go-autoapply/internal/form"
	"go-autoapply/internal/models"
	"go-autoapply/internal/profile"
	"go-autoapply/utils"
)

// JobSource resolves a job id to its application URL.
type JobSource interface {
	GetJobURL(ctx context.Context, jobID string) (string, error)
}

// DocumentSource resolves a stored document id to a local file path.
type DocumentSource interface {
	GetDocumentPath(ctx context.Context, docID string) (string, error)
}

// BrowserAttemptRunner performs one application attempt in a fresh stealth
// browser context. The context lives exactly as long as the attempt.
type BrowserAttemptRunner struct {
	engine   *browser.Engine
	filler   *form.Filler
	profiles profile.Provider
	jobs     JobSource
	docs     DocumentSource
	shots    *utils.ScreenshotWriter
	logger   *slog.Logger
}

func NewBrowserAttemptRunner(engine *browser.Engine, filler *form.Filler, profiles profile.Provider, jobs JobSource, docs DocumentSource, shots *utils.ScreenshotWriter, logger *slog.Logger) *BrowserAttemptRunner {
	return &BrowserAttemptRunner{
		engine:   engine,
		filler:   filler,
		profiles: profiles,
		jobs:     jobs,
		docs:     docs,
		shots:    shots,
		logger:   logger,
	}
}

func (r *BrowserAttemptRunner) RunAttempt(ctx context.Context, item *models.QueueItem) (*models.AttemptResult, error) {
	if err := r.engine.Start(); err != nil {
		return nil, fmt.Errorf("starting browser engine: %w", err)
	}

	jobURL, err := r.jobs.GetJobURL(ctx, item.JobID)
	if err != nil {
		return nil, fmt.Errorf("resolving job %s: %w", item.JobID, err)
	}
	prof, err := r.profiles.GetProfile(ctx, item.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading profile for %s: %w", item.UserID, err)
	}
	resumePath, err := r.docs.GetDocumentPath(ctx, item.ResumeID)
	if err != nil {
		return nil, fmt.Errorf("resolving resume %s: %w", item.ResumeID, err)
	}
	coverPath, err := r.docs.GetDocumentPath(ctx, item.CoverLetterID)
	if err != nil {
		return nil, fmt.Errorf("resolving cover letter: %w", err)
	}

	bctx, err := r.engine.NewStealthContext()
	if err != nil {
		return nil, fmt.Errorf("creating stealth context: %w", err)
	}
	defer bctx.Close()

	page, err := r.engine.NavigateToJob(bctx, jobURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	platform := browser.DetectATSPlatform(page)
	r.logger.Info("🚀 application attempt started",
		"queue_id", item.ID,
		"platform", platform,
		"attempt", item.AttemptCount,
		"url", jobURL)

	result := r.filler.FillApplication(ctx, page, prof, item.JobID, resumePath, coverPath)

	if r.shots != nil {
		if path, shotErr := r.shots.Capture(page, item.ID); shotErr != nil {
			r.logger.Warn("could not capture screenshot", "queue_id", item.ID, "error", shotErr)
		} else {
			result.ScreenshotPath = path
		}
	}

	return result, nil
}
