package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotWriter stores full-page audit captures, one file per attempt,
// named by queue item and timestamp.
type ScreenshotWriter struct {
	outputDir string
}

func NewScreenshotWriter(dir string) (*ScreenshotWriter, error) {
	if dir == "" {
		dir = filepath.Join("logs", "screenshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating screenshot dir: %w", err)
	}
	return &ScreenshotWriter{outputDir: dir}, nil
}

// Capture writes a full-page screenshot for the given queue item and
// returns the file path for the item's audit record.
func (s *ScreenshotWriter) Capture(page playwright.Page, queueID string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", queueID, timestamp))

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	return path, nil
}
