package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go-autoapply/internal/browser"
	"go-autoapply/internal/config"
	"go-autoapply/internal/form"
	applog "go-autoapply/internal/logger"
	"go-autoapply/internal/models"
	"go-autoapply/internal/profile"
	"go-autoapply/utils"
)

// One-shot application run against a single job URL. Useful for testing
// selectors and stealth behavior without the queue or the database.
func main() {
	url := flag.String("url", "", "job application URL")
	resume := flag.String("resume", "", "path to resume file")
	cover := flag.String("cover", "", "path to cover letter file")
	profilePath := flag.String("profile", "profile.json", "path to profile JSON")
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if *url == "" {
		log.Fatal("❌ -url is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Only browser and answer settings matter here, DATABASE_URL may
		// legitimately be absent.
		log.Printf("⚠️ Config not fully loaded: %v. Continuing with defaults.", err)
		cfg = &config.Config{Headless: true, ScreenshotDir: "logs/screenshots"}
	}

	prof, err := loadProfile(*profilePath)
	if err != nil {
		log.Fatalf("❌ Failed to load profile: %v", err)
	}
	log.Printf("🔧 Profile loaded for %s", prof.FullName())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	slogger := applog.New(cfg.LogLevel, cfg.LogFormat)
	engine := browser.NewEngine(cfg.Headless, cfg.CookiesPath, slogger)
	if err := engine.Start(); err != nil {
		log.Fatalf("❌ Failed to start browser: %v", err)
	}
	defer engine.Close()

	bctx, err := engine.NewStealthContext()
	if err != nil {
		log.Fatalf("❌ Failed to create browser context: %v", err)
	}
	defer bctx.Close()

	page, err := engine.NavigateToJob(bctx, *url)
	if err != nil {
		log.Fatalf("❌ Navigation failed: %v", err)
	}
	log.Printf("✅ Page loaded. Platform: %s", browser.DetectATSPlatform(page))

	filler := form.NewFiller(form.NewDetector(), profile.NewStaticAnswers(cfg.DefaultAnswers), slogger)
	result := filler.FillApplication(ctx, page, prof, "adhoc", *resume, *cover)

	if shots, err := utils.NewScreenshotWriter(cfg.ScreenshotDir); err == nil {
		if path, err := shots.Capture(page, "adhoc"); err == nil {
			result.ScreenshotPath = path
			log.Printf("📁 Screenshot saved to %s", path)
		}
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	os.Stdout.Write(append(out, '\n'))

	if result.Success {
		log.Printf("🏁 Application submitted. Filled %d fields over %d pages.",
			len(result.FilledFields), result.PagesTraversed)
	} else {
		log.Printf("❌ Application not confirmed. Errors: %v", result.Errors)
		os.Exit(1)
	}
}

func loadProfile(path string) (*models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var prof models.Profile
	if err := json.Unmarshal(data, &prof); err != nil {
		return nil, err
	}
	return &prof, nil
}
