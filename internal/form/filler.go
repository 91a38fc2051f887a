package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-autoapply/internal/browser"
	"go-autoapply/internal/models"
)

// maxFormPages bounds the page loop so malformed or infinitely paginating
// forms cannot hold an attempt forever.
const maxFormPages = 10

// AnswerProvider supplies best-effort answers for custom questions the
// profile vocabulary cannot cover.
type AnswerProvider interface {
	AnswerQuestion(ctx context.Context, jobID, question string) (string, error)
}

// Filler drives a single application attempt across one or more form
// pages. Field-level failures are recorded and never abort the attempt;
// page-level failures end it with everything filled so far retained.
type Filler struct {
	detector *Detector
	answers  AnswerProvider
	logger   *slog.Logger
}

func NewFiller(detector *Detector, answers AnswerProvider, logger *slog.Logger) *Filler {
	return &Filler{detector: detector, answers: answers, logger: logger}
}

// advanceSelectors is tried in order on every page. Next/continue controls
// come before submit so multi-step forms advance instead of short-circuit.
var advanceSelectors = []string{
	"button:has-text('Next')",
	"button:has-text('Continue')",
	"a:has-text('Next')",
	"a:has-text('Continue')",
	"button:has-text('Submit application')",
	"button:has-text('Submit')",
	"button[type='submit']",
	"input[type='submit']",
}

// FillApplication runs the detect-fill-advance loop until the form has no
// further pages or the page cap is hit.
func (f *Filler) FillApplication(ctx context.Context, page playwright.Page, profile *models.Profile, jobID, resumePath, coverLetterPath string) (result *models.AttemptResult) {
	result = &models.AttemptResult{}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.AddError(fmt.Sprintf("unexpected failure during fill: %v", r))
		}
	}()

	// Read the posting like a person would before touching the form.
	if err := browser.HumanScroll(page); err != nil {
		result.AddError(fmt.Sprintf("initial scroll failed: %v", err))
	}

	for pageNum := 1; pageNum <= maxFormPages; pageNum++ {
		result.PagesTraversed = pageNum

		fields, err := f.detector.DetectFields(page)
		if err != nil {
			result.AddError(fmt.Sprintf("page %d: field detection failed: %v", pageNum, err))
			result.Success = false
			return result
		}
		f.logger.Debug("form fields detected", "page", pageNum, "count", len(fields))

		for _, field := range fields {
			if err := f.fillField(ctx, page, field, profile, jobID, resumePath, coverLetterPath, result); err != nil {
				result.AddError(fmt.Sprintf("field %q (%s): %v", field.Label, field.Selector, err))
			}
		}

		browser.RandomMouseMovement(page)

		advanced, submitted := f.advance(page)
		if submitted {
			browser.RandomDelay(1500, 2500)
			if !submissionConfirmed(page) {
				f.logger.Warn("no submission confirmation detected", "job_id", jobID, "pages", pageNum)
			}
			result.Success = true
			return result
		}
		if !advanced {
			// Single-page form, or the final page has no explicit control.
			result.Success = true
			return result
		}

		// Let the next page settle before re-scanning.
		browser.RandomDelay(1000, 2500)
	}

	result.AddError(fmt.Sprintf("form did not terminate within %d pages", maxFormPages))
	result.Success = false
	return result
}

func (f *Filler) fillField(ctx context.Context, page playwright.Page, field models.DetectedField, profile *models.Profile, jobID, resumePath, coverLetterPath string, result *models.AttemptResult) error {
	switch field.Type {
	case models.FieldFile:
		path := resumePath
		if field.Mapping == models.PersonaCoverLetter {
			path = coverLetterPath
		}
		if path == "" {
			return fmt.Errorf("no document available for upload")
		}
		if err := page.Locator(field.Selector).First().SetInputFiles(path); err != nil {
			return fmt.Errorf("uploading file: %w", err)
		}
		result.FilledFields = append(result.FilledFields, models.FilledField{Label: field.Label, Value: path})
		return nil

	case models.FieldCheckbox, models.FieldRadio:
		value, err := f.resolveValue(ctx, field, profile, jobID)
		if err != nil {
			return err
		}
		if !isAffirmative(value) {
			return nil
		}
		if err := page.Locator(field.Selector).First().Check(); err != nil {
			return fmt.Errorf("checking: %w", err)
		}
		result.FilledFields = append(result.FilledFields, models.FilledField{Label: field.Label, Value: value})
		return nil

	case models.FieldDropdown:
		value, err := f.resolveValue(ctx, field, profile, jobID)
		if err != nil {
			return err
		}
		option := bestOption(field.Options, value)
		if option == "" {
			return fmt.Errorf("no option matches %q", value)
		}
		if _, err := page.Locator(field.Selector).First().SelectOption(playwright.SelectOptionValues{
			Labels: &[]string{option},
		}); err != nil {
			return fmt.Errorf("selecting %q: %w", option, err)
		}
		result.FilledFields = append(result.FilledFields, models.FilledField{Label: field.Label, Value: option})
		return nil

	default:
		value, err := f.resolveValue(ctx, field, profile, jobID)
		if err != nil {
			return err
		}
		if field.MaxLength > 0 && len(value) > field.MaxLength {
			value = value[:field.MaxLength]
		}
		if err := browser.HumanType(page, field.Selector, value); err != nil {
			return err
		}
		result.FilledFields = append(result.FilledFields, models.FilledField{Label: field.Label, Value: value})
		return nil
	}
}

// resolveValue finds what to put in a field: a direct persona lookup for
// known mappings, the answer provider for custom questions. An empty
// result is an error the caller records; it never aborts the attempt.
func (f *Filler) resolveValue(ctx context.Context, field models.DetectedField, profile *models.Profile, jobID string) (string, error) {
	if field.Mapping != models.PersonaUnknown {
		if v, ok := profile.Value(field.Mapping); ok {
			return v, nil
		}
		return "", fmt.Errorf("profile has no value for %s", field.Mapping)
	}

	question := field.Label
	if question == "" {
		return "", fmt.Errorf("unmapped field without a label")
	}
	answer, err := f.answers.AnswerQuestion(ctx, jobID, question)
	if err != nil {
		return "", fmt.Errorf("answering %q: %w", question, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", fmt.Errorf("no answer available for %q", question)
	}
	return answer, nil
}

// advance clicks the first visible next/continue/submit control. Returns
// whether anything was clicked and whether it was a final submit.
func (f *Filler) advance(page playwright.Page) (advanced, submitted bool) {
	for _, selector := range advanceSelectors {
		loc := page.Locator(selector).First()
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}
		text, _ := loc.TextContent()
		if err := loc.Click(); err != nil {
			f.logger.Debug("advance control click failed", "selector", selector, "error", err)
			continue
		}
		isSubmit := strings.Contains(strings.ToLower(text+" "+selector), "submit")
		return true, isSubmit
	}
	return false, false
}

// submissionConfirmed looks for the phrases ATSes actually put on their
// confirmation screens.
func submissionConfirmed(page playwright.Page) bool {
	body, err := page.Locator("body").TextContent()
	if err != nil {
		return false
	}
	lower := strings.ToLower(body)
	for _, indicator := range []string{
		"thank you",
		"application received",
		"application submitted",
		"successfully submitted",
		"we'll be in touch",
		"we will be in touch",
	} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// bestOption picks the dropdown option closest to the wanted value: exact
// match first, then containment either way.
func bestOption(options []string, value string) string {
	want := strings.ToLower(strings.TrimSpace(value))
	if want == "" {
		return ""
	}
	for _, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == want {
			return opt
		}
	}
	for _, opt := range options {
		lower := strings.ToLower(opt)
		if strings.Contains(lower, want) || strings.Contains(want, lower) {
			return opt
		}
	}
	return ""
}

func isAffirmative(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "y", "1", "on":
		return true
	}
	return false
}
