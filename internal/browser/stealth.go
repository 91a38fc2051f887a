package browser

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay pauses for a random time between min and max milliseconds.
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(rand.Intn(max-min)+min) * time.Millisecond)
}

// HumanType clicks the target element and emits the text one character at
// a time with randomized inter-keystroke delays, including the occasional
// longer "thinking" pause.
func HumanType(page playwright.Page, selector, text string) error {
	loc := page.Locator(selector).First()
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		return &ElementNotFoundError{Selector: selector}
	}

	if err := loc.Click(); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}

	for _, r := range text {
		if err := page.Keyboard().Type(string(r)); err != nil {
			return fmt.Errorf("typing into %s: %w", selector, err)
		}
		RandomDelay(50, 150)
		if rand.Float64() < 0.10 {
			RandomDelay(100, 400)
		}
	}
	return nil
}

// HumanScroll walks down the page in randomized increments with pauses,
// occasionally scrolling back up. Page height is re-measured every step so
// lazily loaded content keeps the walk going; the step cap guarantees
// termination on pages that grow forever.
func HumanScroll(page playwright.Page) error {
	const maxScrollSteps = 40

	for i := 0; i < maxScrollSteps; i++ {
		step := 300 + rand.Intn(401) // 300-700px
		if _, err := page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", step)); err != nil {
			return fmt.Errorf("scrolling: %w", err)
		}
		RandomDelay(500, 2000)

		if rand.Float64() < 0.20 {
			up := 100 + rand.Intn(201)
			if _, err := page.Evaluate(fmt.Sprintf("window.scrollBy(0, -%d)", up)); err != nil {
				return fmt.Errorf("scrolling: %w", err)
			}
			RandomDelay(300, 800)
		}

		height, err := page.Evaluate("document.body.scrollHeight")
		if err != nil {
			return fmt.Errorf("measuring page height: %w", err)
		}
		pos, err := page.Evaluate("window.scrollY + window.innerHeight")
		if err != nil {
			return fmt.Errorf("measuring scroll position: %w", err)
		}
		if asFloat(pos) >= asFloat(height)-2 {
			break
		}
	}
	return nil
}

// RandomMouseMovement moves the pointer through a few random on-screen
// coordinates, a background liveness signal between form actions.
func RandomMouseMovement(page playwright.Page) {
	width, height := 1280, 720
	if vs := page.ViewportSize(); vs != nil {
		width, height = vs.Width, vs.Height
	}

	moves := 3 + rand.Intn(5) // 3-7 points
	for i := 0; i < moves; i++ {
		x := float64(rand.Intn(width))
		y := float64(rand.Intn(height))
		steps := 5 + rand.Intn(11)
		if err := page.Mouse().Move(x, y, playwright.MouseMoveOptions{
			Steps: playwright.Int(steps),
		}); err != nil {
			return
		}
		RandomDelay(100, 300)
	}
}

// asFloat coerces the numeric types Evaluate may hand back.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
