package browser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// Cookie is one browser cookie as exported to JSON (browser devtools /
// cookie-export extensions all produce this shape).
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads an exported cookie file for preloading into a stealth
// context, so attempts can reuse an existing logged-in session.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parsing cookie file %s: %w", path, err)
	}

	out := make([]playwright.OptionalCookie, len(cookies))
	for i, c := range cookies {
		out[i] = c.toPlaywright()
	}
	return out, nil
}

func (c Cookie) toPlaywright() playwright.OptionalCookie {
	cookie := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(c.Path),
	}

	if c.Expires > 0 {
		cookie.Expires = playwright.Float(c.Expires)
	}
	if c.HTTPOnly {
		cookie.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		cookie.Secure = playwright.Bool(true)
	}

	switch c.SameSite {
	case "Lax":
		cookie.SameSite = playwright.SameSiteAttributeLax
	case "Strict":
		cookie.SameSite = playwright.SameSiteAttributeStrict
	case "None":
		cookie.SameSite = playwright.SameSiteAttributeNone
	}

	return cookie
}
