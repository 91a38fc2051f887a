package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-autoapply/internal/models"
)

// Detector scans a live page for fillable form controls and maps each one
// onto the canonical persona vocabulary. Results are per-scan and consumed
// immediately; nothing here is persisted.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// controlTypes are input types that exist for navigation, not data entry.
var controlTypes = map[string]bool{
	"submit": true,
	"button": true,
	"hidden": true,
	"image":  true,
	"reset":  true,
}

// DetectFields enumerates every visible input/textarea/select that has a
// stable handle (#id or [name=...]) and infers its type, label and persona
// mapping. Fields without id and name are dropped: there is no reliable
// way to address them later.
func (d *Detector) DetectFields(page playwright.Page) ([]models.DetectedField, error) {
	locators, err := page.Locator("input, textarea, select").All()
	if err != nil {
		return nil, fmt.Errorf("enumerating form controls: %w", err)
	}

	var fields []models.DetectedField
	for _, loc := range locators {
		visible, err := loc.IsVisible()
		if err != nil || !visible {
			continue
		}

		tagVal, err := loc.Evaluate("el => el.tagName.toLowerCase()", nil)
		if err != nil {
			continue
		}
		tag, _ := tagVal.(string)

		typeAttr, _ := loc.GetAttribute("type")
		typeAttr = strings.ToLower(strings.TrimSpace(typeAttr))
		if tag == "input" && controlTypes[typeAttr] {
			continue
		}

		id, _ := loc.GetAttribute("id")
		name, _ := loc.GetAttribute("name")
		selector, ok := BuildSelector(id, name)
		if !ok {
			continue
		}

		field := models.DetectedField{
			Selector: selector,
			Type:     InferFieldType(tag, typeAttr),
			Label:    resolveLabel(page, loc, id),
		}

		if reqVal, err := loc.Evaluate("el => el.required === true", nil); err == nil {
			field.Required, _ = reqVal.(bool)
		}
		if maxAttr, _ := loc.GetAttribute("maxlength"); maxAttr != "" {
			field.MaxLength, _ = strconv.Atoi(maxAttr)
		}
		if field.Type == models.FieldDropdown {
			if options, err := loc.Locator("option").AllTextContents(); err == nil {
				for _, opt := range options {
					if opt = strings.TrimSpace(opt); opt != "" {
						field.Options = append(field.Options, opt)
					}
				}
			}
		}

		field.Mapping = MapPersonaField(field.Label, name, id)
		fields = append(fields, field)
	}

	return fields, nil
}

// BuildSelector picks the stable handle for a control: #id wins, then
// [name=...]; without either there is nothing to hold on to.
func BuildSelector(id, name string) (string, bool) {
	if id != "" {
		return "#" + id, true
	}
	if name != "" {
		return fmt.Sprintf("[name='%s']", name), true
	}
	return "", false
}

// resolveLabel tries, in order: an explicit <label for=...>, the
// aria-label, then the placeholder.
func resolveLabel(page playwright.Page, loc playwright.Locator, id string) string {
	if id != "" {
		labelLoc := page.Locator(fmt.Sprintf("label[for='%s']", id))
		if count, _ := labelLoc.Count(); count > 0 {
			if text, err := labelLoc.First().TextContent(); err == nil {
				if text = strings.TrimSpace(text); text != "" {
					return text
				}
			}
		}
	}
	if aria, _ := loc.GetAttribute("aria-label"); strings.TrimSpace(aria) != "" {
		return strings.TrimSpace(aria)
	}
	if placeholder, _ := loc.GetAttribute("placeholder"); strings.TrimSpace(placeholder) != "" {
		return strings.TrimSpace(placeholder)
	}
	return ""
}

// InferFieldType classifies a control by tag, then by its type attribute.
func InferFieldType(tag, typeAttr string) models.FieldType {
	switch tag {
	case "textarea":
		return models.FieldTextarea
	case "select":
		return models.FieldDropdown
	}
	switch typeAttr {
	case "checkbox":
		return models.FieldCheckbox
	case "radio":
		return models.FieldRadio
	case "file":
		return models.FieldFile
	case "date":
		return models.FieldDate
	case "email":
		return models.FieldEmail
	case "tel":
		return models.FieldPhone
	default:
		return models.FieldText
	}
}

type personaRule struct {
	pattern *regexp.Regexp
	field   models.PersonaField
}

func rule(field models.PersonaField, pattern string) personaRule {
	return personaRule{regexp.MustCompile(`(?i)` + pattern), field}
}

// personaRules is tried in order; the first match wins. Specific name
// parts come before the generic name rule, and address parts sit last so
// "city of residence" never shadows contact fields.
var personaRules = []personaRule{
	rule(models.PersonaFirstName, `first[\s_-]*name|given[\s_-]*name|fname`),
	rule(models.PersonaLastName, `last[\s_-]*name|family[\s_-]*name|surname|lname`),
	rule(models.PersonaFullName, `full[\s_-]*name|your[\s_-]*name|\bname\b`),
	rule(models.PersonaEmail, `e-?mail`),
	rule(models.PersonaPhone, `phone|mobile|\btel\b`),
	rule(models.PersonaLinkedIn, `linked[\s_-]*in`),
	rule(models.PersonaWebsite, `website|portfolio|github|personal[\s_-]*site`),
	rule(models.PersonaResume, `resume|\bcv\b|curriculum`),
	rule(models.PersonaCoverLetter, `cover[\s_-]*letter`),
	rule(models.PersonaSalary, `salary|compensation|desired[\s_-]*pay|pay[\s_-]*expectation`),
	rule(models.PersonaStartDate, `start[\s_-]*date|available|availability|notice[\s_-]*period`),
	rule(models.PersonaVisaStatus, `visa|sponsor|work[\s_-]*authori[sz]|legally[\s_-]*authori[sz]ed|right[\s_-]*to[\s_-]*work`),
	rule(models.PersonaAddress, `address|street`),
	rule(models.PersonaCity, `\bcity\b|\btown\b`),
	rule(models.PersonaState, `\bstate\b|province|region`),
	rule(models.PersonaZipCode, `\bzip\b|post[\s_-]*code|postal`),
	rule(models.PersonaCountry, `country`),
}

// MapPersonaField maps a control onto the persona vocabulary by matching
// ordered patterns against label+name+id. Deliberately heuristic: the
// priority order is the contract, not universal correctness.
func MapPersonaField(label, name, id string) models.PersonaField {
	haystack := normalizeText(label + " " + name + " " + id)
	for _, r := range personaRules {
		if r.pattern.MatchString(haystack) {
			return r.field
		}
	}
	return models.PersonaUnknown
}

// normalizeText lowercases and strips diacritics so accented labels still
// hit the ASCII patterns.
func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}
