package models

// FieldType classifies a detected form control.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldPhone    FieldType = "phone"
	FieldDropdown FieldType = "dropdown"
	FieldCheckbox FieldType = "checkbox"
	FieldRadio    FieldType = "radio"
	FieldFile     FieldType = "file"
	FieldTextarea FieldType = "textarea"
	FieldDate     FieldType = "date"
	FieldUnknown  FieldType = "unknown"
)

// PersonaField is the canonical profile vocabulary detected fields map onto.
type PersonaField string

const (
	PersonaFirstName   PersonaField = "first_name"
	PersonaLastName    PersonaField = "last_name"
	PersonaFullName    PersonaField = "full_name"
	PersonaEmail       PersonaField = "email"
	PersonaPhone       PersonaField = "phone"
	PersonaLinkedIn    PersonaField = "linkedin"
	PersonaWebsite     PersonaField = "website"
	PersonaResume      PersonaField = "resume"
	PersonaCoverLetter PersonaField = "cover_letter"
	PersonaSalary      PersonaField = "salary"
	PersonaStartDate   PersonaField = "start_date"
	PersonaVisaStatus  PersonaField = "visa_status"
	PersonaAddress     PersonaField = "address"
	PersonaCity        PersonaField = "city"
	PersonaState       PersonaField = "state"
	PersonaZipCode     PersonaField = "zip_code"
	PersonaCountry     PersonaField = "country"
	PersonaUnknown     PersonaField = "unknown"
)

// DetectedField is one form control found during a page scan. Derived per
// scan and consumed immediately by the filler; never persisted.
type DetectedField struct {
	Selector  string
	Type      FieldType
	Label     string
	Required  bool
	MaxLength int
	Options   []string
	Mapping   PersonaField
}

// FilledField records one value actually entered into the form.
type FilledField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// AttemptResult is the output of one filler run. It is folded into the
// queue item's audit fields, not persisted verbatim.
type AttemptResult struct {
	Success        bool          `json:"success"`
	FilledFields   []FilledField `json:"filled_fields"`
	Errors         []string      `json:"errors"`
	PagesTraversed int           `json:"pages_traversed"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
}

// AddError appends a non-fatal error to the result.
func (r *AttemptResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}
