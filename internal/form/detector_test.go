package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-autoapply/internal/models"
)

func TestMapPersonaField(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		attrName string
		id       string
		expected models.PersonaField
	}{
		{"label first name", "First Name", "", "", models.PersonaFirstName},
		{"name attr fname", "", "fname", "", models.PersonaFirstName},
		{"snake case id", "", "", "first_name", models.PersonaFirstName},
		{"surname", "Surname", "", "", models.PersonaLastName},
		{"full name only when no part matches", "Your Name", "", "", models.PersonaFullName},
		{"first beats generic name", "Name", "first-name", "", models.PersonaFirstName},
		{"email", "Email Address", "", "", models.PersonaEmail},
		{"hyphenated email", "E-mail", "", "", models.PersonaEmail},
		{"phone", "Phone Number", "", "", models.PersonaPhone},
		{"linkedin", "LinkedIn Profile", "", "", models.PersonaLinkedIn},
		{"portfolio", "Portfolio URL", "", "", models.PersonaWebsite},
		{"resume upload", "Upload your resume", "", "", models.PersonaResume},
		{"cv", "CV", "", "", models.PersonaResume},
		{"cover letter beats generic letter", "Cover Letter", "", "", models.PersonaCoverLetter},
		{"salary", "Desired Salary", "", "", models.PersonaSalary},
		{"start date", "Earliest Start Date", "", "", models.PersonaStartDate},
		{"visa", "Do you require visa sponsorship?", "", "", models.PersonaVisaStatus},
		{"work authorization", "Are you legally authorized to work?", "", "", models.PersonaVisaStatus},
		{"address", "Street Address", "", "", models.PersonaAddress},
		{"city", "City", "", "", models.PersonaCity},
		{"state", "State / Province", "", "", models.PersonaState},
		{"zip", "ZIP Code", "", "", models.PersonaZipCode},
		{"postal", "Postal Code", "", "", models.PersonaZipCode},
		{"country", "Country", "", "", models.PersonaCountry},
		{"non-english label has no rule", "Prénom", "", "", models.PersonaUnknown},
		{"custom question", "Why do you want to work here?", "", "q_motivation", models.PersonaUnknown},
		{"nothing at all", "", "", "", models.PersonaUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapPersonaField(tt.label, tt.attrName, tt.id))
		})
	}
}

func TestMapPersonaFieldStripsDiacritics(t *testing.T) {
	// Accents fold away so the ASCII patterns still hit.
	assert.Equal(t, models.PersonaEmail, MapPersonaField("Adresse é-mail", "", ""))
	assert.Equal(t, models.PersonaFirstName, MapPersonaField("Fírst Náme", "", ""))
}

func TestInferFieldType(t *testing.T) {
	tests := []struct {
		tag      string
		typeAttr string
		expected models.FieldType
	}{
		{"textarea", "", models.FieldTextarea},
		{"select", "", models.FieldDropdown},
		{"input", "checkbox", models.FieldCheckbox},
		{"input", "radio", models.FieldRadio},
		{"input", "file", models.FieldFile},
		{"input", "date", models.FieldDate},
		{"input", "email", models.FieldEmail},
		{"input", "tel", models.FieldPhone},
		{"input", "text", models.FieldText},
		{"input", "", models.FieldText},
		{"input", "search", models.FieldText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, InferFieldType(tt.tag, tt.typeAttr), "%s[type=%s]", tt.tag, tt.typeAttr)
	}
}

func TestBuildSelector(t *testing.T) {
	sel, ok := BuildSelector("email", "user_email")
	assert.True(t, ok)
	assert.Equal(t, "#email", sel, "id wins over name")

	sel, ok = BuildSelector("", "user_email")
	assert.True(t, ok)
	assert.Equal(t, "[name='user_email']", sel)

	_, ok = BuildSelector("", "")
	assert.False(t, ok, "fields without a stable handle are dropped")
}
