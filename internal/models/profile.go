package models

import "strings"

// Profile is the persona snapshot used to answer application forms.
type Profile struct {
	UserID      string `json:"user_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
	Country     string `json:"country"`
	LinkedIn    string `json:"linkedin"`
	Website     string `json:"website"`
	Salary      string `json:"salary_expectation"`
	StartDate   string `json:"available_start_date"`
	VisaStatus  string `json:"visa_status"`
}

// FullName joins the name parts, tolerating a missing half.
func (p *Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Value resolves a canonical persona field to its profile value. The second
// return is false when the profile has nothing for that field.
func (p *Profile) Value(f PersonaField) (string, bool) {
	var v string
	switch f {
	case PersonaFirstName:
		v = p.FirstName
	case PersonaLastName:
		v = p.LastName
	case PersonaFullName:
		v = p.FullName()
	case PersonaEmail:
		v = p.Email
	case PersonaPhone:
		v = p.Phone
	case PersonaLinkedIn:
		v = p.LinkedIn
	case PersonaWebsite:
		v = p.Website
	case PersonaSalary:
		v = p.Salary
	case PersonaStartDate:
		v = p.StartDate
	case PersonaVisaStatus:
		v = p.VisaStatus
	case PersonaAddress:
		v = p.Address
	case PersonaCity:
		v = p.City
	case PersonaState:
		v = p.State
	case PersonaZipCode:
		v = p.ZipCode
	case PersonaCountry:
		v = p.Country
	default:
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
