package browser

import (
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ATSPlatform identifies the applicant tracking system hosting a form.
type ATSPlatform string

const (
	ATSGreenhouse      ATSPlatform = "greenhouse"
	ATSLever           ATSPlatform = "lever"
	ATSWorkday         ATSPlatform = "workday"
	ATSBambooHR        ATSPlatform = "bamboohr"
	ATSSmartRecruiters ATSPlatform = "smartrecruiters"
	ATSCustom          ATSPlatform = "custom"
)

// atsSignatures is an ordered substring table; the first match wins and
// anything unrecognized is a custom career page.
var atsSignatures = []struct {
	substr   string
	platform ATSPlatform
}{
	{"greenhouse", ATSGreenhouse},
	{"lever.co", ATSLever},
	{"myworkdayjobs", ATSWorkday},
	{"workday", ATSWorkday},
	{"bamboohr", ATSBambooHR},
	{"smartrecruiters", ATSSmartRecruiters},
}

// ClassifyATS maps a job URL to its hosting platform by host/path
// substrings.
func ClassifyATS(rawURL string) ATSPlatform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ATSCustom
	}
	haystack := strings.ToLower(parsed.Hostname() + parsed.Path)
	for _, sig := range atsSignatures {
		if strings.Contains(haystack, sig.substr) {
			return sig.platform
		}
	}
	return ATSCustom
}

// DetectATSPlatform classifies the page currently loaded.
func DetectATSPlatform(page playwright.Page) ATSPlatform {
	return ClassifyATS(page.URL())
}
