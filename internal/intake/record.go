// Package intake recovers typed client records from untyped survey export rows.
package intake

import (
	"slices"
	"strings"
)

// Gender is the pivot value that anchors every other column in a row.
type Gender string

const (
	GenderMale   Gender = "남자"
	GenderFemale Gender = "여자"
)

// IsFemale reports whether the record belongs to a female client.
func (g Gender) IsFemale() bool { return g == GenderFemale }

// Tier is the membership plan implied by the number of guaranteed conditions.
type Tier string

const (
	TierBasic   Tier = "BASIC"
	TierPremium Tier = "PREMIUM"
)

// premiumThreshold is the largest condition count that still fits BASIC.
const premiumThreshold = 2

// TierFor returns PREMIUM when more than two conditions are guaranteed.
func TierFor(selected int) Tier {
	if selected > premiumThreshold {
		return TierPremium
	}
	return TierBasic
}

const (
	// DefaultGroup is used when the cohort column is blank.
	DefaultGroup = "일반"
	// NonReligious is the religion sentinel used when the column is absent.
	NonReligious = "무교"
)

// ClientRecord is one client's raw and normalized attributes. Records are
// values: downstream packages read them and never write back.
type ClientRecord struct {
	ID         string `json:"id"`
	Group      string `json:"group"`
	Name       string `json:"name"`
	Gender     Gender `json:"gender"`
	BirthToken string `json:"birthToken"`

	Phone           string `json:"phone"`
	Location        string `json:"location"`
	Job             string `json:"job"`
	Height          string `json:"height"`
	Education       string `json:"education"`
	Income          string `json:"income"`
	Smoking         string `json:"smoking"`
	Religion        string `json:"religion"`
	PersonalityNote string `json:"personalityNote"`

	PreferredAgeText       string `json:"preferredAgeText,omitempty"`
	PreferredHeightText    string `json:"preferredHeightText,omitempty"`
	PreferredSmokingText   string `json:"preferredSmokingText,omitempty"`
	PreferredIncomeText    string `json:"preferredIncomeText,omitempty"`
	PreferredEducationText string `json:"preferredEducationText,omitempty"`

	PriorityWeightsText   string   `json:"priorityWeightsText,omitempty"`
	SelectedConditionsRaw string   `json:"selectedConditionsRaw,omitempty"`
	SelectedConditions    []string `json:"selectedConditions"`
}

// Tier derives the membership plan from the current condition list.
func (r ClientRecord) Tier() Tier {
	return TierFor(len(r.SelectedConditions))
}

// Conditions returns a copy of the selected condition labels.
func (r ClientRecord) Conditions() []string {
	return slices.Clone(r.SelectedConditions)
}

// IsSelected reports whether any guaranteed condition mentions keyword.
// Sub-options such as "지역(전남)" count as selecting "지역".
func (r ClientRecord) IsSelected(keyword string) bool {
	for _, cond := range r.SelectedConditions {
		if strings.Contains(cond, keyword) {
			return true
		}
	}
	return false
}

// HasOption reports whether any guaranteed condition carries the sub-option.
func (r ClientRecord) HasOption(option string) bool {
	return r.IsSelected(option)
}

// ConditionLabels returns the condition list with sub-option suffixes removed,
// e.g. "지역(전남)" becomes "지역".
func (r ClientRecord) ConditionLabels() []string {
	out := make([]string, 0, len(r.SelectedConditions))
	for _, cond := range r.SelectedConditions {
		label, _, _ := strings.Cut(cond, "(")
		out = append(out, strings.TrimSpace(label))
	}
	return out
}

// BirthYearLabel returns the two-digit year prefix used in greetings ("95").
func (r ClientRecord) BirthYearLabel() string {
	token := strings.TrimSpace(r.BirthToken)
	runes := []rune(token)
	if len(runes) >= 4 && (strings.HasPrefix(token, "19") || strings.HasPrefix(token, "20")) && isDigits(string(runes[:4])) {
		return string(runes[2:4])
	}
	if len(runes) >= 2 {
		return string(runes[:2])
	}
	return token
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
