package negotiation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// FieldKey names a persisted condition field. The set is closed.
type FieldKey string

const (
	FieldAgeRange  FieldKey = "age_range"
	FieldMinHeight FieldKey = "min_height"
	FieldSmoking   FieldKey = "smoking"
	FieldIncome    FieldKey = "income"
	FieldEducation FieldKey = "education"
	FieldRegion    FieldKey = "region"
	FieldReligion  FieldKey = "religion"
	FieldJob       FieldKey = "job"
)

// NoChangesSummary is the summary recorded when nothing was relaxed.
const NoChangesSummary = "변경 사항 없음"

// FieldContract pairs a field with its accepted value templates.
type FieldContract struct {
	Key       FieldKey
	Templates string
	pattern   *regexp.Regexp
}

// Matches reports whether value already uses a canonical template.
func (c FieldContract) Matches(value string) bool {
	return c.pattern.MatchString(value)
}

// FieldContracts lists every persisted field in display order.
var FieldContracts = []FieldContract{
	{FieldAgeRange, "NN년생 | NN~NN년생 | 무관", regexp.MustCompile(`^(\d{2}년생|\d{2}~\d{2}년생|무관)$`)},
	{FieldMinHeight, "NNNcm 이상 | NNNcm 이하 | 무관", regexp.MustCompile(`^(\d{3}cm (이상|이하)|무관)$`)},
	{FieldSmoking, "비흡연 | 흡연 무관", regexp.MustCompile(`^(비흡연|흡연 무관)$`)},
	{FieldIncome, "N천만원 이상 | N억만원 이상 | N억 N천만원 이상 | 무관", regexp.MustCompile(`^(\d천만원 이상|\d+억만원 이상|\d+억 \d천만원 이상|무관)$`)},
	{FieldEducation, "고졸 이상 | 전문대졸 이상 | 대졸 이상 | 대학원졸 이상 | 무관", regexp.MustCompile(`^(고졸 이상|전문대졸 이상|대졸 이상|대학원졸 이상|무관)$`)},
	{FieldRegion, "전남 | 광주 | 전남/광주 | 무관", regexp.MustCompile(`^(전남|광주|전남/광주|무관)$`)},
	{FieldReligion, "무교만 | 종교일치 | 무관", regexp.MustCompile(`^(무교만|종교일치|무관)$`)},
	{FieldJob, "직장인 | 직장인/자영업 | 무관", regexp.MustCompile(`^(직장인|직장인/자영업|무관)$`)},
}

func contractFor(key FieldKey) (FieldContract, bool) {
	for _, c := range FieldContracts {
		if c.Key == key {
			return c, true
		}
	}
	return FieldContract{}, false
}

// Outcome is the delta a finished consultation produces. It is forwarded to
// the result store and never merged back into the record.
type Outcome struct {
	Updates map[FieldKey]string `json:"updates"`
	Summary string              `json:"summary"`
	Memo    string              `json:"memo"`
}

// HasChanges reports whether any field was updated.
func (o Outcome) HasChanges() bool {
	return len(o.Updates) > 0
}

var (
	spaceRE     = regexp.MustCompile(`\s+`)
	tildeRE     = regexp.MustCompile(`\s*~\s*`)
	unitSpaceRE = regexp.MustCompile(`(\d)\s+cm`)
)

func tidyValue(v string) string {
	v = spaceRE.ReplaceAllString(strings.TrimSpace(v), " ")
	v = tildeRE.ReplaceAllString(v, "~")
	return unitSpaceRE.ReplaceAllString(v, "${1}cm")
}

// Canonicalize keeps only updates that use a canonical template. Anything
// else is moved into the memo so an accepted answer is never dropped. An
// empty summary becomes NoChangesSummary.
func Canonicalize(o Outcome) Outcome {
	out := Outcome{
		Updates: make(map[FieldKey]string, len(o.Updates)),
		Summary: strings.TrimSpace(o.Summary),
		Memo:    strings.TrimSpace(o.Memo),
	}

	keys := make([]string, 0, len(o.Updates))
	for k := range o.Updates {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var rejected []string
	for _, k := range keys {
		raw := o.Updates[FieldKey(k)]
		value := tidyValue(raw)
		if value == "" {
			continue
		}
		if c, ok := contractFor(FieldKey(k)); ok && c.Matches(value) {
			out.Updates[c.Key] = value
			continue
		}
		rejected = append(rejected, fmt.Sprintf("%s: %s", k, value))
	}

	if len(rejected) > 0 {
		note := "확인 필요 항목 - " + strings.Join(rejected, ", ")
		if out.Memo == "" {
			out.Memo = note
		} else {
			out.Memo += "\n" + note
		}
	}
	if out.Summary == "" {
		out.Summary = NoChangesSummary
	}
	return out
}
