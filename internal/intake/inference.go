package intake

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	maxConditionFieldLen = 200
	maxSmokingValueLen   = 20
)

var (
	conditionKeywords = []string{"나이", "키", "지역", "직업", "학력", "종교", "연봉", "흡연"}
	consentPhrases    = []string{"동의합니다", "사실이며", "규정을 확인"}

	digitRE       = regexp.MustCompile(`\d`)
	numberRE      = regexp.MustCompile(`\d+`)
	threeDigitRE  = regexp.MustCompile(`\d{3}`)
	educationRE   = regexp.MustCompile(`대졸|고졸|전문대|대학원|석사|박사`)
	birthYearRE   = regexp.MustCompile(`년생|19\d{2}|20\d{2}|\d{2}\s*~`)
	ageInYearsRE  = regexp.MustCompile(`\d{2}살`)
	conditionSepR = regexp.MustCompile(`[|/]`)
)

// findConditionColumn picks the column most likely to hold the selected
// condition list. A pipe-delimited candidate wins outright; otherwise the
// highest keyword count wins and ties keep the earliest column.
func findConditionColumn(fields []string, start int) int {
	best, bestCount := -1, 0
	for i := max(start, 0); i < len(fields); i++ {
		val := strings.TrimSpace(fields[i])
		if utf8.RuneCountInString(val) > maxConditionFieldLen || containsAny(val, consentPhrases) {
			continue
		}
		if looksLikeDate(val) {
			continue
		}
		count := 0
		for _, kw := range conditionKeywords {
			if strings.Contains(val, kw) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		if strings.Contains(val, "|") {
			return i
		}
		if count > bestCount {
			best, bestCount = i, count
		}
	}
	return best
}

// looksLikeDate matches slash-delimited timestamps such as "2024/03/01 10:22".
func looksLikeDate(val string) bool {
	if !strings.Contains(val, "/") || !digitRE.MatchString(val) {
		return false
	}
	return !containsAny(val, []string{"년생", "cm", "~"})
}

type preferenceValues struct {
	smoking   string
	education string
	age       string
	height    string
	income    string
	weights   string
}

// inferPreferences classifies free-text columns by content. The first
// matching category claims a value and each category is claimed at most once.
func inferPreferences(fields []string, start, condIdx, heightIdx int, birth string) preferenceValues {
	var out preferenceValues
	for i := max(start, 0); i < len(fields); i++ {
		if i == condIdx {
			continue
		}
		val := strings.TrimSpace(fields[i])
		if val == "" || containsAny(val, consentPhrases) {
			continue
		}

		switch {
		case out.smoking == "" && isSmokingValue(val):
			out.smoking = val
		case out.education == "" && isEducationValue(val):
			out.education = val
		case out.age == "" && isAgeValue(val, birth):
			out.age = val
		case out.height == "" && i != heightIdx && isHeightValue(val):
			out.height = val
		case out.income == "" && isIncomeValue(val):
			out.income = val
		case out.weights == "" && isPriorityWeights(val):
			out.weights = val
		}
	}
	return out
}

func isSmokingValue(val string) bool {
	return (strings.Contains(val, "흡연자") || strings.Contains(val, "비흡연")) &&
		utf8.RuneCountInString(val) < maxSmokingValueLen
}

// isEducationValue skips labels such as "학력 무관" that name the column
// rather than a degree level.
func isEducationValue(val string) bool {
	return educationRE.MatchString(val) && !strings.Contains(val, "학력")
}

func isAgeValue(val, birth string) bool {
	if !birthYearRE.MatchString(val) && !ageInYearsRE.MatchString(val) {
		return false
	}
	if birth != "" && strings.Contains(val, birth) {
		return false
	}
	first := numberRE.FindString(val)
	return first != "" && len(first) <= 4
}

func isHeightValue(val string) bool {
	if containsAny(val, []string{"원", "천", "억"}) {
		return false
	}
	if containsAny(val, []string{"cm", "이상", "이하"}) {
		return !strings.Contains(val, "년생") && !strings.Contains(val, "kg")
	}
	for _, tok := range threeDigitRE.FindAllString(val, -1) {
		n, _ := strconv.Atoi(tok)
		if n >= 140 && n <= 190 {
			return true
		}
	}
	return false
}

func isIncomeValue(val string) bool {
	scaled := strings.Contains(val, "천") || strings.Contains(val, "억") ||
		(strings.Contains(val, "무관") && strings.Contains(val, "연봉"))
	if !scaled {
		return false
	}
	return !strings.Contains(val, "년") && !strings.Contains(val, "세")
}

func isPriorityWeights(val string) bool {
	if strings.Contains(val, "순위") || strings.Contains(val, "중요") {
		return true
	}
	return strings.Contains(val, "/") && digitRE.MatchString(val) && !strings.Contains(val, "년생")
}

// SplitConditions turns the raw condition cell into an ordered label list.
// Brackets are stripped; "|" and "/" take precedence over ",".
func SplitConditions(raw string) []string {
	clean := strings.NewReplacer("[", "", "]", "").Replace(raw)
	var parts []string
	switch {
	case strings.ContainsAny(clean, "|/"):
		parts = conditionSepR.Split(clean, -1)
	case strings.Contains(clean, ","):
		parts = strings.Split(clean, ",")
	case strings.TrimSpace(clean) != "":
		parts = []string{clean}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || strings.Contains(p, "동의") || strings.Contains(p, "사실") {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsAny(val string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(val, n) {
			return true
		}
	}
	return false
}
