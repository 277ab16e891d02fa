// Package preference turns free-text preference answers into the numeric
// bounds and flags the negotiation rules decide on. The original text is
// never discarded; guidance always quotes it back.
package preference

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	flexibleRE       = regexp.MustCompile(`무관|상관\s*없|모두|다\s*괜찮|다\s*가능|전혀|오픈`)
	maxLimitRE       = regexp.MustCompile(`이하|미만|작은|아담`)
	yearTokenRE      = regexp.MustCompile(`\d{2,4}`)
	numberRE         = regexp.MustCompile(`\d+`)
	incomeThousandRE = regexp.MustCompile(`(\d+)천`)
)

// IsFlexible reports "no preference" phrasing such as 무관 or 상관없어요.
func IsFlexible(text string) bool {
	return flexibleRE.MatchString(text)
}

// IsMaxLimit reports upper-bound phrasing such as 165cm 이하 or 아담한.
func IsMaxLimit(text string) bool {
	return maxLimitRE.MatchString(text)
}

// ResolveBirthYear maps a 2-digit token onto a full year using a sliding
// window (below 30 is 2000+, otherwise 1900+). 4-digit tokens pass through.
func ResolveBirthYear(token string) (int, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, false
	}
	switch len(token) {
	case 2:
		if n < 30 {
			return 2000 + n, true
		}
		return 1900 + n, true
	case 4:
		return n, true
	}
	return 0, false
}

// BindingBirthYear returns the earliest year named in an age preference.
// "85~90년생" binds at 1985. Tokens that are neither 2 nor 4 digits long are
// ignored.
func BindingBirthYear(text string) (int, bool) {
	best, found := 0, false
	for _, tok := range yearTokenRE.FindAllString(text, -1) {
		year, ok := ResolveBirthYear(tok)
		if !ok {
			continue
		}
		if !found || year < best {
			best, found = year, true
		}
	}
	return best, found
}

// YearLabel renders a full year as the two-digit form used in guidance ("90").
func YearLabel(year int) string {
	return strconv.Itoa(year%100/10) + strconv.Itoa(year%10)
}

// IncomeAmount resolves income text to 만원 units. Only 1억 and N천 forms are
// recognized; anything else is 0, meaning no numeric constraint.
func IncomeAmount(text string) int {
	if strings.Contains(text, "1억") {
		return 10000
	}
	m := incomeThousandRE.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n * 1000
}

// HeightValue returns the first 2 or 3 digit number in a height preference,
// or 0 when none is present.
func HeightValue(text string) int {
	for _, tok := range numberRE.FindAllString(text, -1) {
		if len(tok) < 2 || len(tok) > 3 {
			continue
		}
		n, _ := strconv.Atoi(tok)
		return n
	}
	return 0
}

// HasRange reports whether a height preference already spans a range.
func HasRange(text string) bool {
	if strings.ContainsAny(text, "~-") || strings.Contains(text, "사이") {
		return true
	}
	return len(numberRE.FindAllString(text, -1)) >= 2
}

// IsHeightPriority reports whether the ranking text puts height first.
func IsHeightPriority(weights string) bool {
	return strings.Contains(weights, "키1") || strings.Contains(weights, "키 1")
}

// IsHighEducation reports a four-year degree (or higher) requirement.
// Associate-degree qualifiers such as 전문대졸 or 초대졸 do not count.
func IsHighEducation(text string) bool {
	high := strings.Contains(text, "대졸") || strings.Contains(text, "4년제") || strings.Contains(text, "대학원")
	return high && !strings.Contains(text, "전문") && !strings.Contains(text, "초대졸")
}
