package preference

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eumlog/consultation-engine/internal/intake"
)

func TestIsFlexible(t *testing.T) {
	tests := map[string]bool{
		"무관":       true,
		"상관 없어요":   true,
		"상관없음":     true,
		"모두 가능":    true,
		"다 괜찮아요":   true,
		"다가능":      true,
		"전혀 신경 안씀": true,
		"오픈 마인드":   true,
		"85~90년생":  false,
		"":         false,
	}
	for text, want := range tests {
		assert.Equal(t, want, IsFlexible(text), text)
	}
}

func TestIsMaxLimit(t *testing.T) {
	assert.True(t, IsMaxLimit("165cm 이하"))
	assert.True(t, IsMaxLimit("160 미만"))
	assert.True(t, IsMaxLimit("작은 편"))
	assert.True(t, IsMaxLimit("아담한 스타일"))
	assert.False(t, IsMaxLimit("160cm 이상"))
}

func TestResolveBirthYearWindow(t *testing.T) {
	for n := 0; n < 100; n++ {
		token := fmt.Sprintf("%02d", n)
		got, ok := ResolveBirthYear(token)
		assert.True(t, ok, token)
		if n < 30 {
			assert.Equal(t, 2000+n, got, token)
		} else {
			assert.Equal(t, 1900+n, got, token)
		}
		again, _ := ResolveBirthYear(token)
		assert.Equal(t, got, again, "resolution must be stable")
	}
}

func TestResolveBirthYearRejects(t *testing.T) {
	for _, token := range []string{"", "9", "175", "19950", "ab"} {
		_, ok := ResolveBirthYear(token)
		assert.False(t, ok, token)
	}
	got, ok := ResolveBirthYear("1988")
	assert.True(t, ok)
	assert.Equal(t, 1988, got)
}

func TestBindingBirthYear(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"85~90년생", 1985, true},
		{"90년생 ~ 85년생", 1985, true},
		{"1988~1992", 1988, true},
		{"95년생 이상", 1995, true},
		{"02~05년생", 2002, true},
		{"88 또는 1986", 1986, true},
		{"연상만", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := BindingBirthYear(tt.text)
		assert.Equal(t, tt.ok, ok, tt.text)
		assert.Equal(t, tt.want, got, tt.text)
	}
}

func TestYearLabel(t *testing.T) {
	assert.Equal(t, "90", YearLabel(1990))
	assert.Equal(t, "01", YearLabel(2001))
	assert.Equal(t, "00", YearLabel(2000))
}

func TestIncomeAmount(t *testing.T) {
	tests := map[string]int{
		"1억 이상":     10000,
		"5천 이상":     5000,
		"연봉 7천만원":   7000,
		"3천~4천":     3000,
		"무관":        0,
		"5000만원 이상": 0,
		"":          0,
	}
	for text, want := range tests {
		assert.Equal(t, want, IncomeAmount(text), text)
	}
}

func TestHeightValue(t *testing.T) {
	tests := map[string]int{
		"175cm 이상":   175,
		"최소 170":     170,
		"170~175":    170,
		"키 큰 사람":     0,
		"":           0,
		"1 순위 180cm": 180,
	}
	for text, want := range tests {
		assert.Equal(t, want, HeightValue(text), text)
	}
}

func TestHasRange(t *testing.T) {
	assert.True(t, HasRange("155~160"))
	assert.True(t, HasRange("155-160"))
	assert.True(t, HasRange("155에서 160 사이"))
	assert.True(t, HasRange("155 160"))
	assert.False(t, HasRange("155cm 이상"))
}

func TestIsHeightPriority(t *testing.T) {
	assert.True(t, IsHeightPriority("키1, 나이2"))
	assert.True(t, IsHeightPriority("키 1순위"))
	assert.False(t, IsHeightPriority("나이1, 키2"))
}

func TestIsHighEducation(t *testing.T) {
	assert.True(t, IsHighEducation("대졸 이상"))
	assert.True(t, IsHighEducation("4년제"))
	assert.True(t, IsHighEducation("대학원"))
	assert.False(t, IsHighEducation("전문대졸 이상"))
	assert.False(t, IsHighEducation("초대졸 이상"))
	assert.False(t, IsHighEducation("고졸 이상"))
}

func TestResidence(t *testing.T) {
	assert.Equal(t, "여수", ResidenceCity("전남 여수시 학동"))
	assert.Equal(t, "목포", ResidenceCity("목포"))
	assert.Equal(t, "", ResidenceCity("광주 서구"))
	assert.Equal(t, "광양", ResidenceCity("순천/광양"), "later cluster city wins")

	assert.True(t, InMetro("광주광역시 북구"))
	assert.False(t, InMetro("여수"))

	assert.True(t, InIndustrialBelt("순천시"))
	assert.False(t, InIndustrialBelt("목포시"))
}

func TestClassifySmoking(t *testing.T) {
	tests := map[string]SmokingStance{
		"":        SmokingUnstated,
		"비흡연자 선호": SmokingNonSmokerOnly,
		"흡연자 가능":  SmokingAcceptsSmokers,
		"괜찮아요":    SmokingAcceptsSmokers,
		"상관없음":    SmokingAcceptsSmokers,
		"흡연자":     SmokingStated,
	}
	for text, want := range tests {
		assert.Equal(t, want, ClassifySmoking(text), text)
	}
	assert.Equal(t, "non_smoker_only", SmokingNonSmokerOnly.String())
}

func TestNormalize(t *testing.T) {
	rec := intake.ClientRecord{
		Gender:                 intake.GenderFemale,
		BirthToken:             "950412",
		Location:               "전남 여수시",
		PreferredAgeText:       "85~90년생",
		PreferredHeightText:    "175cm 이상",
		PreferredSmokingText:   "비흡연자 선호",
		PreferredEducationText: "4년제 대졸 이상",
		PreferredIncomeText:    "5천 이상",
		PriorityWeightsText:    "키1, 나이2",
	}
	p := Normalize(rec)

	assert.Equal(t, 1995, p.ClientBirthYear)
	assert.Equal(t, 1985, p.BindingYear)
	assert.False(t, p.AgeFlexible)
	assert.Equal(t, 175, p.HeightValue)
	assert.False(t, p.HeightMaxLimit)
	assert.False(t, p.HeightRange)
	assert.True(t, p.HeightPriority)
	assert.Equal(t, SmokingNonSmokerOnly, p.Smoking)
	assert.True(t, p.HighEducation)
	assert.Equal(t, 5000, p.IncomeAmount)
	assert.Equal(t, "여수", p.City)
	assert.False(t, p.InMetro)
	assert.True(t, p.InIndustrialBelt)
}

func TestNormalizeUnknownBirth(t *testing.T) {
	p := Normalize(intake.ClientRecord{BirthToken: "미상"})
	assert.Zero(t, p.ClientBirthYear)
	assert.Zero(t, p.BindingYear)
}
