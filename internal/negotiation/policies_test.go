package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/preference"
)

func evaluate(policy Policy, rec intake.ClientRecord) Step {
	step, _ := policy(rec, preference.Normalize(rec))
	return step
}

func female(birth string, conds ...string) intake.ClientRecord {
	return intake.ClientRecord{Name: "김지현", Gender: intake.GenderFemale, BirthToken: birth, Religion: intake.NonReligious, SelectedConditions: conds}
}

func male(birth string, conds ...string) intake.ClientRecord {
	return intake.ClientRecord{Name: "박민수", Gender: intake.GenderMale, BirthToken: birth, Religion: intake.NonReligious, SelectedConditions: conds}
}

func TestAgeFemaleProposesFiveYearsOlder(t *testing.T) {
	rec := female("950412", "나이", "키")
	rec.PreferredAgeText = "85년생까지"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "90년생(5살 연상)")
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
	assert.True(t, step.Guaranteed)
	assert.False(t, step.FollowUpSuppressed)
	assert.Empty(t, step.Notices)
}

func TestAgeFemaleWidensNarrowWindow(t *testing.T) {
	rec := female("95", "나이")
	rec.PreferredAgeText = "92~95년생"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "90~91년생(5살 연상)")
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
}

func TestAgeFemaleAtBoundaryAccepts(t *testing.T) {
	rec := female("95")
	rec.PreferredAgeText = "90년생 이상"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "설문지 내용 그대로")
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
	assert.True(t, step.FollowUpSuppressed)
	assert.Len(t, step.Notices, 1, "age is not guaranteed")
}

func TestAgeMaleProposesOneYearYounger(t *testing.T) {
	rec := male("900101", "나이")
	rec.PreferredAgeText = "93~97년생"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "91년생(1살 연하)")
	assert.NotContains(t, step.GuidanceText, "91~")
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
}

func TestAgeMaleAsksAboutOlderPartner(t *testing.T) {
	rec := male("90")
	rec.PreferredAgeText = "91~95년생"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "연상도 가능하실까요?")
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
}

func TestAgeMaleAcceptsOlderWindow(t *testing.T) {
	rec := male("90")
	rec.PreferredAgeText = "88~93년생"

	step := evaluate(AgePolicy, rec)
	assert.Contains(t, step.GuidanceText, "설문지 내용 그대로")
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
}

func TestAgeFlexibleAndMissing(t *testing.T) {
	rec := female("95", "나이")
	rec.PreferredAgeText = "나이 무관"
	step := evaluate(AgePolicy, rec)
	assert.Equal(t, ReactionEasy, step.ReactionPolicy)

	rec.PreferredAgeText = ""
	step = evaluate(AgePolicy, rec)
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
	assert.True(t, IsQuestion(step.GuidanceText), "missing preference must become an open question")
}

func TestAgeUnknownClientYearAccepts(t *testing.T) {
	rec := female("미상", "나이")
	rec.PreferredAgeText = "85~90년생"
	step := evaluate(AgePolicy, rec)
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
}

func TestHeightFemaleBands(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"180cm 이상", "177~179cm"},
		{"178 이상", "175~177cm"},
		{"175cm 이상", "173~174cm"},
	}
	for _, tt := range tests {
		rec := female("95", "키")
		rec.PreferredHeightText = tt.text
		step := evaluate(HeightPolicy, rec)
		assert.Contains(t, step.GuidanceText, tt.want, tt.text)
		assert.Equal(t, ReactionConditional, step.ReactionPolicy, tt.text)
	}
}

func TestHeightMaleMaxLimitIsEasy(t *testing.T) {
	rec := male("90", "나이", "키")
	rec.PreferredHeightText = "165cm 이하"

	step := evaluate(HeightPolicy, rec)
	assert.Equal(t, ReactionEasy, step.ReactionPolicy)
	assert.NotContains(t, step.GuidanceText, "cm 정도")
	assert.NotContains(t, step.GuidanceText, "150대 후반")
	assert.True(t, step.FollowUpSuppressed)
}

func TestHeightMaleDownwardBand(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"160cm 이상", "158cm 등 150대 후반"},
		{"161 이상", "158cm 등 150대 후반"},
		{"165cm 이상", "163cm 정도"},
	}
	for _, tt := range tests {
		rec := male("90", "키")
		rec.PreferredHeightText = tt.text
		step := evaluate(HeightPolicy, rec)
		assert.Contains(t, step.GuidanceText, tt.want, tt.text)
		assert.Equal(t, ReactionConditional, step.ReactionPolicy, tt.text)
	}
}

func TestHeightMaleBelowThreshold(t *testing.T) {
	rec := male("90", "키")
	rec.PreferredHeightText = "155~158"
	assert.Equal(t, ReactionEasy, evaluate(HeightPolicy, rec).ReactionPolicy)

	rec.PreferredHeightText = "155 이상"
	assert.Equal(t, ReactionConditional, evaluate(HeightPolicy, rec).ReactionPolicy)
}

func TestHeightWithoutNumberAsksForFigure(t *testing.T) {
	rec := female("95", "키")
	rec.PreferredHeightText = "키 큰 사람"
	step := evaluate(HeightPolicy, rec)
	assert.Contains(t, step.GuidanceText, "구체적인 기준(cm)")
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
}

func TestHeightNotGuaranteedAlwaysWarns(t *testing.T) {
	texts := []string{"", "키 큰 사람", "165cm 이하", "155~158", "155 이상", "170 이상", "180cm 이상"}
	for _, rec := range []intake.ClientRecord{female("95", "나이"), male("90", "나이", "지역")} {
		for _, text := range texts {
			rec.PreferredHeightText = text
			step := evaluate(HeightPolicy, rec)
			assert.Equal(t, ReactionHeightWarning, step.ReactionPolicy, "%s %q", rec.Gender, text)
			assert.False(t, step.Guaranteed)
			assert.Len(t, step.Notices, 1)
		}
	}
}

func TestHeightPriorityWording(t *testing.T) {
	rec := female("95", "키")
	rec.PreferredHeightText = "175 이상"
	rec.PriorityWeightsText = "키1 나이2"
	assert.Contains(t, evaluate(HeightPolicy, rec).GuidanceText, "1순위로 두셨는데")
}

func TestLocationPolicy(t *testing.T) {
	rec := female("95", "지역(전남)")
	rec.Location = "전남 순천시"
	step := evaluate(LocationPolicy, rec)
	assert.Contains(t, step.GuidanceText, "거주지인 순천 기준")
	assert.True(t, step.FollowUpSuppressed)
	assert.NotEmpty(t, step.Preamble)

	rec.Location = "나주"
	assert.Contains(t, evaluate(LocationPolicy, rec).GuidanceText, "거주지인 해당 지역 기준")

	rec = female("95", "지역(광주)")
	assert.Contains(t, evaluate(LocationPolicy, rec).GuidanceText, "광주 근교")

	rec = female("95", "지역")
	rec.Location = "광주 북구"
	step = evaluate(LocationPolicy, rec)
	assert.Contains(t, step.GuidanceText, "광주 지역만 선호하시나요?")
	assert.False(t, step.FollowUpSuppressed)

	rec.Location = "여수"
	assert.Contains(t, evaluate(LocationPolicy, rec).GuidanceText, "크게 전남(여순광)과 광주로")

	rec = female("95", "나이")
	step = evaluate(LocationPolicy, rec)
	assert.False(t, step.Guaranteed)
	assert.True(t, step.FollowUpSuppressed)
	assert.Contains(t, step.GuidanceText, "필수조건은 아니셔서")
}

func TestSmokingPolicy(t *testing.T) {
	tests := []struct {
		name     string
		conds    []string
		text     string
		reaction ReactionPolicy
		notices  int
	}{
		{"guaranteed non smoker", []string{"흡연"}, "비흡연자 선호", ReactionEasy, 0},
		{"best effort non smoker", []string{"나이"}, "비흡연자 선호", ReactionConditional, 1},
		{"accepts smokers", nil, "흡연자 가능", ReactionEasy, 0},
		{"stated", nil, "흡연자", ReactionEasy, 0},
		{"missing", []string{"흡연"}, "", ReactionDefault, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := male("90", tt.conds...)
			rec.PreferredSmokingText = tt.text
			step := evaluate(SmokingPolicy, rec)
			assert.Equal(t, tt.reaction, step.ReactionPolicy)
			assert.Len(t, step.Notices, tt.notices)
		})
	}
}

func TestReligionPolicy(t *testing.T) {
	_, ok := ReligionPolicy(female("95", "나이"), preference.Preferences{})
	assert.False(t, ok)

	step, ok := ReligionPolicy(female("95", "종교"), preference.Preferences{})
	require.True(t, ok)
	assert.Contains(t, step.GuidanceText, "상대방도 무교")

	rec := female("95", "종교(무교만)")
	rec.Religion = "기독교"
	step, _ = ReligionPolicy(rec, preference.Preferences{})
	assert.Contains(t, step.GuidanceText, "'무교만'")

	rec.SelectedConditions = []string{"종교일치"}
	step, _ = ReligionPolicy(rec, preference.Preferences{})
	assert.Contains(t, step.GuidanceText, "'종교 일치'")

	rec.SelectedConditions = []string{"종교"}
	step, _ = ReligionPolicy(rec, preference.Preferences{})
	assert.Contains(t, step.GuidanceText, "무교인 분까지는 괜찮으실까요?")
	assert.False(t, step.FollowUpSuppressed)
}

func TestEducationPolicy(t *testing.T) {
	rec := female("95")
	rec.PreferredEducationText = "4년제 대졸 이상"
	rec.Location = "광양"
	step := evaluate(EducationPolicy, rec)
	assert.Contains(t, step.GuidanceText, "전문대졸은 괜찮으실까요?")
	assert.Contains(t, step.GuidanceText, "지역특성상")
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
	assert.Len(t, step.Notices, 1)

	rec = male("90", "학력")
	rec.PreferredEducationText = "대졸 이상"
	step = evaluate(EducationPolicy, rec)
	assert.Contains(t, step.GuidanceText, "전문대졸은 어려우실까요?")
	assert.NotContains(t, step.GuidanceText, "지역특성상")

	rec.PreferredEducationText = "전문대졸 이상"
	step = evaluate(EducationPolicy, rec)
	assert.Contains(t, step.GuidanceText, "필수로 학력조건")
	assert.Equal(t, ReactionEasy, step.ReactionPolicy)

	rec.PreferredEducationText = ""
	step = evaluate(EducationPolicy, rec)
	assert.True(t, IsQuestion(step.GuidanceText))
	assert.Equal(t, ReactionDefault, step.ReactionPolicy)
}

func TestIncomePolicy(t *testing.T) {
	tests := []struct {
		name     string
		rec      intake.ClientRecord
		text     string
		contains string
		reaction ReactionPolicy
	}{
		{"male guaranteed floor", male("90", "연봉"), "5천 이상", "3천만 원 이상", ReactionConditional},
		{"female counter offer", female("95", "연봉"), "8천 이상", "6천만 원", ReactionConditional},
		{"hundred million counter offer", female("95"), "1억 이상", "8천만 원", ReactionConditional},
		{"low amount easy", female("95"), "3천 이상", "설문지 내용 그대로", ReactionEasy},
		{"mid amount default", female("95"), "5천 이상", "설문지 내용 그대로", ReactionDefault},
		{"unrecognized unit", female("95"), "5000만원", "설문지 내용 그대로", ReactionEasy},
		{"missing", female("95", "연봉"), "", "어느 정도 기준", ReactionDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			rec.PreferredIncomeText = tt.text
			step := evaluate(IncomePolicy, rec)
			assert.Contains(t, step.GuidanceText, tt.contains)
			assert.Equal(t, tt.reaction, step.ReactionPolicy)
		})
	}
}

func TestFormatIncome(t *testing.T) {
	assert.Equal(t, "5천", formatIncome(5000))
	assert.Equal(t, "1억", formatIncome(10000))
	assert.Equal(t, "1억 2천", formatIncome(12000))
}

func TestJobPolicy(t *testing.T) {
	step := evaluate(JobPolicy, male("90"))
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
	assert.Len(t, step.Notices, 1)

	step = evaluate(JobPolicy, male("90", "직업(자영업 가능)"))
	assert.Equal(t, ReactionEasy, step.ReactionPolicy)
	assert.True(t, step.Guaranteed)

	step = evaluate(JobPolicy, male("90", "직업(직장인)"))
	assert.Equal(t, ReactionConditional, step.ReactionPolicy)
	assert.Contains(t, step.GuidanceText, "'직장인'")
}
