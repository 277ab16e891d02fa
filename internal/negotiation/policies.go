package negotiation

import (
	"fmt"
	"strings"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/preference"
)

// Policy derives one attribute's step. The bool is false when the attribute
// does not apply to the record.
type Policy func(rec intake.ClientRecord, p preference.Preferences) (Step, bool)

const (
	femaleWidenYears = 5
	maleYoungerYears = 1

	tallHeightThreshold  = 178
	maleBandThreshold    = 160
	maleBandBoundaryLow  = 161
	maleBandDrop         = 2
	incomeRequiredFloor  = 5000
	incomeCounterOffer   = 7000
	incomeCounterMargin  = 2000
	incomeEasyCeiling    = 3000
	incomeAmountHundredM = 10000
)

func yearRange(start, end int) string {
	a, b := preference.YearLabel(start), preference.YearLabel(end)
	if a == b {
		return a + "년생"
	}
	return a + "~" + b + "년생"
}

// AgePolicy widens the partner age window. Women are offered partners up to
// five years older, men partners one year younger than themselves.
func AgePolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("나이")
	text := rec.PreferredAgeText
	accept := fmt.Sprintf("나이는 %s으로 적어주셨는데, 설문지 내용 그대로 우선 반영하겠습니다.", text)

	var (
		guidance string
		reaction = ReactionDefault
	)
	switch {
	case p.AgeFlexible:
		guidance = fmt.Sprintf("나이는 특별히 상관없다고(%s) 해주셨는데, 폭넓게 매칭해 드리겠습니다!", text)
		reaction = ReactionEasy
	case text == "" && guaranteed:
		guidance = "나이 조건을 선택해주셨는데, 선호하시는 구체적인 연령대가 있으실까요?"
	case text == "":
		guidance = "선호하시는 연령대를 따로 적어주지 않으셨는데, 생각하시는 연령대가 있으실까요?"
	case p.BindingYear == 0 || p.ClientBirthYear == 0:
		guidance = accept
	case rec.Gender.IsFemale():
		older := p.ClientBirthYear - femaleWidenYears
		if p.BindingYear == older {
			guidance = accept
			break
		}
		guidance = fmt.Sprintf("나이는 %s으로 적어주셨는데, %s(5살 연상)까지는 어떠실까요?",
			text, yearRange(older, max(older, p.BindingYear-1)))
		reaction = ReactionConditional
	default:
		younger := p.ClientBirthYear + maleYoungerYears
		switch {
		case p.BindingYear-p.ClientBirthYear >= 2:
			guidance = fmt.Sprintf("나이는 %s으로 적어주셨는데, %s(1살 연하) 분들까지는 어떠실까요?",
				text, yearRange(younger, younger))
			reaction = ReactionConditional
		case p.BindingYear > p.ClientBirthYear:
			guidance = accept + " 혹시 성향이 잘 맞는다면 연상도 가능하실까요?"
			reaction = ReactionConditional
		default:
			guidance = accept
		}
	}

	step := newStep(AttributeAge, "나이", "나이 조율", guaranteed, guidance, reaction)
	step.ClientValue = rec.BirthYearLabel() + "년생"
	if !guaranteed {
		step.Notices = []string{"네 필수조건은 아니셔서 선호하시는 연령대로 가점 매칭되지만, 위아래로 나이 차이가 나는 분이 나올 수도 있는 점 참고부탁드려요!"}
	}
	return step, true
}

// HeightPolicy proposes a small downward band. When height is not a
// guaranteed condition the reaction always carries the best-effort warning.
func HeightPolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("키")
	text := rec.PreferredHeightText
	stated := "적어주셨는데"
	if p.HeightPriority {
		stated = "1순위로 두셨는데"
	}

	var (
		guidance string
		reaction = ReactionDefault
	)
	switch {
	case text == "" && guaranteed:
		guidance = "키 조건을 선택해주셨는데, 구체적으로 선호하시는 키 기준이 있으실까요?"
	case text == "":
		guidance = "키는 따로 적어주지 않으셨는데, 구체적으로 선호하시는 키 기준이 있으실까요?"
	case p.HeightValue == 0:
		guidance = fmt.Sprintf("키 관련해서 %s으로 적어주셨는데, 구체적인 기준(cm)이 있으실까요?", text)
	case rec.Gender.IsFemale():
		low := p.HeightValue - 2
		if p.HeightValue >= tallHeightThreshold {
			low = p.HeightValue - 3
		}
		guidance = fmt.Sprintf("키 관련해서 %s으로 %s, 다른 조건이 괜찮다면 %d~%dcm 정도는 괜찮으실까요?",
			text, stated, low, p.HeightValue-1)
		reaction = ReactionConditional
	case p.HeightMaxLimit:
		guidance = fmt.Sprintf("키는 %s으로 %s, 원하시는 아담한 스타일이나 해당 키 범위의 분들로 잘 찾아보겠습니다!", text, stated)
		reaction = ReactionEasy
	case p.HeightValue >= maleBandThreshold:
		band := "158cm 등 150대 후반"
		if p.HeightValue > maleBandBoundaryLow {
			band = fmt.Sprintf("%dcm 정도", p.HeightValue-maleBandDrop)
		}
		guidance = fmt.Sprintf("키는 %s으로 %s, 혹시 비율이 좋다면 %s 분들도 괜찮으실까요? 조율이 가능한지 여쭤봅니다!", text, stated, band)
		reaction = ReactionConditional
	case p.HeightRange:
		guidance = fmt.Sprintf("키는 %s으로 %s, 말씀하신 범위 안에서 잘 찾아보겠습니다!", text, stated)
		reaction = ReactionEasy
	default:
		guidance = fmt.Sprintf("키 관련해서 %s으로 %s, 다른 조건이 정말 괜찮다면 조금 유연하게 봐주실 수 있을까요?", text, stated)
		reaction = ReactionConditional
	}

	if !guaranteed {
		reaction = ReactionHeightWarning
	}
	step := newStep(AttributeHeight, "키", "키 조율", guaranteed, guidance, reaction)
	step.ClientValue = rec.Height
	step.Preamble = "다음으로 키 조건 확인해 드릴게요. 키 조건을 너무 높게 잡으면 외모나 연봉 등 다른 조건이 아쉬운 분이 매칭될 수도 있어서요!"
	if !guaranteed {
		step.Notices = []string{"네 필수조건은 아니셔서 희망하시는 키로 가점 매칭되지만, 약간의 차이가 있는 분이 나올 수도 있는 점 참고부탁드려요!"}
	}
	return step, true
}

// LocationPolicy discloses the scope of the region filter. It only asks a
// question when region is guaranteed without a cluster.
func LocationPolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("지역")

	var guidance string
	switch {
	case !guaranteed:
		guidance = "지역이 필수조건은 아니셔서 선호하시는 지역(거주지)으로 가점 매칭되지만, 인근이나 타 지역 분이 나올 수도 있는 점 참고부탁드려요!"
	case rec.HasOption(preference.ProvinceCluster):
		city := p.City
		if city == "" {
			city = "해당 지역"
		}
		guidance = fmt.Sprintf("지역 조건으로 '전남'을 선택해주셨네요! %s님 거주지인 %s 기준으로 가점을 드리지만, 필터 특성상 전남 전체 지역이 소개 범위에 포함되는 점 참고 부탁드립니다. (광주 필터와는 분리되어 진행됩니다!)", rec.Name, city)
	case rec.HasOption(preference.MetroCluster):
		guidance = "지역 조건으로 '광주'를 선택해주셨네요! 광주와 광주 근교 거주자분들로 매칭 도와드리겠습니다."
	case p.InMetro:
		guidance = "거주지가 광주이신데, 광주 지역만 선호하시나요? 아니면 전남(여순광)도 괜찮으신가요?"
	default:
		guidance = "지역 필터는 크게 전남(여순광)과 광주로 나뉩니다. 선호하시는 지역을 말씀해주시면 그쪽에 가점을 반영해드릴게요."
	}

	step := newStep(AttributeLocation, "지역", "지역 확인", guaranteed, guidance, ReactionEasy)
	step.Preamble = "다음으로 지역 확인 도와드릴게요."
	return step, true
}

// SmokingPolicy offers smokers only when non-smoking is not guaranteed.
func SmokingPolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("흡연")
	text := rec.PreferredSmokingText

	var (
		guidance string
		reaction = ReactionDefault
		notice   string
	)
	switch p.Smoking {
	case preference.SmokingNonSmokerOnly:
		if guaranteed {
			guidance = "비흡연 선호라고 해주셔서, 비흡연자로 소개드리도록 하겠습니다!"
			reaction = ReactionEasy
			break
		}
		guidance = "비흡연 선호라고 해주셨는데, 다른 조건이 괜찮다면 흡연자라도 괜찮으실까요?"
		reaction = ReactionConditional
		notice = "네 필수조건은 아니셔서 비흡연자로 가점 매칭되지만 흡연자가 제공될수도 있는 점 참고부탁드려요!"
	case preference.SmokingAcceptsSmokers:
		guidance = fmt.Sprintf("흡연 여부는 %s으로 적어주셔서, 흡연하시는 분도 폭넓게 매칭해 드리겠습니다!", text)
		reaction = ReactionEasy
	case preference.SmokingStated:
		guidance = fmt.Sprintf("흡연 여부는 설문에 적어주신 대로(%s) 반영하겠습니다!", text)
		reaction = ReactionEasy
	default:
		if guaranteed {
			guidance = "흡연 조건을 선택해주셨는데, 비흡연자만 원하시나요?"
		} else {
			guidance = "흡연 기준은 따로 적어주지 않으셨는데, 비흡연자만 원하시나요?"
		}
	}

	step := newStep(AttributeSmoking, "흡연", "흡연 확인", guaranteed, guidance, reaction)
	if notice != "" {
		step.Notices = []string{notice}
	}
	return step, true
}

// ReligionPolicy applies only when religion is a guaranteed condition.
func ReligionPolicy(rec intake.ClientRecord, _ preference.Preferences) (Step, bool) {
	if !rec.IsSelected("종교") {
		return Step{}, false
	}

	var guidance string
	switch {
	case rec.Religion == intake.NonReligious:
		guidance = "본인 종교가 무교이신데요, 상대방도 무교이신 분으로 소개드리겠습니다!"
	case rec.HasOption("무교만"):
		guidance = fmt.Sprintf("본인 종교가 %s이신데요, 종교 조건으로 '무교만'을 선택해주셨네요! 상대방이 무교인 분들 위주로 우선 매칭해드리겠습니다.", rec.Religion)
	case rec.HasOption("종교일치"):
		guidance = fmt.Sprintf("본인 종교가 %s이신데요, 종교 조건으로 '종교 일치'를 선택해주셨네요! 회원님과 같은 종교를 가지신 분들 위주로 매칭 진행하겠습니다.", rec.Religion)
	default:
		guidance = fmt.Sprintf("본인 종교가 %s이신데요, 혹시 상대방도 꼭 같은 종교여야 할까요? 아니면 무교인 분까지는 괜찮으실까요? (특정 종교만 고집하면 매칭이 어려울 수 있어서, 무교까지 넓혀주시면 훨씬 좋은 분 소개가 가능합니다!)", rec.Religion)
	}

	step := newStep(AttributeReligion, "종교", "종교 확인", true, guidance, ReactionDefault)
	step.ClientValue = rec.Religion
	return step, true
}

// EducationPolicy asks four-year-degree seekers about associate degrees.
func EducationPolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("학력")
	text := rec.PreferredEducationText

	var (
		guidance string
		reaction = ReactionDefault
	)
	switch {
	case p.HighEducation:
		if rec.Gender.IsFemale() {
			guidance = "대졸 이상으로 하셨는데, 전문대졸은 괜찮으실까요?"
		} else {
			guidance = "대졸 이상으로 하셨는데, 전문대졸은 어려우실까요?"
		}
		if p.InIndustrialBelt {
			guidance += " 지역특성상 대기업분들이 전문대졸이나 고졸이 많으셔서요!"
		}
		reaction = ReactionConditional
	case text == "" && guaranteed:
		guidance = "학력 조건을 선택해주셨는데, 선호하시는 최소 학력 기준이 있으실까요?"
	case text == "":
		guidance = "학력은 따로 적어주지 않으셨는데, 선호하시는 학력 기준이 있으실까요?"
	case guaranteed:
		guidance = fmt.Sprintf("필수로 학력조건 선택해주셨는데, %s로 반영하여 진행하겠습니다!", text)
		reaction = ReactionEasy
	default:
		guidance = fmt.Sprintf("학력은 %s로 적어주셨는데, 이대로 진행하겠습니다!", text)
		reaction = ReactionEasy
	}

	step := newStep(AttributeEducation, "학력", "학력 조율", guaranteed, guidance, reaction)
	if p.HighEducation && !guaranteed {
		step.Notices = []string{"네 필수조건은 아니셔서 대졸로 가점 매칭되지만 다른학력이 나올 수도 있는 점 참고부탁드려요!"}
	}
	return step, true
}

// IncomePolicy counter-offers on high income floors.
func IncomePolicy(rec intake.ClientRecord, p preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("연봉")
	text := rec.PreferredIncomeText
	amount := p.IncomeAmount

	var (
		guidance string
		reaction = ReactionDefault
	)
	switch {
	case text == "" && guaranteed:
		guidance = "연봉(경제력) 조건을 선택해주셨는데, 어느 정도 기준을 원하시나요?"
	case text == "":
		guidance = "연봉(경제력) 기준은 따로 적어주지 않으셨는데, 어느 정도 기준을 원하시나요?"
	case !rec.Gender.IsFemale() && guaranteed && amount >= incomeRequiredFloor:
		guidance = fmt.Sprintf("연봉 조건을 필수로 선택해주셨는데요, %s으로 원하셨지만 혹시 3천만 원 이상인 분들도 괜찮으실까요?", text)
		reaction = ReactionConditional
	case amount >= incomeCounterOffer:
		guidance = fmt.Sprintf("연봉 %s으로 하셨는데, 혹시 다른 조건이 정말 좋다면 %s만 원 정도도 괜찮으실까요?",
			text, formatIncome(amount-incomeCounterMargin))
		reaction = ReactionConditional
	case strings.HasPrefix(text, "7천") || strings.Contains(text, "1억"):
		guidance = fmt.Sprintf("연봉 %s으로 하셨는데, 이 기준이 절대적인가요? 혹시 다른 조건이 정말 좋다면 조금 조절 가능하실까요?", text)
		reaction = ReactionConditional
	default:
		guidance = fmt.Sprintf("연봉 %s으로 하셨는데, 설문지 내용 그대로 우선 반영하도록 하겠습니다.", text)
		if amount <= incomeEasyCeiling {
			reaction = ReactionEasy
		}
	}

	step := newStep(AttributeIncome, "연봉", "연봉 조율", guaranteed, guidance, reaction)
	if !guaranteed && text != "" {
		step.Notices = []string{"네 필수조건은 아니셔서 희망하시는 연봉대로 가점 매칭되지만, 금액대가 다른 분이 나올 수도 있는 점 참고부탁드려요!"}
	}
	return step, true
}

// formatIncome renders an amount in 만원 units as "1억 2천" or "5천".
func formatIncome(amount int) string {
	if amount >= incomeAmountHundredM {
		eok, rest := amount/incomeAmountHundredM, amount%incomeAmountHundredM
		if rest > 0 {
			return fmt.Sprintf("%d억 %d천", eok, rest/1000)
		}
		return fmt.Sprintf("%d억", eok)
	}
	return fmt.Sprintf("%d천", amount/1000)
}

// JobPolicy asks whether self-employed partners are acceptable.
func JobPolicy(rec intake.ClientRecord, _ preference.Preferences) (Step, bool) {
	guaranteed := rec.IsSelected("직업")

	guidance := "직업은 직장인을 선호하시는걸까요? 아니면 자영업도 가능하실까요?"
	reaction := ReactionConditional
	switch {
	case rec.HasOption("자영업") || rec.HasOption("사업"):
		guidance = "직업 조건으로 자영업/사업가 분들도 괜찮다고 해주셔서, 폭넓게 소개해드리겠습니다!"
		reaction = ReactionEasy
	case rec.HasOption("직장인"):
		guidance = "직업 조건으로 '직장인'을 선택해주셨는데, 혹시 안정적인 자영업(사업가) 분들도 괜찮으실까요?"
	}

	step := newStep(AttributeJob, "직업", "직업 질문", guaranteed, guidance, reaction)
	if !guaranteed {
		step.Notices = []string{"네 필수조건은 아니셔서 직장인으로 가점 매칭되지만 자영업이 나올 수도 있는 점 참고부탁드려요!"}
	}
	return step, true
}
