package preference

import (
	"strings"

	"github.com/eumlog/consultation-engine/internal/intake"
)

// SmokingStance classifies the smoking preference answer.
type SmokingStance int

const (
	SmokingUnstated SmokingStance = iota
	SmokingNonSmokerOnly
	SmokingAcceptsSmokers
	SmokingStated
)

func (s SmokingStance) String() string {
	switch s {
	case SmokingNonSmokerOnly:
		return "non_smoker_only"
	case SmokingAcceptsSmokers:
		return "accepts_smokers"
	case SmokingStated:
		return "stated"
	default:
		return "unstated"
	}
}

// ClassifySmoking maps smoking preference text onto a stance.
func ClassifySmoking(text string) SmokingStance {
	switch {
	case text == "":
		return SmokingUnstated
	case strings.Contains(text, "비흡연"):
		return SmokingNonSmokerOnly
	case strings.Contains(text, "가능"), strings.Contains(text, "괜찮"),
		strings.Contains(text, "상관"), IsFlexible(text):
		return SmokingAcceptsSmokers
	default:
		return SmokingStated
	}
}

// Preferences is the decision-relevant view of one record. Zero values mean
// "unknown" for years and amounts.
type Preferences struct {
	ClientBirthYear int
	AgeFlexible     bool
	BindingYear     int

	HeightValue    int
	HeightMaxLimit bool
	HeightRange    bool
	HeightPriority bool

	Smoking       SmokingStance
	HighEducation bool
	IncomeAmount  int

	City             string
	InMetro          bool
	InIndustrialBelt bool
}

// Normalize computes every derived preference for a record once.
func Normalize(rec intake.ClientRecord) Preferences {
	p := Preferences{
		AgeFlexible:      IsFlexible(rec.PreferredAgeText),
		HeightValue:      HeightValue(rec.PreferredHeightText),
		HeightMaxLimit:   IsMaxLimit(rec.PreferredHeightText),
		HeightRange:      HasRange(rec.PreferredHeightText),
		HeightPriority:   IsHeightPriority(rec.PriorityWeightsText),
		Smoking:          ClassifySmoking(rec.PreferredSmokingText),
		HighEducation:    IsHighEducation(rec.PreferredEducationText),
		IncomeAmount:     IncomeAmount(rec.PreferredIncomeText),
		City:             ResidenceCity(rec.Location),
		InMetro:          InMetro(rec.Location),
		InIndustrialBelt: InIndustrialBelt(rec.Location),
	}
	if year, ok := ResolveBirthYear(rec.BirthYearLabel()); ok {
		p.ClientBirthYear = year
	}
	if year, ok := BindingBirthYear(rec.PreferredAgeText); ok {
		p.BindingYear = year
	}
	return p
}
