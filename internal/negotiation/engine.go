package negotiation

import (
	"fmt"
	"strings"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/preference"
)

// Policies lists the attribute policies in consultation order.
var Policies = []Policy{
	AgePolicy,
	HeightPolicy,
	LocationPolicy,
	SmokingPolicy,
	ReligionPolicy,
	EducationPolicy,
	IncomePolicy,
	JobPolicy,
}

// Evaluate runs every applicable policy against one record snapshot. The
// closing step is not included.
func Evaluate(rec intake.ClientRecord) []Step {
	prefs := preference.Normalize(rec)
	steps := make([]Step, 0, len(Policies))
	for _, policy := range Policies {
		if step, ok := policy(rec, prefs); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

// ConditionSummary joins the guaranteed conditions for display, or "없음".
func ConditionSummary(rec intake.ClientRecord) string {
	if len(rec.SelectedConditions) == 0 {
		return "없음"
	}
	return strings.Join(rec.SelectedConditions, ", ")
}

// Closing restates the guaranteed conditions and carries the completion phrase.
func Closing(rec intake.ClientRecord) Step {
	guidance := fmt.Sprintf("모든 상담이 완료되었습니다! %s님께서 선택하신 [%s] 조건은 확실히 보장하여 매칭을 진행해 드릴 예정입니다. %s. 감사합니다!",
		rec.Name, ConditionSummary(rec), CompletionPhrase)
	return newStep(AttributeClosing, "마무리", "마무리", false, guidance, ReactionDefault)
}
