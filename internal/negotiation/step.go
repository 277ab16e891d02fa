// Package negotiation derives one guidance step per negotiable attribute from
// a client record. Evaluation is pure: the same record always yields the same
// steps.
package negotiation

import "strings"

// ReactionPolicy tells the generation service how to react once the client
// answers a step.
type ReactionPolicy string

const (
	ReactionEasy          ReactionPolicy = "EASY"
	ReactionConditional   ReactionPolicy = "CONDITIONAL"
	ReactionDefault       ReactionPolicy = "DEFAULT"
	ReactionHeightWarning ReactionPolicy = "HEIGHT_WARNING"
)

var reactionInstructions = map[ReactionPolicy]string{
	ReactionDefault:       "(보장/비보장 여부에 따른 적절한 반응 출력)",
	ReactionEasy:          "(조건이 까다롭지 않으므로, '비보장 안내' 멘트를 절대 하지 말고 '네 확인했습니다' 정도로 깔끔하게 답변)",
	ReactionConditional:   "(사용자가 제안을 수락하거나 유연한 태도(괜찮다 등)를 보이면 '비보장 안내' 멘트를 절대 하지 말고 '네, 그럼 해당 기준으로 넓혀서 매칭해드리겠습니다'라고 변경 사항을 확정하세요. 반면 까다로운 조건을 고집하면 보장/비보장 여부에 따라 반응하세요.)",
	ReactionHeightWarning: "(키는 보장 조건이 아니므로, 사용자가 제안을 수락하더라도 답변 후에는 반드시 희망하시는 키와 약간 차이가 있는 분이 나올 수 있다는 '비보장 안내'를 덧붙이세요.)",
}

// Instruction returns the reaction guidance handed to the generation service.
func (r ReactionPolicy) Instruction() string {
	if s, ok := reactionInstructions[r]; ok {
		return s
	}
	return reactionInstructions[ReactionDefault]
}

// Attribute keys in consultation order.
const (
	AttributeAge       = "age"
	AttributeHeight    = "height"
	AttributeLocation  = "location"
	AttributeSmoking   = "smoking"
	AttributeReligion  = "religion"
	AttributeEducation = "education"
	AttributeIncome    = "income"
	AttributeJob       = "job"
	AttributeClosing   = "closing"
)

// CompletionPhrase appears in the closing step and marks a finished session.
const CompletionPhrase = "고생하셨습니다"

// Step is one attribute's guidance unit.
type Step struct {
	AttributeKey string `json:"attributeKey"`
	// Label is the condition keyword as it appears in selected conditions.
	Label string `json:"label"`
	// Title names the step in the interactive sequence.
	Title string `json:"title"`
	// ClientValue is the client's own value shown next to the label.
	ClientValue        string         `json:"clientValue,omitempty"`
	Guaranteed         bool           `json:"guaranteed"`
	GuidanceText       string         `json:"guidanceText"`
	FollowUpSuppressed bool           `json:"followUpSuppressed"`
	ReactionPolicy     ReactionPolicy `json:"reactionPolicy"`
	// Preamble is a lead-in bubble sent before the guidance.
	Preamble string `json:"preamble,omitempty"`
	// Notices are best-effort disclosures used by the printable document.
	Notices []string `json:"notices,omitempty"`
}

// IsQuestion reports whether guidance asks something of the client.
func IsQuestion(text string) bool {
	return strings.Contains(text, "?") || strings.Contains(text, "까요")
}

func newStep(key, label, title string, guaranteed bool, guidance string, reaction ReactionPolicy) Step {
	return Step{
		AttributeKey:       key,
		Label:              label,
		Title:              title,
		Guaranteed:         guaranteed,
		GuidanceText:       guidance,
		FollowUpSuppressed: !IsQuestion(guidance),
		ReactionPolicy:     reaction,
	}
}
