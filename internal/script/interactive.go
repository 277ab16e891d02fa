package script

import (
	"fmt"
	"strings"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/negotiation"
)

// TurnReminder is prepended to every client message sent to the generation
// service. It is not stored in the transcript.
const TurnReminder = "[규칙: 키/지역 질문은 두 문단(\\n\\n)으로 분리, 사용자가 조건(연봉, 나이, 학력 등)을 완화하거나 변경하면 확실히 수용하고 반영 멘트 하기] "

// Directive is one step as exposed to the generation service.
type Directive struct {
	AttributeKey       string                     `json:"attributeKey"`
	Guaranteed         bool                       `json:"guaranteed"`
	GuidanceText       string                     `json:"guidanceText"`
	FollowUpSuppressed bool                       `json:"followUpSuppressed"`
	ReactionPolicy     negotiation.ReactionPolicy `json:"reactionPolicy"`
}

// Directives lists every step, closing included, in order.
func Directives(s *ConsultationScript) []Directive {
	all := s.All()
	out := make([]Directive, 0, len(all))
	for _, step := range all {
		out = append(out, Directive{
			AttributeKey:       step.AttributeKey,
			Guaranteed:         step.Guaranteed,
			GuidanceText:       step.GuidanceText,
			FollowUpSuppressed: step.FollowUpSuppressed,
			ReactionPolicy:     step.ReactionPolicy,
		})
	}
	return out
}

// PlanName is the Korean plan name for a tier.
func PlanName(t intake.Tier) string {
	if t == intake.TierPremium {
		return "프리미엄"
	}
	return "베이직"
}

// IntroMessages returns the three greeting bubbles that open a session.
func IntroMessages(rec intake.ClientRecord) []string {
	return []string{
		fmt.Sprintf("안녕하세요 %s님! 이음로그 매니저입니다.\n보내주신 프로필과 이상형 조건 꼼꼼하게 확인했습니다.", rec.Name),
		fmt.Sprintf("현재 [%s] 조건을 확실히 보장해드리는 %s 플랜으로 신청해 주셨네요! 😊", negotiation.ConditionSummary(rec), PlanName(rec.Tier())),
		"매칭 시작 전, 몇 가지 세부 사항을 조율하고자 합니다. 잠시 대화 가능하실까요?",
	}
}

func stepGuide(step negotiation.Step) string {
	var b strings.Builder
	switch {
	case step.AttributeKey == negotiation.AttributeClosing:
		fmt.Fprintf(&b, "질문: %q\n", step.GuidanceText)
		b.WriteString("       - 중요: 상담 과정에서 사용자가 조건을 변경하거나 완화한 내용이 있다면, 마지막 메시지 끝에 아래 [출력 형식]의 json 블록으로 정리해서 출력하세요. 변경이 없으면 summary에 \"" + negotiation.NoChangesSummary + "\"라고 적으세요.")
		return b.String()
	case step.Preamble != "":
		fmt.Fprintf(&b, "- 말풍선 1: %q\n", step.Preamble)
		if step.FollowUpSuppressed {
			fmt.Fprintf(&b, "       - 말풍선 2: %q 라고 안내만 하고(질문 금지) 답변을 기다리세요.\n", step.GuidanceText)
		} else {
			fmt.Fprintf(&b, "       - 말풍선 2: %q\n", step.GuidanceText)
		}
	default:
		if step.FollowUpSuppressed {
			fmt.Fprintf(&b, "안내: %q (질문을 덧붙이지 마세요)\n", step.GuidanceText)
		} else {
			fmt.Fprintf(&b, "질문: %q\n", step.GuidanceText)
		}
	}
	b.WriteString("       - 답변 후: " + step.ReactionPolicy.Instruction())
	return b.String()
}

// Instruction renders the system instruction for an interactive session.
func Instruction(s *ConsultationScript) string {
	rec := s.record
	conds := negotiation.ConditionSummary(rec)

	steps := s.All()
	guides := make([]string, 0, len(steps))
	for i, step := range steps {
		title := step.Title
		if step.Preamble != "" {
			title += " (말풍선 2개로 분리)"
		}
		guides = append(guides, fmt.Sprintf("%d. %s:\n       %s", i+1, title, stepGuide(step)))
	}

	contract := make([]string, 0, len(negotiation.FieldContracts))
	for _, c := range negotiation.FieldContracts {
		contract = append(contract, fmt.Sprintf("    - %s: %s", c.Key, c.Templates))
	}

	var b strings.Builder
	b.WriteString("당신은 이음로그의 상담 매니저입니다. 아래 규칙을 절대적으로 지키며 상담을 진행하세요.\n\n")
	b.WriteString("[핵심 정보]\n")
	fmt.Fprintf(&b, "- 회원이 선택한 보장 조건 목록: [%s]\n", conds)
	b.WriteString("- 보장 조건에 포함된 항목은 확실하게 매칭해 주어야 하며, 포함되지 않은 항목은 가점 매칭(비보장)입니다.\n")
	if rec.PreferredEducationText != "" {
		fmt.Fprintf(&b, "- 선호 학력: %s\n", rec.PreferredEducationText)
	}
	b.WriteString("\n[핵심 규칙 1: 답변에 대한 반응]\n")
	b.WriteString("사용자의 답변을 듣고 나서, 현재 다루고 있는 주제가 '보장 조건'인지 확인 후 아래와 같이 반응하세요.\n\n")
	b.WriteString("CASE A: 조건 조율/변경 (사용자가 조건을 완화하거나 변경할 때)\n")
	b.WriteString("- 반응: \"네, 확인했습니다! 말씀하신 대로 [변경된 내용]으로 기준을 수정하여 매칭 진행해 드리겠습니다.\"\n\n")
	fmt.Fprintf(&b, "CASE B: 현재 주제가 '보장 조건'([%s])에 포함되는 경우\n", conds)
	b.WriteString("- 반응: \"네, 말씀하신 [주제] 조건은 확실하게 보장해서 매칭해 드릴게요!\" 또는 \"확인했습니다. 이 부분은 꼭 맞춰서 진행하겠습니다.\"\n\n")
	b.WriteString("CASE C: 현재 주제가 '보장 조건'에 포함되지 않는 경우 (비보장)\n")
	b.WriteString("- 반응: 아래 멘트 중 하나를 자연스럽게 골라서 사용하세요.\n")
	b.WriteString("  옵션 1: \"네, 이 부분은 필수 보장 조건은 아니어서 최대한 맞춰보겠지만, 상황에 따라 조금 다른 분이 소개될 수도 있는 점 양해 부탁드려요!\"\n")
	b.WriteString("  옵션 2: \"넵! 선호하시는 대로 가점은 드리지만, 보장 조건은 아니라서 100% 일치하지 않을 수도 있다는 점 참고해 주세요.\"\n")
	b.WriteString("  옵션 3: \"알겠습니다. 최대한 반영해 보겠지만, 필수 조건 외에는 매칭 상황에 따라 조금 유연하게 진행될 수 있어요!\"\n\n")
	b.WriteString("[핵심 규칙 2: 말풍선 분리]\n")
	b.WriteString("- 키 조율과 지역 확인 단계에서는 반드시 줄바꿈 두 번(\\n\\n)을 사용하여 말풍선을 나누세요.\n\n")
	b.WriteString("[상담 시퀀스 - 순서 엄수]\n")
	b.WriteString("각 단계별로 지정된 가이드 문구를 사용하여 질문하되, 문맥에 맞게 자연스럽게 이어가세요.\n\n")
	b.WriteString(strings.Join(guides, "\n\n"))
	b.WriteString("\n\n[출력 형식]\n")
	b.WriteString("- 상담 중에는 평범한 대화 문장만 출력하세요.\n")
	b.WriteString("- 마무리 메시지의 맨 끝에만 ```json 으로 시작하는 코드 블록 하나를 붙이세요. 형식:\n")
	b.WriteString("  {\"updates\": {\"필드키\": \"값\"}, \"summary\": \"변경 사항 요약\", \"memo\": \"기타 메모\"}\n")
	b.WriteString("- updates에는 아래 필드키만 사용하고, 값은 반드시 나열된 형식 중 하나로 적으세요. 변경되지 않은 항목은 넣지 마세요.\n")
	b.WriteString(strings.Join(contract, "\n"))
	b.WriteString("\n\n[주의 사항]\n")
	b.WriteString("- 마크다운(**) 절대 사용 금지.\n")
	b.WriteString("- 질문 전에는 절대 '비보장 고지'를 하지 마세요. 반드시 답변 후에 반응하세요.\n")
	b.WriteString("- 사용자가 조건을 완화해주면 \"감사합니다\" 등의 표현과 함께 긍정적으로 수정 사항을 반영하세요.\n")
	return b.String()
}
