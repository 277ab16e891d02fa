package script

import (
	"fmt"
	"strings"

	"github.com/eumlog/consultation-engine/internal/config"
	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/negotiation"
)

const divider = "--------------------------------"

// Options parameterize the closing payment block.
type Options struct {
	Pricing        config.Pricing
	PaymentAccount string
	ExemptCohorts  []string
	PromoMarker    string
}

// DefaultOptions uses the default fee table and cohort names.
func DefaultOptions() Options {
	return Options{
		Pricing:       config.DefaultPricing(),
		ExemptCohorts: []string{"돈냄"},
		PromoMarker:   "이벤트",
	}
}

// OptionsFromConfig builds rendering options from application config.
func OptionsFromConfig(cfg *config.Config, pricing config.Pricing) Options {
	return Options{
		Pricing:        pricing,
		PaymentAccount: cfg.PaymentAccount,
		ExemptCohorts:  cfg.ExemptCohorts,
		PromoMarker:    cfg.PromoCohortMarker,
	}
}

// Renderer turns scripts into the printable consultation document.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer for the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts}
}

// IsPromotional reports whether the cohort gets promotional pricing.
func (r *Renderer) IsPromotional(group string) bool {
	return r.opts.PromoMarker != "" && strings.Contains(strings.TrimSpace(group), r.opts.PromoMarker)
}

// IsExempt reports whether the cohort skips the payment block.
func (r *Renderer) IsExempt(group string) bool {
	group = strings.TrimSpace(group)
	for _, c := range r.opts.ExemptCohorts {
		if group == c {
			return true
		}
	}
	return false
}

// PlanPrice returns the display price for the record's plan.
func (r *Renderer) PlanPrice(rec intake.ClientRecord) string {
	table := r.opts.Pricing.Regular
	if r.IsPromotional(rec.Group) {
		table = r.opts.Pricing.Promotional
	}
	prices := table.Female
	if rec.Gender == intake.GenderMale {
		prices = table.Male
	}
	if rec.Tier() == intake.TierPremium {
		return prices.Premium
	}
	return prices.Basic
}

// Document renders the full batch consultation text.
func (r *Renderer) Document(s *ConsultationScript) string {
	rec := s.record
	labels := strings.Join(rec.ConditionLabels(), ", ")
	premium := s.Tier() == intake.TierPremium

	var b strings.Builder
	fmt.Fprintf(&b, "안녕하세요 %s님! 이음로그 매니저입니다.\n", rec.Name)
	b.WriteString("보내주신 프로필과 이상형 조건 꼼꼼하게 확인했습니다.\n\n")

	if premium {
		fmt.Fprintf(&b, "선택하신 조건이 %d가지라 프리미엄 플랜 기준에 해당됩니다 😊\n", len(rec.SelectedConditions))
		b.WriteString("이용료가 조금 더 높은 플랜인데, 이 기준으로 진행 괜찮으실까요?\n\n")
		b.WriteString("(혹시 베이직으로 진행 원하시면 조건을 2개로 줄여드릴 수도 있습니다!)\n")
	} else {
		b.WriteString("보장되는 조건이 최대 2개인 베이직 플랜으로 안내드릴게요!\n")
		fmt.Fprintf(&b, "선택하신 [%s] 조건은 확실히 보장해드립니다 😊\n\n", labels)
		b.WriteString("다만, 그 외 조건들은 맞지 않을 수도 있다는 점 참고 부탁드려요.\n")
		b.WriteString("(더 많은 조건 보장을 원하시면 프리미엄으로 변경도 가능합니다.)\n")
	}

	b.WriteString("\n" + divider + "\n\n")
	b.WriteString("그럼 매칭 진행 전, 몇 가지 세부 사항 확인차 질문드리고 싶은데 5-10분 정도 시간 괜찮으실까요?\n\n")

	for i, step := range s.steps {
		writeBlock(&b, i+1, step)
	}

	b.WriteString(divider + "\n\n")
	b.WriteString("네! 질문 모두 확인했습니다 🙂\n")
	if premium {
		fmt.Fprintf(&b, "말씀해주신 %d가지 조건은 확실하게 맞춰서 소개해드리겠습니다!\n", len(rec.SelectedConditions))
		b.WriteString("그 외 부분들도 최대한 신경 써서 좋은 분 찾아볼게요.\n\n")
	} else {
		fmt.Fprintf(&b, "회원님께서 선택하신 %d가지 조건은 확실히 보장해드리며,\n", len(rec.SelectedConditions))
		b.WriteString("그 외 조건들도 가능한 범위 내에서 최대한 맞춰 소개해드리겠습니다!\n\n")
	}

	if r.IsExempt(rec.Group) {
		b.WriteString("1차 후보군 검색을 시작하겠습니다 😊\n\n")
		b.WriteString("네 이번주 중으로 매칭 연락 드리겠습니다! 감사합니다.")
		return b.String()
	}

	b.WriteString("이제 본격적인 매칭 진행을 위해 [프로필 제공권] 결제 진행 부탁드립니다!\n\n")
	b.WriteString("💰 이용권 안내\n")
	if premium {
		fmt.Fprintf(&b, "프리미엄: %s (3개월 간 프로필 제공)\n", r.PlanPrice(rec))
	} else {
		fmt.Fprintf(&b, "베이직: %s (3개월 간 프로필 제공)\n", r.PlanPrice(rec))
	}
	if r.opts.PaymentAccount != "" {
		fmt.Fprintf(&b, "\n📩 입금 계좌\n%s\n", r.opts.PaymentAccount)
	}
	b.WriteString("※ '오늘 오후 8시'까지, 입금 확인 후 바로 리스트업 들어갑니다!\n\n")
	b.WriteString("네 이번주 중으로 매칭 연락 드리겠습니다! 감사합니다.")
	return b.String()
}

func writeBlock(b *strings.Builder, n int, step negotiation.Step) {
	title := fmt.Sprintf("%d. %s 조건", n, step.Label)
	if step.ClientValue != "" {
		title += fmt.Sprintf(" (본인 %s)", step.ClientValue)
	}
	if step.Guaranteed {
		title = "📌 " + title + " (선택)"
	}
	b.WriteString(title + "\n")
	if step.Preamble != "" {
		b.WriteString(step.Preamble + "\n")
	}
	b.WriteString(step.GuidanceText + "\n")
	for _, notice := range step.Notices {
		b.WriteString(notice + "\n")
	}
	b.WriteString("\n")
}
