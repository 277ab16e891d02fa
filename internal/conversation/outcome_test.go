package conversation

import (
	"strings"
	"testing"

	"github.com/eumlog/consultation-engine/internal/negotiation"
)

func TestSplitOutcome(t *testing.T) {
	reply := "조율해주셔서 감사합니다.\n\n고생하셨습니다!\n\n```json\n{\"updates\":{\"income\":\"3천만원 이상\"},\"summary\":\"연봉 완화\"}\n```"
	visible, block := SplitOutcome(reply)
	if strings.Contains(visible, "```") || !strings.HasSuffix(visible, "고생하셨습니다!") {
		t.Fatalf("unexpected visible text %q", visible)
	}
	if !strings.HasPrefix(block, "{") || !strings.Contains(block, "income") {
		t.Fatalf("unexpected block %q", block)
	}

	visible, block = SplitOutcome("  네 알겠습니다  ")
	if visible != "네 알겠습니다" || block != "" {
		t.Fatalf("plain reply split wrong: %q %q", visible, block)
	}
}

func TestSplitBubbles(t *testing.T) {
	got := SplitBubbles("**첫 문단**\n\n\n\n  둘째 문단 \n\n")
	if len(got) != 2 || got[0] != "첫 문단" || got[1] != "둘째 문단" {
		t.Fatalf("unexpected bubbles %#v", got)
	}
}

func TestParseOutcome(t *testing.T) {
	t.Run("canonical updates kept", func(t *testing.T) {
		out := ParseOutcome(`{"updates":{"income":"3천만원 이상","age_range":"88 ~ 92년생"},"summary":"연봉, 나이 완화","memo":"주말 선호"}`, nil)
		if out.Updates[negotiation.FieldIncome] != "3천만원 이상" {
			t.Fatalf("income missing: %#v", out.Updates)
		}
		if out.Updates[negotiation.FieldAgeRange] != "88~92년생" {
			t.Fatalf("age range not tidied: %#v", out.Updates)
		}
		if out.Summary != "연봉, 나이 완화" || out.Memo != "주말 선호" {
			t.Fatalf("unexpected summary/memo %#v", out)
		}
	})

	t.Run("non canonical values go to memo", func(t *testing.T) {
		out := ParseOutcome(`{"updates":{"min_height":170,"hobby":"등산"},"summary":""}`, nil)
		if len(out.Updates) != 0 {
			t.Fatalf("expected no canonical updates, got %#v", out.Updates)
		}
		if !strings.Contains(out.Memo, "hobby: 등산") || !strings.Contains(out.Memo, "min_height: 170") {
			t.Fatalf("expected rejected values in memo, got %q", out.Memo)
		}
		if out.Summary != negotiation.NoChangesSummary {
			t.Fatalf("expected no-changes summary, got %q", out.Summary)
		}
	})

	t.Run("empty block means no changes", func(t *testing.T) {
		out := ParseOutcome("", nil)
		if out.HasChanges() || out.Summary != negotiation.NoChangesSummary {
			t.Fatalf("unexpected outcome %#v", out)
		}
	})

	t.Run("undecodable block kept in memo", func(t *testing.T) {
		out := ParseOutcome(`{"updates": oops}`, nil)
		if !strings.Contains(out.Memo, "oops") {
			t.Fatalf("expected raw block in memo, got %q", out.Memo)
		}
	})

	t.Run("summary header fallback", func(t *testing.T) {
		out := ParseOutcome("", []string{"고생하셨습니다!", "[변경 사항 요약]\n- 연봉: 3천 이상"})
		if out.Summary != "- 연봉: 3천 이상" {
			t.Fatalf("unexpected summary %q", out.Summary)
		}
	})
}
