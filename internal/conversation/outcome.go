package conversation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/eumlog/consultation-engine/internal/negotiation"
)

var (
	fencedBlockRE = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	boldRE        = regexp.MustCompile(`\*\*`)
)

// summaryHeader is the plain-text summary marker older prompts produced.
const summaryHeader = "[변경 사항 요약]"

// SplitOutcome separates the visible reply from a trailing fenced data block.
// block is empty when the reply carries none.
func SplitOutcome(text string) (visible, block string) {
	loc := fencedBlockRE.FindStringSubmatchIndex(text)
	if loc == nil {
		return strings.TrimSpace(text), ""
	}
	block = text[loc[2]:loc[3]]
	visible = strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
	return visible, block
}

// SplitBubbles breaks a reply into chat bubbles on blank lines and removes
// markdown bold markers.
func SplitBubbles(text string) []string {
	parts := strings.Split(text, "\n\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(boldRE.ReplaceAllString(p, ""))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type rawOutcome struct {
	Updates map[string]any `json:"updates"`
	Summary any            `json:"summary"`
	Memo    any            `json:"memo"`
}

// ParseOutcome decodes and canonicalizes a data block. An empty block means
// no changes. A block that fails to decode is kept verbatim in the memo.
func ParseOutcome(block string, turnTexts []string) negotiation.Outcome {
	out := negotiation.Outcome{Updates: map[negotiation.FieldKey]string{}}

	block = strings.TrimSpace(block)
	if block != "" {
		var raw rawOutcome
		if err := json.Unmarshal([]byte(block), &raw); err != nil {
			out.Memo = "해석 실패한 결과 블록: " + block
		} else {
			for k, v := range raw.Updates {
				out.Updates[negotiation.FieldKey(strings.TrimSpace(k))] = stringify(v)
			}
			out.Summary = stringify(raw.Summary)
			out.Memo = stringify(raw.Memo)
		}
	}

	if out.Summary == "" {
		out.Summary = summaryFromText(turnTexts)
	}
	return negotiation.Canonicalize(out)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

func summaryFromText(texts []string) string {
	for _, text := range texts {
		if _, after, ok := strings.Cut(text, summaryHeader); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}
