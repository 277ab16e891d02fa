package negotiation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(steps []Step) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, s.AttributeKey)
	}
	return out
}

func TestEvaluateOrder(t *testing.T) {
	steps := Evaluate(female("95", "나이", "키"))
	assert.Equal(t, []string{
		AttributeAge, AttributeHeight, AttributeLocation, AttributeSmoking,
		AttributeEducation, AttributeIncome, AttributeJob,
	}, keys(steps))

	steps = Evaluate(female("95", "나이", "종교"))
	assert.Equal(t, []string{
		AttributeAge, AttributeHeight, AttributeLocation, AttributeSmoking,
		AttributeReligion, AttributeEducation, AttributeIncome, AttributeJob,
	}, keys(steps))
}

func TestEvaluateIsDeterministic(t *testing.T) {
	rec := male("900101", "나이", "키", "연봉")
	rec.PreferredAgeText = "93~97년생"
	rec.PreferredHeightText = "163 이상"
	rec.PreferredIncomeText = "5천"
	rec.SelectedConditionsRaw = "나이|키|연봉"

	first := Evaluate(rec)
	second := Evaluate(rec)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"나이", "키", "연봉"}, rec.SelectedConditions, "record must not be mutated")
}

func TestFollowUpSuppressedTracksQuestionMarkers(t *testing.T) {
	for _, step := range Evaluate(female("95", "나이", "지역(전남)")) {
		assert.Equal(t, !IsQuestion(step.GuidanceText), step.FollowUpSuppressed, step.AttributeKey)
	}
}

func TestClosing(t *testing.T) {
	step := Closing(female("95", "나이", "키"))
	require.Equal(t, AttributeClosing, step.AttributeKey)
	assert.Contains(t, step.GuidanceText, "[나이, 키]")
	assert.Contains(t, step.GuidanceText, CompletionPhrase)
	assert.True(t, step.FollowUpSuppressed)

	assert.Contains(t, Closing(female("95")).GuidanceText, "[없음]")
}

func TestReactionInstruction(t *testing.T) {
	for _, r := range []ReactionPolicy{ReactionEasy, ReactionConditional, ReactionDefault, ReactionHeightWarning} {
		assert.NotEmpty(t, r.Instruction(), r)
	}
	assert.Equal(t, ReactionDefault.Instruction(), ReactionPolicy("UNKNOWN").Instruction())
}
