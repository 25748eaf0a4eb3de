package quiz

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/adaptive"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(5, 6)) }

func allActions() []adaptive.Action {
	out := make([]adaptive.Action, 18)
	for i := range out {
		out[i] = adaptive.Action(i)
	}
	return out
}

func TestAssemble_ExactCountUnique(t *testing.T) {
	a := NewAssembler(fullBank(1), &scriptedPolicy{actions: allActions()}, 6, seeded())

	res, err := a.Assemble(context.Background(), Request{Count: 5})
	require.NoError(t, err)
	require.Len(t, res.Questions, 5)
	assert.Len(t, lo.Uniq(res.QuestionIDs()), 5)
	assert.Equal(t, allActions()[:5], res.Actions)
	assert.Zero(t, res.Filled)
}

func TestAssemble_SmallBankReturnsEverything(t *testing.T) {
	bank := &memBank{questions: []Question{
		{ID: 1, ChapterID: 1, Difficulty: adaptive.Easy},
		{ID: 2, ChapterID: 2, Difficulty: adaptive.Medium},
		{ID: 3, ChapterID: 6, Difficulty: adaptive.Hard},
	}}
	a := NewAssembler(bank, &scriptedPolicy{actions: []adaptive.Action{0}}, 6, seeded())

	res, err := a.Assemble(context.Background(), Request{Count: 5})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, res.QuestionIDs())
	assert.Equal(t, 2, res.Filled)
	assert.Equal(t, MaxAttempts, res.Attempts)
}

func TestAssemble_DefaultCount(t *testing.T) {
	a := NewAssembler(fullBank(3), &scriptedPolicy{actions: allActions()}, 6, seeded())

	res, err := a.Assemble(context.Background(), Request{})
	require.NoError(t, err)
	require.Len(t, res.Questions, DefaultCount)
	assert.Len(t, lo.Uniq(res.QuestionIDs()), DefaultCount)
	// 18 distinct buckets give one question each; the rest is topped up.
	assert.Len(t, res.Actions, 18)
	assert.Equal(t, 2, res.Filled)
}

func TestAssemble_RepeatedActionsAreSkipped(t *testing.T) {
	policy := &scriptedPolicy{actions: []adaptive.Action{4, 4, 4, 7}}
	a := NewAssembler(fullBank(5), policy, 6, seeded())

	res, err := a.Assemble(context.Background(), Request{Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []adaptive.Action{4, 7}, res.Actions)
	assert.Equal(t, 4, res.Attempts)
	for i, q := range res.Questions {
		assert.Equal(t, res.Actions[i], q.Bucket())
	}
}

func TestAssemble_ForcedBucket(t *testing.T) {
	policy := &scriptedPolicy{actions: allActions()}
	a := NewAssembler(fullBank(4), policy, 6, seeded())

	ch, d := 3, adaptive.Hard
	res, err := a.Assemble(context.Background(), Request{
		ForcedChapter:    &ch,
		ForcedDifficulty: &d,
		Count:            6,
	})
	require.NoError(t, err)
	require.Len(t, res.Questions, 6)
	assert.Zero(t, policy.calls, "forced requests never consult the policy")
	assert.Equal(t, []adaptive.Action{8}, res.Actions)
	assert.Equal(t, adaptive.Action(8), res.Questions[0].Bucket())
	assert.Equal(t, 5, res.Filled)
}

func TestAssemble_PartialOverrideIgnored(t *testing.T) {
	policy := &scriptedPolicy{actions: allActions()}
	a := NewAssembler(fullBank(1), policy, 6, seeded())

	ch := 2
	_, err := a.Assemble(context.Background(), Request{ForcedChapter: &ch, Count: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, policy.calls)
}

func TestAssemble_InvalidForcedBucket(t *testing.T) {
	a := NewAssembler(fullBank(1), &scriptedPolicy{actions: allActions()}, 6, seeded())

	ch, d := 9, adaptive.Easy
	_, err := a.Assemble(context.Background(), Request{ForcedChapter: &ch, ForcedDifficulty: &d})
	assert.ErrorIs(t, err, adaptive.ErrInvalidBucket)
}

func TestAssemble_Errors(t *testing.T) {
	tests := []struct {
		name   string
		bank   *memBank
		policy *scriptedPolicy
	}{
		{"policy error", fullBank(1), &scriptedPolicy{err: assert.AnError}},
		{"bank error", &memBank{err: errBankDown}, &scriptedPolicy{actions: allActions()}},
		{"invalid action", fullBank(1), &scriptedPolicy{actions: []adaptive.Action{18}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(tt.bank, tt.policy, 6, seeded())
			res, err := a.Assemble(context.Background(), Request{Count: 5})
			require.ErrorIs(t, err, ErrSelection)
			assert.Nil(t, res)
		})
	}
}

func TestAssemble_WithAgent(t *testing.T) {
	agent, err := adaptive.NewAgent(adaptive.DefaultConfig(), adaptive.WithRand(seeded()))
	require.NoError(t, err)

	a := NewAssembler(fullBank(2), agent, 6, seeded())
	res, err := a.Assemble(context.Background(), Request{Count: 12})
	require.NoError(t, err)
	require.Len(t, res.Questions, 12)
	assert.Len(t, lo.Uniq(res.QuestionIDs()), 12)
}
