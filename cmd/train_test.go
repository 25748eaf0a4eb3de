package cmd

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizadapt/internal/store"
	"github.com/abhisek/quizadapt/internal/training"
)

func TestDescribeRun(t *testing.T) {
	raw, err := json.Marshal(training.Report{RunID: "run-1", Episodes: 200, MeanReward: 0.25, Epsilon: 0.05})
	require.NoError(t, err)
	run := &store.TrainingRun{
		RunID:     "run-1",
		Timestamp: time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC),
		Report:    raw,
	}

	line, err := describeRun(run)
	require.NoError(t, err)
	assert.Equal(t, "run-1 on 2026-05-01 18:00, 200 episodes, mean reward +0.250, epsilon 0.050", line)

	_, err = describeRun(&store.TrainingRun{RunID: "bad", Report: json.RawMessage("{")})
	assert.Error(t, err)
}
