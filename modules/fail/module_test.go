package fail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailJob_ReturnsInjectedError(t *testing.T) {
	t.Parallel()

	job, err := NewJob(newInput())
	require.NoError(t, err)

	err = job.Run(context.Background())
	assert.ErrorIs(t, err, ErrInjected)
	assert.Contains(t, err.Error(), "failed on purpose")
}

func TestFailJob_Every(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	in := newInput()
	in.Every = 3
	job, err := NewJob(in)
	require.NoError(t, err)

	// --- Act ---
	var results []bool
	for i := 0; i < 6; i++ {
		results = append(results, job.Run(context.Background()) == nil)
	}

	// --- Assert ---
	assert.Equal(t, []bool{true, true, false, true, true, false}, results)
}

func TestFailJob_Panics(t *testing.T) {
	t.Parallel()

	in := newInput()
	in.Panic = true
	in.Message = "kaboom"
	job, err := NewJob(in)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "kaboom", func() { _ = job.Run(context.Background()) })
}

func TestFailJob_InvalidEvery(t *testing.T) {
	t.Parallel()

	in := newInput()
	in.Every = 0
	_, err := NewJob(in)
	assert.Error(t, err)
}
