package settle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllPartialFailure(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		{Source: "a", Run: func(ctx context.Context) (int, error) { return 1, nil }},
		{Source: "b", Run: func(ctx context.Context) (int, error) { return 0, boom }},
		{Source: "c", Run: func(ctx context.Context) (int, error) { return 3, nil }},
	}

	results := All(context.Background(), tasks)
	require.Len(t, results, 3)

	assert.True(t, results[0].Ok())
	assert.Equal(t, 1, results[0].Value)
	assert.Equal(t, "a", results[0].Source)

	assert.False(t, results[1].Ok())
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, "b", results[1].Source)

	assert.True(t, results[2].Ok())
	assert.Equal(t, 3, results[2].Value)
}

func TestAllEmpty(t *testing.T) {
	results := All[int](context.Background(), nil)
	assert.Empty(t, results)
}
