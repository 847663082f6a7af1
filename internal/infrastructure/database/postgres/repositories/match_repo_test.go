package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhaven/matchgrid/internal/domain/match"
	"github.com/openhaven/matchgrid/pkg/errors"
)

func batchMatches(n int) []*match.Match {
	out := make([]*match.Match, n)
	for i := range out {
		out[i] = &match.Match{
			ID:          uuid.New(),
			ApplicantID: uuid.New(),
			ProjectID:   uuid.New(),
			Score:       0.5,
		}
	}
	return out
}

func TestUpsertEach_MidListFailureDoesNotSkipSiblings(t *testing.T) {
	matches := batchMatches(4)
	failing := matches[1].ID
	boom := errors.New(errors.CodeDatabaseError, "connection reset")

	var attempted []uuid.UUID
	written, err := upsertEach(context.Background(), matches, func(_ context.Context, m *match.Match) error {
		attempted = append(attempted, m.ID)
		if m.ID == failing {
			return boom
		}
		return nil
	})

	require.Error(t, err)
	assert.Equal(t, boom, err)
	assert.Equal(t, 3, written)
	// Every record after the failing one was still attempted.
	assert.Len(t, attempted, 4)
}

func TestUpsertEach_FirstErrorWinsAcrossMultipleFailures(t *testing.T) {
	matches := batchMatches(3)
	first := errors.New(errors.CodeDatabaseError, "first failure")
	second := errors.New(errors.CodeDatabaseError, "second failure")

	calls := 0
	written, err := upsertEach(context.Background(), matches, func(context.Context, *match.Match) error {
		calls++
		switch calls {
		case 1:
			return first
		case 2:
			return second
		default:
			return nil
		}
	})

	assert.Equal(t, first, err)
	assert.Equal(t, 1, written)
}

func TestUpsertEach_EmptyInput(t *testing.T) {
	written, err := upsertEach(context.Background(), nil, func(context.Context, *match.Match) error {
		t.Fatal("upsert should not be called")
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, written)
}
