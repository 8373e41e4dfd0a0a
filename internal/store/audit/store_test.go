package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, Exchange{Purpose: "risk-assessment", Model: "m", Prompt: "p1", Reply: "r1"}))
	require.NoError(t, s.Insert(ctx, Exchange{Purpose: "compliance-check", Model: "m", Prompt: "p2", Error: "timeout"}))

	got, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "compliance-check", got[0].Purpose)
	assert.Equal(t, "timeout", got[0].Error)
	assert.Equal(t, "risk-assessment", got[1].Purpose)
	assert.Equal(t, "r1", got[1].Reply)
	assert.NotZero(t, got[0].CreatedAt)
}

func TestInsertAfterClose(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Close())
	assert.Error(t, s.Insert(context.Background(), Exchange{Purpose: "risk-assessment", Prompt: "p"}))
}

func TestOpenEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}
