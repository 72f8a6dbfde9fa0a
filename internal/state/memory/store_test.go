package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerforge/transact/internal/state"
)

func TestStoreGetUnknownKeyIsOmittedNotError(t *testing.T) {
	s := New()
	root := StateID(nil)

	values, err := s.Get(context.Background(), root, []string{"missing"})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStoreGetUnknownStateIDErrors(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "not-a-real-snapshot", []string{"k"})
	assert.Error(t, err)
}

func TestStoreCommitThenGetRoundTrips(t *testing.T) {
	s := New()
	root := StateID(nil)

	next, err := s.Commit(context.Background(), root, []state.Change{
		{Kind: state.ChangeSet, Key: "k1", Value: "v1"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, root, next)

	values, err := s.Get(context.Background(), next, []string{"k1", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k1": "v1"}, values)
}

func TestStoreCommitDeleteRemovesKeyFromResultingSnapshot(t *testing.T) {
	s := New()
	root := StateID(nil)

	withKey, err := s.Commit(context.Background(), root, []state.Change{
		{Kind: state.ChangeSet, Key: "k1", Value: "v1"},
	})
	require.NoError(t, err)

	withoutKey, err := s.Commit(context.Background(), withKey, []state.Change{
		{Kind: state.ChangeDelete, Key: "k1"},
	})
	require.NoError(t, err)

	values, err := s.Get(context.Background(), withoutKey, []string{"k1"})
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestStoreCommitUnknownBaseErrors(t *testing.T) {
	s := New()
	_, err := s.Commit(context.Background(), "not-a-real-snapshot", nil)
	assert.Error(t, err)
}

func TestTwoCommitsLandingOnSameContentShareStateID(t *testing.T) {
	s := New()
	root := StateID(nil)

	a, err := s.Commit(context.Background(), root, []state.Change{
		{Kind: state.ChangeSet, Key: "k1", Value: "v1"},
	})
	require.NoError(t, err)

	// Commit the same resulting content from a different base path.
	viaDelete, err := s.Commit(context.Background(), root, []state.Change{
		{Kind: state.ChangeSet, Key: "k1", Value: "v1"},
		{Kind: state.ChangeSet, Key: "k2", Value: "v2"},
	})
	require.NoError(t, err)
	b, err := s.Commit(context.Background(), viaDelete, []state.Change{
		{Kind: state.ChangeDelete, Key: "k2"},
	})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
