package usecases

import (
	"testing"

	"github.com/stretchr/testify/require"
	"astraldraw.backend/internal/domain/entities"
)

func TestGenerateStarKeys_Range(t *testing.T) {
	keys, err := GenerateStarKeys(entities.StarKeyCount)
	require.NoError(t, err)
	require.Len(t, keys, entities.StarKeyCount)
	for _, k := range keys {
		require.GreaterOrEqual(t, k, 0)
		require.LessOrEqual(t, k, 9)
	}
}

func TestGenerateStarKeys_DefaultCount(t *testing.T) {
	keys, err := GenerateStarKeys(0)
	require.NoError(t, err)
	require.Len(t, keys, entities.StarKeyCount)
}

func TestCommitStarKeys_RoundTrip(t *testing.T) {
	keys := []int{3, 1, 4, 1, 5, 9}
	seed, err := GenerateRevealSeed()
	require.NoError(t, err)

	commit := CommitStarKeys(keys, seed)
	require.True(t, VerifyStarKeyCommit(commit, keys, seed))

	require.False(t, VerifyStarKeyCommit(commit, []int{3, 1, 4, 1, 5, 8}, seed))
	require.False(t, VerifyStarKeyCommit(commit, keys, "other-seed"))
}
