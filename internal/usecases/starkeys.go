package usecases

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"astraldraw.backend/internal/domain/entities"
)

// GenerateStarKeys draws n digits in [0,9] from crypto/rand
func GenerateStarKeys(n int) ([]int, error) {
	if n <= 0 {
		n = entities.StarKeyCount
	}
	keys := make([]int, n)
	for i := range keys {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return nil, fmt.Errorf("draw star key: %w", err)
		}
		keys[i] = int(v.Int64())
	}
	return keys, nil
}

// GenerateRevealSeed returns a random hex seed for the commit-reveal scheme
func GenerateRevealSeed() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("draw reveal seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CommitStarKeys hashes keys and seed. The hash is published when the
// winning keys are drawn; the seed is revealed with the keys so anyone
// can verify the keys were not changed after the fact.
func CommitStarKeys(keys []int, seed string) string {
	h := sha256.New()
	h.Write([]byte(entities.EncodeStarKeys(keys)))
	h.Write([]byte(seed))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyStarKeyCommit checks a published commitment against revealed keys
func VerifyStarKeyCommit(commitHash string, keys []int, seed string) bool {
	return CommitStarKeys(keys, seed) == commitHash
}
