// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"math"
	"math/rand"
	"time"

	"github.com/pdiddy/dataprep/pkg/types"
)

// DefaultTrainRatio is the fraction of records that go to the training split.
const DefaultTrainRatio = 0.9

// NewRand returns a random source for seed. A zero seed is replaced by the
// current time; the seed actually used is returned so a run can be repeated.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// SplitPoint returns floor(ratio × n), clamped to [0, n]. A ratio outside
// (0, 1] falls back to DefaultTrainRatio.
func SplitPoint(n int, ratio float64) int {
	if ratio <= 0 || ratio > 1 {
		ratio = DefaultTrainRatio
	}
	p := int(math.Floor(ratio * float64(n)))
	if p > n {
		p = n
	}
	return p
}

// SplitTrainValid shuffles a copy of records with rng and cuts it at
// SplitPoint. The input slice is not modified.
func SplitTrainValid(records []types.ChatRecord, ratio float64, rng *rand.Rand) (train, valid []types.ChatRecord) {
	shuffled := make([]types.ChatRecord, len(records))
	copy(shuffled, records)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	p := SplitPoint(len(shuffled), ratio)
	return shuffled[:p], shuffled[p:]
}
