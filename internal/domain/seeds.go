package domain

import "math/rand/v2"

const (
	// DefaultSeed is used for a single run without an explicit seed.
	DefaultSeed uint32 = 10
	// MaxSeed is the upper bound of randomly drawn seeds.
	MaxSeed uint32 = 0xFFFFFFFF
)

// SeedSet holds one seed per repeat of a test.
type SeedSet []uint32

// NewSeedSet builds the seeds for a test. A seed of 0 with a single repeat
// yields DefaultSeed; a seed of 0 with several repeats draws each element
// from [1, MaxSeed]; any other seed is repeated verbatim. A nil r uses the
// global source.
func NewSeedSet(seed uint32, repeat int, r *rand.Rand) SeedSet {
	if repeat < 1 {
		repeat = 1
	}
	seeds := make(SeedSet, 0, repeat)
	if repeat == 1 && seed == 0 {
		return append(seeds, DefaultSeed)
	}
	for i := 0; i < repeat; i++ {
		if seed != 0 {
			seeds = append(seeds, seed)
			continue
		}
		if r != nil {
			seeds = append(seeds, r.Uint32N(MaxSeed)+1)
		} else {
			seeds = append(seeds, rand.Uint32N(MaxSeed)+1)
		}
	}
	return seeds
}
