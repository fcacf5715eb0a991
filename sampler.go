// Copyright 2019, LightStep Inc.

package popsize

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrZeroPopulation means a sampler was constructed over an empty
// population.
var ErrZeroPopulation = errors.New("population size must be positive")

// Sampler generates synthetic multiplicity profiles for a population of
// known size.  Only the multiplicity classes are tracked, never the
// identities of individual members: under uniform sampling the members
// of one class are exchangeable, so the chance that the next draw lands
// in a class is the class count over the population size, and the
// chance it lands on an unseen member is the remaining mass
// (populationSize - distinct)/populationSize.  Memory is proportional
// to the number of draws, not the population size.
type Sampler struct {
	populationSize int
	rnd            *rand.Rand
}

// NewSampler returns a sampler drawing uniformly with replacement from
// populationSize equally likely members.  The sampler owns rnd;
// handing the same generator to anything else forfeits reproducibility.
func NewSampler(populationSize int, rnd *rand.Rand) (*Sampler, error) {
	if populationSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrZeroPopulation, populationSize)
	}
	return &Sampler{
		populationSize: populationSize,
		rnd:            rnd,
	}, nil
}

// PopulationSize returns the size the sampler draws from.
func (s *Sampler) PopulationSize() int {
	return s.populationSize
}

// Sample draws numDraws times and returns the resulting profile.
func (s *Sampler) Sample(numDraws int) Profile {
	return s.SampleInto(nil, numDraws)
}

// SampleInto is Sample reusing dst's backing array, in the manner of
// append.  The returned profile aliases dst and stays valid until the
// next SampleInto call on the same buffer.
func (s *Sampler) SampleInto(dst Profile, numDraws int) Profile {
	dd := dst[:0]

	for draw := 0; draw < numDraws; draw++ {
		member := s.rnd.Intn(s.populationSize)

		// Walk the classes in increasing multiplicity.  The running
		// sum partitions [0, populationSize): one segment per seen
		// class, then the unseen remainder.
		class := 0
		sum := 0
		for ; class < len(dd); class++ {
			sum += dd[class]
			if member < sum {
				break
			}
		}

		if class == len(dd) {
			// Unseen member, enters the once-drawn class.
			class = 0
		} else {
			// Re-drawn member moves up one class.
			dd[class]--
			class++
		}

		if class == len(dd) {
			dd = append(dd, 0)
		}
		dd[class]++
	}

	return dd
}
