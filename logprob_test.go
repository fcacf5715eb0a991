// Copyright 2019, LightStep Inc.

package popsize_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lightstep/popsize"
)

// appendProfiles appends to dst every profile whose classes above
// len(prefix) account for exactly `remaining` further draws.  Called
// with an empty prefix it enumerates all profiles of a given draw
// count, population permitting or not; callers filter on Distinct.
func appendProfiles(dst []popsize.Profile, prefix popsize.Profile, remaining int) []popsize.Profile {
	if remaining == 0 {
		return append(dst, prefix.Clone())
	}

	class := len(prefix) + 1
	if remaining < class {
		return dst
	}

	for count := 0; count*class <= remaining; count++ {
		dst = appendProfiles(dst, append(prefix, count), remaining-count*class)
	}

	return dst
}

func allProfiles(numDraws int) []popsize.Profile {
	return appendProfiles(nil, nil, numDraws)
}

func TestLogProbabilityEmptyProfile(t *testing.T) {
	for _, populationSize := range []int{1, 3, 1000} {
		logp, err := popsize.LogProbability(popsize.Profile{}, populationSize)
		require.NoError(t, err)
		require.Equal(t, 0.0, logp)
	}

	logp, err := popsize.LogProbability(nil, 5)
	require.NoError(t, err)
	require.Equal(t, 0.0, logp)
}

func TestLogProbabilityExact(t *testing.T) {
	for _, tc := range []struct {
		profile        popsize.Profile
		populationSize int
		logp           float64
	}{
		// A single draw always yields one once-drawn member.
		{popsize.Profile{1}, 5, 0},
		// A one-member population can only repeat itself.
		{popsize.Profile{0, 0, 1}, 1, 0},
		// Two draws from two members: match or no match, half each.
		{popsize.Profile{2}, 2, -math.Ln2},
		{popsize.Profile{0, 1}, 2, -math.Ln2},
	} {
		logp, err := popsize.LogProbability(tc.profile, tc.populationSize)
		require.NoError(t, err)
		require.InDelta(t, tc.logp, logp, 1e-12)
	}
}

func TestLogProbabilityNeverPositive(t *testing.T) {
	rnd := rand.New(rand.NewSource(17167))

	for _, populationSize := range []int{1, 2, 10, 1000} {
		sampler, err := popsize.NewSampler(populationSize, rnd)
		require.NoError(t, err)

		for numDraws := 0; numDraws <= 200; numDraws += 7 {
			dd := sampler.Sample(numDraws)

			logp, err := popsize.LogProbability(dd, populationSize)
			require.NoError(t, err)
			require.LessOrEqual(t, logp, 0.0)
		}
	}
}

// The reachable profiles for a fixed draw count partition the sample
// space, so their probabilities must sum to one.
func TestLogProbabilitySumsToOne(t *testing.T) {
	for _, tc := range []struct {
		populationSize, numDraws int
	}{
		{3, 2},
		{2, 4},
		{5, 3},
		{4, 6},
		{5, 8},
	} {
		total := 0.0

		for _, dd := range allProfiles(tc.numDraws) {
			if dd.Distinct() > tc.populationSize {
				continue
			}

			logp, err := popsize.LogProbability(dd, tc.populationSize)
			require.NoError(t, err)

			total += math.Exp(logp)
		}

		require.InDelta(t, 1.0, total, 1e-9,
			"populationSize %d numDraws %d", tc.populationSize, tc.numDraws)
	}
}

// Histogram every one of populationSize^numDraws draw sequences by its
// profile and compare the counts against the closed form.
func TestSequenceCountBruteForce(t *testing.T) {
	for _, tc := range []struct {
		populationSize, numDraws int
	}{
		{3, 6},
		{5, 4},
		{5, 8},
	} {
		counts := map[string]int{}
		profiles := map[string]popsize.Profile{}

		seq := make([]int, tc.numDraws)
		for {
			dd := profileOf(seq)
			key := fmt.Sprint([]int(dd))
			counts[key]++
			profiles[key] = dd

			if !nextSequence(seq, tc.populationSize) {
				break
			}
		}

		total := 0
		for key, count := range counts {
			calc, err := popsize.SequenceCount(profiles[key], tc.populationSize)
			require.NoError(t, err)
			require.InEpsilon(t, float64(count), calc, 1e-9, "profile %s", key)
			total += count
		}

		require.Equal(t, intPow(tc.populationSize, tc.numDraws), total)
	}
}

// profileOf collapses a concrete draw sequence to its profile.
func profileOf(seq []int) popsize.Profile {
	perMember := map[int]int{}
	for _, member := range seq {
		perMember[member]++
	}

	var dd popsize.Profile
	for _, times := range perMember {
		for times > len(dd) {
			dd = append(dd, 0)
		}
		dd[times-1]++
	}
	return dd
}

// nextSequence advances seq as a base-populationSize counter, reporting
// false once it wraps.
func nextSequence(seq []int, populationSize int) bool {
	for i := range seq {
		seq[i]++
		if seq[i] < populationSize {
			return true
		}
		seq[i] = 0
	}
	return false
}

func intPow(base, exp int) int {
	n := 1
	for i := 0; i < exp; i++ {
		n *= base
	}
	return n
}

func TestLogProbabilityReference(t *testing.T) {
	ref := popsize.Profile{27, 22, 25, 8, 2, 2}
	require.Equal(t, 200, ref.Draws())
	require.Equal(t, 86, ref.Distinct())

	logp, err := popsize.LogProbability(ref, 100)
	require.NoError(t, err)
	require.Less(t, logp, 0.0)
	require.False(t, math.IsInf(logp, 0))
	require.False(t, math.IsNaN(logp))
}

func TestLogProbabilitySmallPopulation(t *testing.T) {
	_, err := popsize.LogProbability(popsize.Profile{5}, 3)
	require.ErrorIs(t, err, popsize.ErrSmallPopulation)

	_, err = popsize.LogProbability(popsize.Profile{27, 22, 25, 8, 2, 2}, 85)
	require.ErrorIs(t, err, popsize.ErrSmallPopulation)

	_, err = popsize.LogProbability(popsize.Profile{1, -1}, 3)
	require.ErrorIs(t, err, popsize.ErrInvalidProfile)
}
