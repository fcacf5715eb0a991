// Copyright 2019, LightStep Inc.

// Package montecarlo turns the exact profile probability into a
// simulation-based significance test against a hypothesized population
// size.  There is no closed form for the null distribution of profile
// probabilities, so the test simulates it: the p-value is the fraction
// of synthetic samples at most as probable as the observation.
package montecarlo

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/lightstep/popsize"
)

// logProbTolerance bounds the log-probability difference below which a
// simulated profile counts as exactly as probable as the reference.
const logProbTolerance = 1e-10

// ErrNoRepeats means a p-value was requested over zero simulation
// repeats.
var ErrNoRepeats = errors.New("number of repeats must be positive")

// Record pairs a simulated profile with its log-probability.
type Record struct {
	Profile popsize.Profile
	LogProb float64
}

func (r Record) String() string {
	return fmt.Sprintf("logP %v --> %v", r.LogProb, []int(r.Profile))
}

// Explore generates numRepeats independent profiles of numDraws draws
// each and pairs every profile with its log-probability under the
// given population size.  Useful for seeing what typical samples look
// like before committing to a significance test.  The records hold
// independent profiles; none alias the sampler's state.
func Explore(populationSize, numDraws, numRepeats int, seed int64) ([]Record, error) {
	sampler, err := popsize.NewSampler(populationSize, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, numRepeats)

	for rep := 0; rep < numRepeats; rep++ {
		dd := sampler.Sample(numDraws)

		logp, err := popsize.LogProbability(dd, populationSize)
		if err != nil {
			return nil, err
		}

		records = append(records, Record{Profile: dd, LogProb: logp})
	}

	return records, nil
}

// PValue estimates a one-sided Monte Carlo p-value for ref under the
// hypothesis that the population holds populationSize members: the
// fraction of numRepeats simulated samples, length-matched to ref via
// its draw count, that are at most as probable as ref.  Ties within
// logProbTolerance score one half.  The result lies in [0, 1] and is
// reproducible for a fixed seed.
func PValue(ref popsize.Profile, populationSize, numRepeats int, seed int64) (float64, error) {
	if numRepeats <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrNoRepeats, numRepeats)
	}

	refLogP, err := popsize.LogProbability(ref, populationSize)
	if err != nil {
		return 0, err
	}

	sampler, err := popsize.NewSampler(populationSize, rand.New(rand.NewSource(seed)))
	if err != nil {
		return 0, err
	}

	numDraws := ref.Draws()

	var dd popsize.Profile
	score := 0.0

	for rep := 0; rep < numRepeats; rep++ {
		dd = sampler.SampleInto(dd, numDraws)

		logp, err := popsize.LogProbability(dd, populationSize)
		if err != nil {
			return 0, err
		}

		diff := refLogP - logp
		switch {
		case math.Abs(diff) < logProbTolerance:
			// ref and the simulated profile are equally probable.
			score += 0.5
		case diff > 0:
			// ref is more probable than the simulated profile.
			score += 1
		}
	}

	return score / float64(numRepeats), nil
}

// ScanPoint is the estimated p-value at one candidate population size.
type ScanPoint struct {
	PopulationSize int
	PValue         float64
}

// Scan estimates the p-value of ref at every candidate size.  Candidate
// i consumes an independent stream seeded seed+i, so dropping or adding
// candidates does not perturb the others.  Plotting the points against
// the sizes brackets the range of population sizes consistent with the
// observation.
func Scan(ref popsize.Profile, sizes []int, numRepeats int, seed int64) ([]ScanPoint, error) {
	points := make([]ScanPoint, 0, len(sizes))

	for i, size := range sizes {
		p, err := PValue(ref, size, numRepeats, seed+int64(i))
		if err != nil {
			return nil, fmt.Errorf("population size %d: %w", size, err)
		}

		points = append(points, ScanPoint{PopulationSize: size, PValue: p})
	}

	return points, nil
}
