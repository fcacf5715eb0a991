// Estimating the size of a finite population from the pattern of
// repeats observed in uniform random draws with replacement.
// The profile probability is a classical occupancy computation; see
// W. Feller, An Introduction to Probability Theory and Its
// Applications, Vol. 1, Ch. II and IV.

package popsize

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrSmallPopulation means a profile claims more distinct members
	// than the hypothesized population holds.
	ErrSmallPopulation = errors.New("population smaller than distinct members observed")

	// ErrInvalidProfile means a multiplicity class has a negative count.
	ErrInvalidProfile = errors.New("invalid multiplicity profile")
)

// LogProbability returns the natural log of the probability that
// populationSize equally likely members, drawn independently with
// replacement p.Draws() times, produce exactly the profile p.
//
// The result is never positive.  The empty profile has probability one.
//
// Everything is kept in log space via math.Lgamma: factorials of
// realistic draw counts overflow float64 long before the probability
// itself does.
func LogProbability(p Profile, populationSize int) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	distinct := 0
	draws := 0
	logDenom := 0.0

	for k, count := range p {
		distinct += count
		draws += count * (k + 1)

		lgCount, _ := math.Lgamma(float64(1 + count))
		lgClass, _ := math.Lgamma(float64(2 + k))
		logDenom += lgCount + float64(count)*lgClass
	}

	if populationSize < distinct {
		return 0, fmt.Errorf("%w: population %d, distinct %d",
			ErrSmallPopulation, populationSize, distinct)
	}

	if draws == 0 {
		return 0, nil
	}

	lgDraws, _ := math.Lgamma(float64(1 + draws))
	lgPop, _ := math.Lgamma(float64(1 + populationSize))
	lgUnseen, _ := math.Lgamma(float64(1 + populationSize - distinct))

	return lgDraws - logDenom + lgPop - lgUnseen -
		float64(draws)*math.Log(float64(populationSize)), nil
}

// SequenceCount returns the number of distinct length-p.Draws() draw
// sequences that collapse to the profile p.  The count is recovered
// from log space and is exact only while it fits a float64; past that,
// work with LogProbability directly.
func SequenceCount(p Profile, populationSize int) (float64, error) {
	logp, err := LogProbability(p, populationSize)
	if err != nil {
		return 0, err
	}

	draws := p.Draws()
	if draws == 0 {
		return 1, nil
	}

	return math.Exp(logp + float64(draws)*math.Log(float64(populationSize))), nil
}
