// Copyright 2019, LightStep Inc.

// Package mle computes the maximum-likelihood population size implied
// by a multiplicity profile.  Unlike the Monte Carlo significance test
// it needs no simulation: with u distinct members over t draws, the
// log-likelihood is stationary where n*(H(n) - H(n-u)) = t, H being
// the harmonic number extended to the reals through the digamma
// function.
package mle

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/lightstep/popsize"
)

var (
	// ErrNoDraws means the profile summarizes zero draws.
	ErrNoDraws = errors.New("no draws observed")

	// ErrAllDistinct means every draw hit a fresh member.  The
	// likelihood then grows with the population size without bound and
	// has no finite maximum.
	ErrAllDistinct = errors.New("no member was drawn more than once")
)

const (
	// Upper root bracket, as a multiple of the draw count.
	rootBracketFactor = 1e5

	rootTolerance = 1e-9
	maxIterations = 200
)

// Estimate returns the population size under which observing p is most
// probable.
func Estimate(p popsize.Profile) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return EstimateCounts(p.Distinct(), p.Draws())
}

// EstimateCounts is Estimate for callers that only kept the two
// sufficient statistics: the distinct member count and the total draw
// count.
func EstimateCounts(distinct, draws int) (float64, error) {
	if draws <= 0 {
		return 0, ErrNoDraws
	}
	if distinct > draws || distinct <= 0 {
		return 0, fmt.Errorf("%w: distinct %d of %d draws",
			popsize.ErrInvalidProfile, distinct, draws)
	}
	if distinct == draws {
		return 0, ErrAllDistinct
	}

	u := float64(distinct)
	t := float64(draws)

	f := func(n float64) float64 {
		return n*(harmonic(n)-harmonic(n-u)) - t
	}

	// f decreases from u*H(u)-t at n=u toward u-t < 0.  When even the
	// smallest admissible population leaves f non-positive, the
	// likelihood only falls past it and the boundary is the estimate.
	if f(u) <= 0 {
		return u, nil
	}

	return brent(f, u, t*rootBracketFactor)
}

// harmonic returns the s'th harmonic number, extended to real s via
// the digamma function.
func harmonic(s float64) float64 {
	return mathext.Digamma(s+1) + eulerGamma
}

const eulerGamma = 0.5772156649015328606065120900824024310421593359399

// brent locates a root of f on [a, b] by Brent's method, combining
// inverse quadratic interpolation, the secant step, and bisection.
// f(a) and f(b) must have opposite signs.
func brent(f func(float64) float64, a, b float64) (float64, error) {
	fa, fb := f(a), f(b)

	if fa == 0 {
		return a, nil
	}
	if fb == 0 {
		return b, nil
	}
	if (fa > 0) == (fb > 0) {
		return 0, fmt.Errorf("root not bracketed by [%g, %g]", a, b)
	}

	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	d := 0.0
	bisected := true

	for i := 0; i < maxIterations; i++ {
		tol := rootTolerance * (1 + math.Abs(b))
		if fb == 0 || math.Abs(b-a) < tol {
			return b, nil
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation.
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant step.
			s = b - fb*(b-a)/(fb-fa)
		}

		lo, hi := (3*a+b)/4, b
		if lo > hi {
			lo, hi = hi, lo
		}

		fallback := s < lo || s > hi ||
			(bisected && math.Abs(s-b) >= math.Abs(b-c)/2) ||
			(!bisected && math.Abs(s-b) >= math.Abs(c-d)/2) ||
			(bisected && math.Abs(b-c) < tol) ||
			(!bisected && math.Abs(c-d) < tol)
		if fallback {
			s = (a + b) / 2
		}
		bisected = fallback

		fs := f(s)
		d, c, fc = c, b, fb

		if (fa > 0) != (fs > 0) {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}

		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return b, nil
}
