// Copyright 2019, LightStep Inc.

package popsize

import "fmt"

// Profile is a repeat-multiplicity profile: Profile[k] counts the
// distinct population members that have been drawn exactly k+1 times.
// A profile of {27, 22, 25} says 27 members were drawn once, 22 twice,
// and 25 three times.  The zero value is the profile of zero draws.
type Profile []int

// Draws returns the total number of draws summarized by the profile.
func (p Profile) Draws() int {
	draws := 0
	for k, count := range p {
		draws += (k + 1) * count
	}
	return draws
}

// Distinct returns the number of distinct members the profile has seen.
func (p Profile) Distinct() int {
	distinct := 0
	for _, count := range p {
		distinct += count
	}
	return distinct
}

// Validate returns ErrInvalidProfile if any multiplicity class has a
// negative member count.
func (p Profile) Validate() error {
	for k, count := range p {
		if count < 0 {
			return fmt.Errorf("%w: class %d has count %d", ErrInvalidProfile, k+1, count)
		}
	}
	return nil
}

// Clone returns an independent copy of the profile.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	return append(Profile(nil), p...)
}
