package model

import "fmt"

// Sequence describes the geometric progression of population sizes a sweep
// visits: base^minExponent, base^(minExponent+1), …, base^maxExponent.
type Sequence struct {
	Base        int `json:"base" yaml:"base"`
	MinExponent int `json:"minExponent" yaml:"minExponent"`
	MaxExponent int `json:"maxExponent" yaml:"maxExponent"`
}

// Validate returns an error describing invalid sequence settings or nil.
func (s Sequence) Validate() error {
	if s.Base < 2 {
		return fmt.Errorf("sequence base must be >= 2, had: %d", s.Base)
	}
	if s.MinExponent < 0 {
		return fmt.Errorf("sequence minExponent must be >= 0, had: %d", s.MinExponent)
	}
	if s.MaxExponent < s.MinExponent {
		return fmt.Errorf("sequence maxExponent must be >= minExponent, had: %d < %d", s.MaxExponent, s.MinExponent)
	}
	if s.populationAt(s.MaxExponent) <= 0 {
		return fmt.Errorf("sequence base %d exponent %d overflows", s.Base, s.MaxExponent)
	}
	return nil
}

// Populations expands the progression into concrete population sizes in
// strictly ascending order.
func (s Sequence) Populations() []int {
	var populations []int
	for exponent := s.MinExponent; exponent <= s.MaxExponent; exponent++ {
		populations = append(populations, s.populationAt(exponent))
	}
	return populations
}

func (s Sequence) populationAt(exponent int) int {
	population := 1
	for i := 0; i < exponent; i++ {
		population *= s.Base
	}
	return population
}
