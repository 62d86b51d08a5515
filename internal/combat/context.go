package combat

import (
	"errors"
	"fmt"
	"math"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

// ErrMalformed is wrapped by every Validate and Parse failure that comes
// from the context contents rather than I/O.
var ErrMalformed = errors.New("malformed combat context")

// StandardBuildupThreshold applies when the enemy does not specify one.
const StandardBuildupThreshold = 100.0

// DefaultAnomalyWindow is the evaluation window, in seconds, used to
// count anomaly ticks.
const DefaultAnomalyWindow = 3.0

// DefaultDisorderRatio is the disorder attack multiplier used when the
// context leaves it unset.
const DefaultDisorderRatio = 1.5

// LevelBase is the level-derived defense constant.
func LevelBase(level int) float64 {
	return float64(level)*10 + 100
}

// AnomalyTotalRatio is the attack multiplier an anomaly of element e
// accumulates over window seconds. Burn, shock and corruption tick;
// shatter and assault land once.
func AnomalyTotalRatio(e prop.Element, window float64) float64 {
	switch e {
	case prop.Fire:
		return math.Floor(window/0.5) * 0.5
	case prop.Electric:
		return math.Floor(window) * 1.25
	case prop.Ether:
		return math.Floor(window/0.5) * 0.625
	case prop.Ice:
		return 5.0
	case prop.Physical:
		return 7.13
	}
	return 0
}

// TeammateConversions returns the teammate rules in declaration order.
func (c *Context) TeammateConversions() []ConversionRule {
	var out []ConversionRule
	for _, r := range c.Conversions {
		if r.Teammate {
			out = append(out, r)
		}
	}
	return out
}

// SelfConversions returns the self rules in declaration order.
func (c *Context) SelfConversions() []ConversionRule {
	var out []ConversionRule
	for _, r := range c.Conversions {
		if !r.Teammate {
			out = append(out, r)
		}
	}
	return out
}

// TotalCombinations is the size of the search space. Any empty slot makes
// it zero; spaces beyond int64 saturate at math.MaxInt64.
func (c *Context) TotalCombinations() int64 {
	total := int64(1)
	for _, s := range c.Slots {
		n := int64(len(s))
		if n == 0 {
			return 0
		}
		if total > math.MaxInt64/n {
			total = math.MaxInt64
			continue
		}
		total *= n
	}
	return total
}

// IsActive reports whether set idx may grant its four-piece bonus.
func (c *Context) IsActive(idx int) bool {
	for _, a := range c.ActiveSets {
		if a == idx {
			return true
		}
	}
	return false
}

// SetID returns the external id of a set index.
func (c *Context) SetID(idx int) string {
	if idx >= 0 && idx < len(c.Sets) {
		return c.Sets[idx].ID
	}
	return fmt.Sprintf("set#%d", idx)
}

// Validate checks the contract the evaluator relies on. It is meant to run
// once before a search, never inside one.
func (c *Context) Validate() error {
	if len(c.Skills) == 0 {
		return fmt.Errorf("%w: no skills", ErrMalformed)
	}
	for i, s := range c.Skills {
		if s.Element >= prop.NumElements {
			return fmt.Errorf("%w: skill %d: bad element %d", ErrMalformed, i, s.Element)
		}
	}
	for i := range c.Sets {
		if c.Sets[i].Idx != i {
			return fmt.Errorf("%w: set %q has index %d at position %d", ErrMalformed, c.Sets[i].ID, c.Sets[i].Idx, i)
		}
	}
	for slot, cands := range c.Slots {
		for _, d := range cands {
			if d.SetIdx < 0 || d.SetIdx >= len(c.Sets) {
				return fmt.Errorf("%w: slot %d disc %q: unknown set index %d", ErrMalformed, slot+1, d.ID, d.SetIdx)
			}
		}
	}
	for i, r := range c.Conversions {
		if !r.From.Valid() || !r.To.Valid() {
			return fmt.Errorf("%w: conversion %d: stat index out of range", ErrMalformed, i)
		}
	}
	for _, a := range c.ActiveSets {
		if a < 0 || a >= len(c.Sets) {
			return fmt.Errorf("%w: active set index %d unknown", ErrMalformed, a)
		}
	}
	if c.TargetSet != NoTargetSet && (c.TargetSet < 0 || c.TargetSet >= len(c.Sets)) {
		return fmt.Errorf("%w: target set index %d unknown", ErrMalformed, c.TargetSet)
	}
	if c.Fixed.Defense.LevelBase <= 0 {
		return fmt.Errorf("%w: level base must be positive", ErrMalformed)
	}
	return nil
}
