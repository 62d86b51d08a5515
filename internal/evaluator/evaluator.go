// Package evaluator turns six drive discs and a combat context into an
// expected damage number.
//
// An Evaluator owns one mutable accumulator. Begin resets it, Push and Pop
// add and remove single discs (with their set bonuses) so that a search can
// move between neighbouring combinations without re-summing every slot,
// and Current evaluates whatever the accumulator holds. An Evaluator must
// not be shared between goroutines.
package evaluator

import (
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

// Options are the product constants of the damage formula.
type Options struct {
	// DisorderProcCap bounds the disorder procs counted per skill.
	DisorderProcCap float64
}

// DefaultOptions returns the standard constants.
func DefaultOptions() Options {
	return Options{DisorderProcCap: 5}
}

// Zones are the intermediate multipliers of one evaluation, reported for
// the first skill where they are per-skill.
type Zones struct {
	FinalATK     float64
	AnomalyProf  float64
	Accumulation float64
	Crit         float64
	DmgBonus     float64
	DefMult      float64
}

// Result is the outcome of evaluating one combination.
type Result struct {
	Damage float64
	Zones  Zones
}

// Evaluator computes damage for combinations drawn from one Context.
type Evaluator struct {
	ctx  *combat.Context
	opts Options

	// acc is base + discs + set bonuses; buff is external buffs, folded
	// teammate conversions and four-piece buffs.
	acc  prop.Vector
	buff prop.Vector
	// extra is the loadout-independent part of buff.
	extra prop.Vector
	// eval is per-evaluation scratch; conversions write here only.
	eval prop.Vector

	counts []int
	active []bool
	pieces int

	self      []combat.ConversionRule
	pierce    bool
	levelMult float64
	distance  float64
}

// New builds an Evaluator for ctx. The context must already be validated.
func New(ctx *combat.Context, opts Options) *Evaluator {
	if opts.DisorderProcCap <= 0 {
		opts.DisorderProcCap = DefaultOptions().DisorderProcCap
	}
	e := &Evaluator{
		ctx:    ctx,
		opts:   opts,
		counts: make([]int, len(ctx.Sets)),
		active: make([]bool, len(ctx.Sets)),
		self:   ctx.SelfConversions(),
	}
	for i := range e.active {
		e.active[i] = ctx.IsActive(i)
	}

	e.extra = ctx.Buff
	for _, r := range ctx.TeammateConversions() {
		e.extra[r.To] += r.Convert(r.SourceValue)
	}

	for _, s := range ctx.Skills {
		if s.Pierce {
			e.pierce = true
			break
		}
	}
	lvl := ctx.Fixed.AttackerLevel
	if lvl < 1 {
		lvl = 1
	}
	e.levelMult = 1 + float64(lvl-1)/59
	e.distance = ctx.Fixed.Distance
	if e.distance <= 0 {
		e.distance = 1
	}

	e.Begin()
	return e
}

// Begin opens an incremental session: the accumulator holds only the
// agent's base stats and no set is counted.
func (e *Evaluator) Begin() {
	e.acc = e.ctx.Base
	e.buff = e.extra
	for i := range e.counts {
		e.counts[i] = 0
	}
	e.pieces = 0
}

// Push adds one disc and any set bonus its set now reaches.
func (e *Evaluator) Push(d *combat.DiscCandidate) {
	e.acc.AddVec(&d.Stats)
	e.pieces++
	s := d.SetIdx
	e.counts[s]++
	switch e.counts[s] {
	case 2:
		e.acc.AddVec(&e.ctx.Sets[s].TwoPiece)
	case 4:
		if e.active[s] {
			rule := &e.ctx.Sets[s]
			e.acc.AddVec(&rule.FourPiece)
			if rule.FourPieceBuff != nil {
				e.buff.AddVec(rule.FourPieceBuff)
			}
		}
	}
}

// Pop exactly reverses a Push of the same disc.
func (e *Evaluator) Pop(d *combat.DiscCandidate) {
	s := d.SetIdx
	switch e.counts[s] {
	case 2:
		e.acc.SubVec(&e.ctx.Sets[s].TwoPiece)
	case 4:
		if e.active[s] {
			rule := &e.ctx.Sets[s]
			e.acc.SubVec(&rule.FourPiece)
			if rule.FourPieceBuff != nil {
				e.buff.SubVec(rule.FourPieceBuff)
			}
		}
	}
	e.counts[s]--
	e.pieces--
	e.acc.SubVec(&d.Stats)
}

// Accumulator returns copies of the out-of-combat and combat-buff
// aggregates.
func (e *Evaluator) Accumulator() (acc, buff prop.Vector) {
	return e.acc, e.buff
}

// SetCount is the number of pushed discs belonging to set idx.
func (e *Evaluator) SetCount(idx int) int { return e.counts[idx] }

// Valid reports whether the pushed discs satisfy the target-set
// requirement.
func (e *Evaluator) Valid() bool {
	t := e.ctx.TargetSet
	return t == combat.NoTargetSet || e.counts[t] >= 4
}

// Current evaluates the accumulator. ok is false when the combination
// does not meet the target-set requirement.
func (e *Evaluator) Current() (Result, bool) {
	if !e.Valid() {
		return Result{}, false
	}
	var r Result
	r.Damage = e.compute(&r.Zones, nil)
	return r, true
}

// Evaluate runs a whole combination from scratch. It resets the session.
func (e *Evaluator) Evaluate(discs [combat.NumSlots]*combat.DiscCandidate) (Result, bool) {
	e.Begin()
	for _, d := range discs {
		e.Push(d)
	}
	return e.Current()
}
