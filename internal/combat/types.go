// Package combat holds the loadout-independent inputs of a search: the
// agent's aggregated stats, set-bonus table, conversion rules, skills,
// enemy data and the per-slot disc candidates.
//
// A Context is assembled once per search request and is read-only from
// then on; evaluators and drivers share it by pointer.
package combat

import "github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"

// NumSlots is the number of disc slots in a loadout.
const NumSlots = 6

// NoTargetSet disables the four-piece requirement.
const NoTargetSet = -1

// DiscCandidate is one drive disc available for a slot.
type DiscCandidate struct {
	ID     string
	Slot   int // 1..6
	SetIdx int
	Stats  prop.Vector
	// Score is the cheap effective-stat heuristic used only for pruning.
	Score float64
}

// SetBonusRule is the bonus table for one disc set.
type SetBonusRule struct {
	Idx       int
	ID        string
	TwoPiece  prop.Vector
	FourPiece prop.Vector
	// FourPieceBuff is the conditional combat buff granted with the
	// four-piece bonus, nil when the set has none.
	FourPieceBuff *prop.Vector
}

// ConversionRule turns part of one stat into another.
type ConversionRule struct {
	From      prop.Index
	To        prop.Index
	Ratio     float64
	Threshold float64 // only the excess above this converts
	Max       float64
	Capped    bool
	// Teammate rules read SourceValue from a teammate's panel and are
	// folded into the context once; self rules read the agent's own
	// stats per combination.
	Teammate    bool
	SourceValue float64
}

// Convert returns the amount added to To for a source value.
func (r *ConversionRule) Convert(src float64) float64 {
	v := src - r.Threshold
	if v <= 0 {
		return 0
	}
	v *= r.Ratio
	if r.Capped && v > r.Max {
		v = r.Max
	}
	return v
}

// Skill describes one damage instance in the rotation being optimised.
type Skill struct {
	Name           string
	Ratio          float64
	Element        prop.Element
	AnomalyBuildup float64
	Tags           []prop.SkillTag
	// Pierce skills scale off sheer force and skip the defense zone.
	Pierce bool
}

// DefenseParams are the loadout-independent defense inputs.
type DefenseParams struct {
	LevelBase  float64
	EnemyDef   float64
	BaseDefRed float64
	BaseDefIgn float64
}

// FixedMultipliers are the scalar zones that do not depend on the discs.
type FixedMultipliers struct {
	ResRed            float64
	ResIgn            float64
	DmgTakenInc       float64
	StunVulnerability float64
	Distance          float64
	AttackerLevel     int
	AnomalyCritRate   float64
	AnomalyCritDmg    float64
	AnomalyDmgBonus   float64
	Defense           DefenseParams
}

// Enemy is the target dummy.
type Enemy struct {
	Res              [prop.NumElements]float64
	AnomalyThreshold [prop.NumElements]float64 // zero means the standard threshold
	CorruptionShield bool
}

// Context is the immutable input bundle for one search.
type Context struct {
	// Base already merges agent, weapon, passives and fixed equipment.
	Base prop.Vector
	// Buff holds external (non-conversion) combat buffs.
	Buff prop.Vector

	Sets        []SetBonusRule
	Conversions []ConversionRule
	Fixed       FixedMultipliers
	Skills      []Skill
	Slots       [NumSlots][]DiscCandidate

	// ActiveSets lists the set indices allowed to grant four-piece bonuses.
	ActiveSets []int
	// TargetSet, unless NoTargetSet, must appear on at least four discs.
	TargetSet int

	Enemy Enemy

	// AnomalyRatio and DisorderRatio are the attack multipliers of one
	// anomaly proc and one disorder over the evaluation window.
	AnomalyRatio  float64
	DisorderRatio float64
}
