package evaluator

import (
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

// Breakdown splits a total by damage source.
type Breakdown struct {
	Direct   float64 `json:"direct"`
	Anomaly  float64 `json:"anomaly"`
	Disorder float64 `json:"disorder"`
}

// SetSummary lists the set bonuses a loadout activates.
type SetSummary struct {
	TwoPiece  []string `json:"twoPiece"`
	FourPiece string   `json:"fourPiece,omitempty"`
}

// Build is the full, display-ready result for one combination.
type Build struct {
	Damage      float64                 `json:"damage"`
	DiscIDs     [combat.NumSlots]string `json:"discIds"`
	FinalStats  prop.Vector             `json:"-"`
	Panel       Panel                   `json:"panel"`
	CombatPanel Panel                   `json:"combatPanel"`
	Breakdown   Breakdown               `json:"breakdown"`
	Skills      []SkillDamage           `json:"skills"`
	Zones       Zones                   `json:"zones"`
	Sets        SetSummary              `json:"sets"`
	// Final is FinalStats without the zero slots, keyed by stat name.
	Final map[string]float64 `json:"finalStats"`
}

// Expand evaluates a combination with the full breakdown. It resets the
// session. ok is false for combinations that miss the target set.
func (e *Evaluator) Expand(discs [combat.NumSlots]*combat.DiscCandidate) (Build, bool) {
	e.Begin()
	for _, d := range discs {
		e.Push(d)
	}
	if !e.Valid() {
		return Build{}, false
	}

	var (
		b  Build
		tr trace
	)
	b.Damage = e.compute(&b.Zones, &tr)
	b.FinalStats = e.eval
	b.Final = e.eval.NonZero()
	b.Panel = tr.outOfCombat
	b.CombatPanel = tr.combat
	b.Skills = tr.skills
	for _, s := range tr.skills {
		b.Breakdown.Direct += s.Direct
		b.Breakdown.Anomaly += s.Anomaly
		b.Breakdown.Disorder += s.Disorder
	}
	for i, d := range discs {
		b.DiscIDs[i] = d.ID
	}
	b.Sets = e.setSummary()
	return b, true
}

func (e *Evaluator) setSummary() SetSummary {
	var s SetSummary
	for idx, n := range e.counts {
		if n >= 2 {
			s.TwoPiece = append(s.TwoPiece, e.ctx.SetID(idx))
		}
		if n >= 4 && e.active[idx] {
			s.FourPiece = e.ctx.SetID(idx)
		}
	}
	return s
}
