package evaluator

import (
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/combat"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

// Panel is the four headline attributes of a stat sheet.
type Panel struct {
	ATK    float64 `json:"atk"`
	HP     float64 `json:"hp"`
	DEF    float64 `json:"def"`
	Impact float64 `json:"impact"`
}

// SkillDamage is one skill's share of the total.
type SkillDamage struct {
	Name     string  `json:"name"`
	Direct   float64 `json:"direct"`
	Anomaly  float64 `json:"anomaly"`
	Disorder float64 `json:"disorder"`
}

// trace collects the optional breakdown of compute.
type trace struct {
	outOfCombat Panel
	combat      Panel
	skills      []SkillDamage
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compute evaluates the accumulator. It fills z and, when tr is non-nil,
// the per-skill breakdown. Only e.eval is written.
func (e *Evaluator) compute(z *Zones, tr *trace) float64 {
	ctx := e.ctx
	acc, buff, ev := &e.acc, &e.buff, &e.eval

	*ev = *acc
	ev.AddVec(buff)

	// out-of-combat panel from the disc-side aggregate only
	baseATK, baseHP, baseDEF, baseImp := acc[prop.ATKBase], acc[prop.HPBase], acc[prop.DEFBase], acc[prop.Impact]
	atk1 := baseATK*(1+acc[prop.ATKPct]) + acc[prop.ATK]
	hp1 := baseHP*(1+acc[prop.HPPct]) + acc[prop.HP]
	def1 := baseDEF*(1+acc[prop.DEFPct]) + acc[prop.DEF]
	imp1 := baseImp * (1 + acc[prop.ImpactPct])

	// combat buffs on top
	atk2 := atk1*(1+buff[prop.ATKPct]) + buff[prop.ATK]
	hp2 := hp1*(1+buff[prop.HPPct]) + buff[prop.HP]
	def2 := def1*(1+buff[prop.DEFPct]) + buff[prop.DEF]
	imp2 := imp1*(1+buff[prop.ImpactPct]) + buff[prop.Impact]

	atk, hp, def, imp := atk2, hp2, def2, imp2
	for i := range e.self {
		r := &e.self[i]
		var src float64
		switch r.From {
		case prop.ATK, prop.ATKBase:
			src = atk
		case prop.HP, prop.HPBase:
			src = hp
		case prop.DEF, prop.DEFBase:
			src = def
		case prop.Impact:
			src = imp
		default:
			src = ev[r.From]
		}
		v := r.Convert(src)
		switch r.To {
		case prop.ATK:
			atk += v
		case prop.HP:
			hp += v
		case prop.DEF:
			def += v
		case prop.Impact:
			imp += v
		case prop.ATKPct:
			ev[r.To] += v
			atk += baseATK * v
		case prop.HPPct:
			ev[r.To] += v
			hp += baseHP * v
		case prop.DEFPct:
			ev[r.To] += v
			def += baseDEF * v
		case prop.ImpactPct:
			ev[r.To] += v
			imp += baseImp * v
		default:
			ev[r.To] += v
		}
	}

	if e.pierce {
		ev[prop.Pen] = 0
		ev[prop.PenPct] = 0
		ev[prop.SheerForce] += hp2*0.1 + atk2*0.3
	}

	ev[prop.ATK] = atk
	ev[prop.HP] = hp
	ev[prop.DEF] = def
	ev[prop.Impact] = imp

	critRate := clamp(ev[prop.Crit], 0, 1)
	critZone := 1 + critRate*ev[prop.CritDmg]

	dp := &ctx.Fixed.Defense
	enemyDef := dp.EnemyDef
	if ctx.Enemy.CorruptionShield {
		enemyDef *= 2
	}
	defRed := dp.BaseDefRed + ev[prop.DefRedPct]
	defIgn := dp.BaseDefIgn + ev[prop.DefIgnPct]
	effDef := enemyDef*max(0, 1-defRed-defIgn)*(1-ev[prop.PenPct]) - ev[prop.Pen]
	if effDef < 0 {
		effDef = 0
	}
	defMult := dp.LevelBase / (effDef + dp.LevelBase)

	fx := &ctx.Fixed
	dmgTaken := 1 + fx.DmgTakenInc + ev[prop.DmgIncPct]
	stun := 1 + fx.StunVulnerability + ev[prop.EnemyDazeVulnPct]
	distance := e.distance
	prof := clamp(ev[prop.AnomProf]/100, 0, 10)
	mastery := ev[prop.AnomMas]
	if b := ev[prop.AnomMasBase]; b > 0 {
		mastery += b * (1 + ev[prop.AnomMasPct])
	}
	masteryZone := 1.0
	if mastery > 0 {
		masteryZone = mastery / 100
	}
	// anomaly crit from fixed inputs plus buffs and discs
	anomCrit := 1 + clamp(fx.AnomalyCritRate+ev[prop.AnomCrit], 0, 1)*(fx.AnomalyCritDmg+ev[prop.AnomCritDmg])

	var total float64
	for i := range ctx.Skills {
		s := &ctx.Skills[i]
		el := s.Element

		dmgBonus := 1 + ev[prop.DmgPct] + ev[el.DmgIndex()]
		for _, t := range s.Tags {
			if idx, ok := t.DmgIndex(); ok {
				dmgBonus += ev[idx]
			}
		}

		res := clamp(1-ctx.Enemy.Res[el]+fx.ResRed+fx.ResIgn+
			ev[prop.EnemyResRedPct]+ev[el.ResRedIndex()]+
			ev[prop.EnemyResIgnPct]+ev[prop.ResIgnPct]+ev[el.ResIgnIndex()], 0, 2)
		universal := res * dmgTaken * stun

		var direct float64
		if s.Pierce {
			direct = ev[prop.SheerForce] * s.Ratio * dmgBonus * critZone * (1 + ev[prop.SheerDmgPct])
		} else {
			direct = atk * s.Ratio * dmgBonus * critZone * defMult
		}
		direct *= universal * distance

		accum := masteryZone * (1 + ev[prop.AnomBuildupPct] + ev[el.BuildupIndex()]) *
			(1 - ev[prop.AnomBuildupResPct] - ev[el.BuildupResIndex()]) * distance
		if accum < 0 {
			accum = 0
		}

		var anomaly, disorder float64
		if s.AnomalyBuildup > 0 {
			threshold := ctx.Enemy.AnomalyThreshold[el]
			if threshold <= 0 {
				threshold = combat.StandardBuildupThreshold
			}
			procs := clamp(s.AnomalyBuildup*accum/threshold, 0, 1)
			if procs > 0 {
				anomDmg := 1 + fx.AnomalyDmgBonus + ev[prop.AnomalyDmgPct] + ev[el.AnomalyDmgIndex()]
				chain := dmgBonus * prof * anomDmg * anomCrit * e.levelMult * defMult * universal
				anomaly = atk * ctx.AnomalyRatio * chain * procs
				disorder = atk * ctx.DisorderRatio * chain * min(procs, e.opts.DisorderProcCap)
			}
		}

		total += direct + anomaly + disorder

		if i == 0 {
			z.Accumulation = accum
			z.DmgBonus = dmgBonus
		}
		if tr != nil {
			tr.skills = append(tr.skills, SkillDamage{Name: s.Name, Direct: direct, Anomaly: anomaly, Disorder: disorder})
		}
	}

	z.FinalATK = atk
	z.AnomalyProf = prof
	z.Crit = critZone
	z.DefMult = defMult

	if tr != nil {
		tr.outOfCombat = Panel{ATK: atk1, HP: hp1, DEF: def1, Impact: imp1}
		tr.combat = Panel{ATK: atk, HP: hp, DEF: def, Impact: imp}
	}
	return total
}
