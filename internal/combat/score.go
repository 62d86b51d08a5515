package combat

// flatTwin maps a flat stat to the percent stat it stands in for.
var flatTwin = map[string]string{
	"HP":  "HP_",
	"ATK": "ATK_",
	"DEF": "DEF_",
	"PEN": "PEN_",
}

// EffectiveScore is the pruning heuristic for one disc: an effective main
// stat is worth mainScore, each effective substat is worth 1, and a flat
// stat whose percent twin is effective is worth a third of that.
func EffectiveScore(main string, subs []string, effective map[string]bool, mainScore float64) float64 {
	if len(effective) == 0 {
		return 0
	}
	score := statScore(main, effective, mainScore)
	for _, s := range subs {
		if s == main {
			continue
		}
		score += statScore(s, effective, 1)
	}
	return score
}

func statScore(stat string, effective map[string]bool, weight float64) float64 {
	if stat == "" {
		return 0
	}
	if effective[stat] {
		return weight
	}
	if pct, ok := flatTwin[stat]; ok && effective[pct] {
		return weight / 3
	}
	return 0
}
