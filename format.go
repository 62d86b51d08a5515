package main

import (
	"fmt"
	"strings"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/evaluator"
	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

// FormatBuild produces a readable breakdown of one ranked build.
func FormatBuild(rank int, b *evaluator.Build) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "第%d套：伤害 %.1f (直伤 %.1f / 异常 %.1f / 紊乱 %.1f)\n",
		rank, b.Damage, b.Breakdown.Direct, b.Breakdown.Anomaly, b.Breakdown.Disorder)
	fmt.Fprintf(&sb, "驱动盘：%s\n", strings.Join(b.DiscIDs[:], " | "))

	sets := append([]string(nil), b.Sets.TwoPiece...)
	if b.Sets.FourPiece != "" {
		sets = append(sets, b.Sets.FourPiece+"(4)")
	}
	if len(sets) > 0 {
		fmt.Fprintf(&sb, "套装：%s\n", strings.Join(sets, "；"))
	}

	fmt.Fprintf(&sb, "局外：攻击 %.0f 生命 %.0f 防御 %.0f 冲击 %.0f\n",
		b.Panel.ATK, b.Panel.HP, b.Panel.DEF, b.Panel.Impact)
	fmt.Fprintf(&sb, "局内：攻击 %.0f 生命 %.0f 防御 %.0f 冲击 %.0f\n",
		b.CombatPanel.ATK, b.CombatPanel.HP, b.CombatPanel.DEF, b.CombatPanel.Impact)
	fmt.Fprintf(&sb, "乘区：暴击 %.3f 增伤 %.3f 防御 %.3f 精通 %.2f 积蓄 %.3f\n",
		b.Zones.Crit, b.Zones.DmgBonus, b.Zones.DefMult, b.Zones.AnomalyProf, b.Zones.Accumulation)

	for _, s := range b.Skills {
		fmt.Fprintf(&sb, "技能：%s -> %.1f", s.Name, s.Direct)
		if s.Anomaly > 0 || s.Disorder > 0 {
			fmt.Fprintf(&sb, " + %.1f + %.1f", s.Anomaly, s.Disorder)
		}
		sb.WriteString("\n")
	}

	var parts []string
	for _, name := range prop.SortedNames(b.Final) {
		parts = append(parts, fmt.Sprintf("%s=%.4g", name, b.Final[name]))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&sb, "属性：%s\n", strings.Join(parts, " "))
	}
	return sb.String()
}

// FormatResult joins every build's breakdown, best first.
func FormatResult(builds []evaluator.Build) string {
	var sb strings.Builder
	for i := range builds {
		if i > 0 {
			sb.WriteString("===================\n")
		}
		sb.WriteString(FormatBuild(i+1, &builds[i]))
	}
	return sb.String()
}
