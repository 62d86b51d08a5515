package prop

import (
	"strconv"
	"strings"
)

// Element is a damage attribute.
type Element uint8

const (
	Physical Element = iota
	Fire
	Ice
	Electric
	Ether

	NumElements
)

var elementNames = [NumElements]string{"physical", "fire", "ice", "electric", "ether"}

// game element codes
var elementCodes = [NumElements]int{200, 201, 202, 203, 205}

func (e Element) String() string {
	if e >= NumElements {
		return "unknown"
	}
	return elementNames[e]
}

// Code returns the numeric element id used by game data.
func (e Element) Code() int { return elementCodes[e] }

// ParseElement accepts a lowercase name or a numeric game code.
func ParseElement(s string) (Element, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range elementNames {
		if n == s {
			return Element(i), true
		}
	}
	if code, err := strconv.Atoi(s); err == nil {
		return ElementFromCode(code)
	}
	return 0, false
}

// ElementFromCode maps a numeric game code to an Element.
func ElementFromCode(code int) (Element, bool) {
	for i, c := range elementCodes {
		if c == code {
			return Element(i), true
		}
	}
	return 0, false
}

// DmgIndex is the element's damage-bonus slot.
func (e Element) DmgIndex() Index {
	return [NumElements]Index{PhysicalDmgPct, FireDmgPct, IceDmgPct, ElectricDmgPct, EtherDmgPct}[e]
}

// BuildupIndex is the element's anomaly-buildup bonus slot.
func (e Element) BuildupIndex() Index {
	return PhysicalBuildupPct + Index(e)
}

// BuildupResIndex is the enemy's element buildup-resistance slot.
func (e Element) BuildupResIndex() Index {
	return PhysicalBuildupResPct + Index(e)
}

// ResRedIndex is the element's resistance-reduction slot.
func (e Element) ResRedIndex() Index {
	return PhysicalResRedPct + Index(e)
}

// ResIgnIndex is the element's resistance-ignore slot.
func (e Element) ResIgnIndex() Index {
	return PhysicalResIgnPct + Index(e)
}

// AnomalyDmgIndex is the damage-bonus slot of the element's anomaly
// (burn, shock, corruption, shatter, assault).
func (e Element) AnomalyDmgIndex() Index {
	return [NumElements]Index{AssaultDmgPct, BurnDmgPct, ShatterDmgPct, ShockDmgPct, CorruptionDmgPct}[e]
}

// SkillTag is a skill capability used to look up skill-type damage bonuses.
type SkillTag uint8

const (
	TagNone SkillTag = iota
	TagNormal
	TagSpecial
	TagChain
	TagUltimate
	TagDash
	TagDodge
	TagAssist
	TagEnhanced
	TagAdditional
)

var tagNames = map[string]SkillTag{
	"normal":     TagNormal,
	"special":    TagSpecial,
	"chain":      TagChain,
	"ultimate":   TagUltimate,
	"dash":       TagDash,
	"dodge":      TagDodge,
	"assist":     TagAssist,
	"enhanced":   TagEnhanced,
	"additional": TagAdditional,
}

var tagIndex = [...]Index{
	TagNormal:     NormalAtkDmgPct,
	TagSpecial:    SpecialAtkDmgPct,
	TagChain:      ChainAtkDmgPct,
	TagUltimate:   UltimateAtkDmgPct,
	TagDash:       DashAtkDmgPct,
	TagDodge:      DodgeCounterDmgPct,
	TagAssist:     AssistAtkDmgPct,
	TagEnhanced:   EnhancedSpecialDmgPct,
	TagAdditional: AddlAtkDmgPct,
}

// ParseSkillTag accepts a tag name or its numeric id ("1".."9").
// Unknown tags map to TagNone.
func ParseSkillTag(s string) SkillTag {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := tagNames[s]; ok {
		return t
	}
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return SkillTag(s[0] - '0')
	}
	return TagNone
}

// DmgIndex returns the tag's damage-bonus slot; ok is false for TagNone.
func (t SkillTag) DmgIndex() (Index, bool) {
	if t == TagNone || int(t) >= len(tagIndex) {
		return 0, false
	}
	return tagIndex[t], true
}
