package combat

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/kawayiYokami/zzz-optimizer-sub001/internal/prop"
)

//go:embed schema.json
var schemaJSON string

var contextSchema = jsonschema.MustCompileString("context.schema.json", schemaJSON)

// Load reads and parses a context document from disk.
func Load(path string) (*Context, error) {
	return LoadWindow(path, DefaultAnomalyWindow)
}

// LoadWindow is Load with a default anomaly window for documents that do
// not set combat.window_s.
func LoadWindow(path string, window float64) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	c, err := ParseWindow(data, window)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a Context from a JSON document.
func Parse(data []byte) (*Context, error) {
	return ParseWindow(data, DefaultAnomalyWindow)
}

// ParseWindow is Parse with an explicit default anomaly window.
//
// Stat names are resolved through prop; unknown names are dropped.
// Set ids become dense indices in the order they are first seen, sets
// first and then discs. A disc without an explicit score gets its
// EffectiveScore.
func ParseWindow(data []byte, window float64) (*Context, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := contextSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	doc := gjson.ParseBytes(data)
	c := &Context{TargetSet: NoTargetSet}

	level := int(doc.Get("agent.level").Int())
	c.Base = readStats(doc.Get("agent.stats"))
	c.Buff = readStats(doc.Get("buffs"))

	if err := readEnemy(doc.Get("enemy"), level, c); err != nil {
		return nil, err
	}
	readCombat(doc.Get("combat"), c)

	var perr error
	doc.Get("skills").ForEach(func(_, v gjson.Result) bool {
		s, err := readSkill(v)
		if err != nil {
			perr = err
			return false
		}
		c.Skills = append(c.Skills, s)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	setIdx := map[string]int{}
	addSet := func(id string) int {
		if i, ok := setIdx[id]; ok {
			return i
		}
		i := len(c.Sets)
		setIdx[id] = i
		c.Sets = append(c.Sets, SetBonusRule{Idx: i, ID: id})
		return i
	}
	doc.Get("sets").ForEach(func(_, v gjson.Result) bool {
		i := addSet(v.Get("id").String())
		rule := &c.Sets[i]
		rule.TwoPiece = readStats(v.Get("two_piece"))
		rule.FourPiece = readStats(v.Get("four_piece"))
		if b := v.Get("four_piece_buff"); b.Exists() {
			buff := readStats(b)
			rule.FourPieceBuff = &buff
		}
		return true
	})

	doc.Get("conversions").ForEach(func(_, v gjson.Result) bool {
		r, err := readConversion(v)
		if err != nil {
			perr = err
			return false
		}
		c.Conversions = append(c.Conversions, r)
		return true
	})
	if perr != nil {
		return nil, perr
	}

	effective := map[string]bool{}
	doc.Get("effective_stats").ForEach(func(_, v gjson.Result) bool {
		effective[v.String()] = true
		return true
	})
	mainScore := 10.0
	if v := doc.Get("main_stat_score"); v.Exists() {
		mainScore = v.Float()
	}

	pool := readPoolFilter(doc)
	doc.Get("discs").ForEach(func(_, v gjson.Result) bool {
		d := DiscCandidate{
			ID:     v.Get("id").String(),
			Slot:   int(v.Get("slot").Int()),
			SetIdx: addSet(v.Get("set").String()),
		}
		main := v.Get("main.stat").String()
		if !pool.keep(d.ID, d.Slot, main) {
			return true
		}
		if main != "" {
			d.Stats.Add(main, v.Get("main.value").Float())
		}
		var subs []string
		v.Get("subs").ForEach(func(k, sv gjson.Result) bool {
			d.Stats.Add(k.String(), sv.Float())
			subs = append(subs, k.String())
			return true
		})
		if s := v.Get("score"); s.Exists() {
			d.Score = s.Float()
		} else {
			d.Score = EffectiveScore(main, subs, effective, mainScore)
		}
		c.Slots[d.Slot-1] = append(c.Slots[d.Slot-1], d)
		return true
	})

	for slot, id := range pool.pinned {
		if len(c.Slots[slot-1]) == 0 {
			return nil, fmt.Errorf("%w: pinned disc %q is not in slot %d", ErrMalformed, id, slot)
		}
	}

	doc.Get("active_sets").ForEach(func(_, v gjson.Result) bool {
		if i, ok := setIdx[v.String()]; ok {
			c.ActiveSets = append(c.ActiveSets, i)
		}
		return true
	})
	if t := doc.Get("target_set"); t.Exists() && t.String() != "" {
		i, ok := setIdx[t.String()]
		if !ok {
			return nil, fmt.Errorf("%w: target set %q is not a known set", ErrMalformed, t.String())
		}
		c.TargetSet = i
	}

	if !doc.Get("combat.anomaly_ratio").Exists() {
		if w := doc.Get("combat.window_s"); w.Exists() {
			window = w.Float()
		}
		c.AnomalyRatio = AnomalyTotalRatio(c.Skills[0].Element, window)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// poolFilter narrows the candidate discs before the search sees them.
type poolFilter struct {
	// mains[slot] lists the main stats allowed in slots 4..6
	mains   map[int]map[string]bool
	pinned  map[int]string
	exclude map[string]bool
}

func readPoolFilter(doc gjson.Result) poolFilter {
	f := poolFilter{
		mains:   map[int]map[string]bool{},
		pinned:  map[int]string{},
		exclude: map[string]bool{},
	}
	doc.Get("main_stat_filters").ForEach(func(k, v gjson.Result) bool {
		allowed := map[string]bool{}
		v.ForEach(func(_, s gjson.Result) bool {
			allowed[s.String()] = true
			return true
		})
		f.mains[int(k.Int())] = allowed
		return true
	})
	doc.Get("pinned").ForEach(func(k, v gjson.Result) bool {
		f.pinned[int(k.Int())] = v.String()
		return true
	})
	doc.Get("exclude").ForEach(func(_, v gjson.Result) bool {
		f.exclude[v.String()] = true
		return true
	})
	return f
}

func (f poolFilter) keep(id string, slot int, main string) bool {
	if f.exclude[id] {
		return false
	}
	if p, ok := f.pinned[slot]; ok && p != id {
		return false
	}
	if allowed, ok := f.mains[slot]; ok && !allowed[main] {
		return false
	}
	return true
}

func readStats(v gjson.Result) prop.Vector {
	var out prop.Vector
	v.ForEach(func(k, val gjson.Result) bool {
		out.Add(k.String(), val.Float())
		return true
	})
	return out
}

func readElement(v gjson.Result) (prop.Element, error) {
	if !v.Exists() {
		return prop.Physical, nil
	}
	var (
		e  prop.Element
		ok bool
	)
	if v.Type == gjson.Number {
		e, ok = prop.ElementFromCode(int(v.Int()))
	} else {
		e, ok = prop.ParseElement(v.String())
	}
	if !ok {
		return 0, fmt.Errorf("%w: unknown element %s", ErrMalformed, v.Raw)
	}
	return e, nil
}

func readEnemy(v gjson.Result, agentLevel int, c *Context) error {
	c.Enemy.CorruptionShield = v.Get("corruption_shield").Bool()
	for _, field := range []struct {
		key string
		dst *[prop.NumElements]float64
	}{
		{"res", &c.Enemy.Res},
		{"anomaly_threshold", &c.Enemy.AnomalyThreshold},
	} {
		var ferr error
		v.Get(field.key).ForEach(func(k, val gjson.Result) bool {
			e, ok := prop.ParseElement(k.String())
			if !ok {
				ferr = fmt.Errorf("%w: enemy.%s: unknown element %q", ErrMalformed, field.key, k.String())
				return false
			}
			field.dst[e] = val.Float()
			return true
		})
		if ferr != nil {
			return ferr
		}
	}

	c.Fixed.AttackerLevel = agentLevel
	c.Fixed.ResRed = v.Get("res_red").Float()
	c.Fixed.ResIgn = v.Get("res_ign").Float()
	c.Fixed.DmgTakenInc = v.Get("dmg_taken").Float()
	c.Fixed.StunVulnerability = v.Get("stun_vulnerability").Float()
	c.Fixed.Defense = DefenseParams{
		LevelBase:  LevelBase(agentLevel),
		EnemyDef:   v.Get("defense").Float(),
		BaseDefRed: v.Get("def_red").Float(),
		BaseDefIgn: v.Get("def_ign").Float(),
	}
	return nil
}

func readCombat(v gjson.Result, c *Context) {
	c.Fixed.Distance = 1
	if d := v.Get("distance"); d.Exists() {
		c.Fixed.Distance = d.Float()
	}
	c.Fixed.AnomalyCritRate = v.Get("anomaly_crit_rate").Float()
	c.Fixed.AnomalyCritDmg = v.Get("anomaly_crit_dmg").Float()
	c.Fixed.AnomalyDmgBonus = v.Get("anomaly_dmg_bonus").Float()
	c.AnomalyRatio = v.Get("anomaly_ratio").Float()
	c.DisorderRatio = DefaultDisorderRatio
	if d := v.Get("disorder_ratio"); d.Exists() {
		c.DisorderRatio = d.Float()
	}
}

func readSkill(v gjson.Result) (Skill, error) {
	e, err := readElement(v.Get("element"))
	if err != nil {
		return Skill{}, err
	}
	s := Skill{
		Name:           v.Get("name").String(),
		Ratio:          v.Get("ratio").Float(),
		Element:        e,
		AnomalyBuildup: v.Get("anomaly_buildup").Float(),
		Pierce:         v.Get("pierce").Bool(),
	}
	v.Get("tags").ForEach(func(_, t gjson.Result) bool {
		if tag := prop.ParseSkillTag(t.String()); tag != prop.TagNone {
			s.Tags = append(s.Tags, tag)
		}
		return true
	})
	return s, nil
}

func readConversion(v gjson.Result) (ConversionRule, error) {
	from, ok := prop.Lookup(v.Get("from").String())
	if !ok {
		return ConversionRule{}, fmt.Errorf("%w: conversion source %q unknown", ErrMalformed, v.Get("from").String())
	}
	to, ok := prop.Lookup(v.Get("to").String())
	if !ok {
		return ConversionRule{}, fmt.Errorf("%w: conversion target %q unknown", ErrMalformed, v.Get("to").String())
	}
	r := ConversionRule{
		From:        from,
		To:          to,
		Ratio:       v.Get("ratio").Float(),
		Threshold:   v.Get("threshold").Float(),
		Teammate:    v.Get("teammate").Bool(),
		SourceValue: v.Get("source_value").Float(),
	}
	if m := v.Get("max"); m.Exists() {
		r.Max = m.Float()
		r.Capped = true
	}
	return r, nil
}
