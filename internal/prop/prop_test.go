package prop

import "testing"

func TestCatalogueIsStable(t *testing.T) {
	if Count != 94 {
		t.Fatalf("Count = %d, want 94", Count)
	}
	cases := []struct {
		name string
		want Index
	}{
		{"HP_BASE", 0},
		{"ATK_BASE", 1},
		{"ATK_", 7},
		{"PEN_", 11},
		{"CRIT_", 16},
		{"CRIT_DMG_", 17},
		{"ANOM_PROF", 29},
		{"DMG_", 48},
		{"FIRE_DMG_", 63},
		{"DEF_RED_", 69},
		{"ENEMY_DAZE_VULNERABILITY_", 93},
	}
	for _, c := range cases {
		got, ok := Lookup(c.name)
		if !ok {
			t.Errorf("Lookup(%q) not found", c.name)
			continue
		}
		if got != c.want {
			t.Errorf("Lookup(%q) = %d, want %d", c.name, got, c.want)
		}
		if got.String() != c.name {
			t.Errorf("Index(%d).String() = %q, want %q", got, got.String(), c.name)
		}
	}
}

func TestEveryIndexRoundTrips(t *testing.T) {
	seen := map[string]bool{}
	for i := Index(0); i < Count; i++ {
		n := i.String()
		if n == "" {
			t.Fatalf("index %d has no name", i)
		}
		if seen[n] {
			t.Fatalf("name %q used twice", n)
		}
		seen[n] = true
		if got, _ := Lookup(n); got != i {
			t.Errorf("Lookup(%q) = %d, want %d", n, got, i)
		}
	}
	names := Names()
	if len(names) != int(Count) {
		t.Fatalf("Names() has %d entries, want %d", len(names), Count)
	}
	for i, n := range names {
		if n != Index(i).String() {
			t.Errorf("Names()[%d] = %q, want %q", i, n, Index(i).String())
		}
	}
}

func TestAddUnknownIsNoop(t *testing.T) {
	var v Vector
	v.Add("NOT_A_STAT", 123)
	if !v.IsZero() {
		t.Errorf("unknown name changed the vector: %v", v.NonZero())
	}
	if got := v.Get("NOT_A_STAT"); got != 0 {
		t.Errorf("Get(unknown) = %v, want 0", got)
	}

	v.Add("ATK_", 0.1)
	v.Add("ATK_", 0.05)
	if got := v[ATKPct]; got < 0.1499 || got > 0.1501 {
		t.Errorf("ATK_ = %v, want 0.15", got)
	}
}

func TestAddSubVec(t *testing.T) {
	var a, b Vector
	a[ATK] = 100
	b[ATK] = 20
	b[Crit] = 0.05
	a.AddVec(&b)
	if a[ATK] != 120 || a[Crit] != 0.05 {
		t.Fatalf("AddVec: got ATK=%v CRIT=%v", a[ATK], a[Crit])
	}
	a.SubVec(&b)
	if a[ATK] != 100 || a[Crit] != 0 {
		t.Fatalf("SubVec: got ATK=%v CRIT=%v", a[ATK], a[Crit])
	}
}

func TestElementSlots(t *testing.T) {
	cases := []struct {
		e                         Element
		dmg, buildup, res, resRed Index
	}{
		{Physical, PhysicalDmgPct, PhysicalBuildupPct, PhysicalBuildupResPct, PhysicalResRedPct},
		{Fire, FireDmgPct, FireBuildupPct, FireBuildupResPct, FireResRedPct},
		{Ice, IceDmgPct, IceBuildupPct, IceBuildupResPct, IceResRedPct},
		{Electric, ElectricDmgPct, ElectricBuildupPct, ElectricBuildupResPct, ElectricResRedPct},
		{Ether, EtherDmgPct, EtherBuildupPct, EtherBuildupResPct, EtherResRedPct},
	}
	for _, c := range cases {
		if got := c.e.DmgIndex(); got != c.dmg {
			t.Errorf("%v DmgIndex = %v, want %v", c.e, got, c.dmg)
		}
		if got := c.e.BuildupIndex(); got != c.buildup {
			t.Errorf("%v BuildupIndex = %v, want %v", c.e, got, c.buildup)
		}
		if got := c.e.BuildupResIndex(); got != c.res {
			t.Errorf("%v BuildupResIndex = %v, want %v", c.e, got, c.res)
		}
		if got := c.e.ResRedIndex(); got != c.resRed {
			t.Errorf("%v ResRedIndex = %v, want %v", c.e, got, c.resRed)
		}
	}
}

func TestParseElement(t *testing.T) {
	if e, ok := ParseElement("Fire"); !ok || e != Fire {
		t.Errorf("ParseElement(Fire) = %v, %v", e, ok)
	}
	if e, ok := ParseElement("205"); !ok || e != Ether {
		t.Errorf("ParseElement(205) = %v, %v", e, ok)
	}
	if _, ok := ParseElement("wind"); ok {
		t.Errorf("ParseElement(wind) should fail")
	}
	for e := Element(0); e < NumElements; e++ {
		if got, ok := ElementFromCode(e.Code()); !ok || got != e {
			t.Errorf("ElementFromCode(%d) = %v, %v, want %v", e.Code(), got, ok, e)
		}
	}
}

func TestParseSkillTag(t *testing.T) {
	if got := ParseSkillTag("ultimate"); got != TagUltimate {
		t.Errorf("ParseSkillTag(ultimate) = %v", got)
	}
	if got := ParseSkillTag("3"); got != TagChain {
		t.Errorf("ParseSkillTag(3) = %v", got)
	}
	if idx, ok := TagEnhanced.DmgIndex(); !ok || idx != EnhancedSpecialDmgPct {
		t.Errorf("TagEnhanced.DmgIndex = %v, %v", idx, ok)
	}
	if _, ok := ParseSkillTag("bogus").DmgIndex(); ok {
		t.Errorf("unknown tag should have no slot")
	}
}
