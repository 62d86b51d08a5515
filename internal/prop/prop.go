// Package prop defines the dense, index-addressed stat vector every other
// package does its arithmetic on.
//
// Percent stats hold fractions (0.1 is 10%); flat stats hold magnitudes.
// The catalogue is fixed for the life of the process.
package prop

import "sort"

// Index addresses one stat slot in a Vector.
type Index int

const (
	HPBase Index = iota
	ATKBase
	DEFBase
	AnomMasBase

	HP
	HPPct
	ATK
	ATKPct
	DEF
	DEFPct

	Pen
	PenPct
	SheerForce
	SheerDmgPct
	ResIgnPct
	DefIgnPct

	Crit
	CritDmg

	EnerRegenPct
	EnerRegen
	BaseEnerRegen
	EnerEffPct

	ImpactPct
	Impact
	DazeIncPct
	FeverGainPct
	ShieldPct

	AnomMas
	AnomMasPct
	AnomProf

	AnomBuildupPct
	PhysicalBuildupPct
	FireBuildupPct
	IceBuildupPct
	ElectricBuildupPct
	EtherBuildupPct

	AnomCrit
	AnomCritDmg
	AnomMVMultPct
	AddlDisorderPct
	AnomBasePct
	AnomFlatDmg

	BurnDmgPct
	ShockDmgPct
	CorruptionDmgPct
	ShatterDmgPct
	AssaultDmgPct

	CommonDmgPct
	DmgPct
	FlatDmg

	NormalAtkDmgPct
	EnhancedSpecialDmgPct
	ChainAtkDmgPct
	UltimateAtkDmgPct
	DashAtkDmgPct
	DodgeCounterDmgPct
	AssistAtkDmgPct
	AddlAtkDmgPct
	SpecialAtkDmgPct

	PhysicalDmgPct
	EtherDmgPct
	ElectricDmgPct
	IceDmgPct
	FireDmgPct

	ImpactDmgPct
	FreezeDmgPct
	PenetrationDmgPct
	DisorderDmgPct
	AnomalyDmgPct

	DefRedPct
	EnemyResPct
	EnemyResRedPct
	PhysicalResRedPct
	FireResRedPct
	IceResRedPct
	ElectricResRedPct
	EtherResRedPct
	EnemyResIgnPct
	PhysicalResIgnPct
	FireResIgnPct
	IceResIgnPct
	ElectricResIgnPct
	EtherResIgnPct

	AnomBuildupResPct
	PhysicalBuildupResPct
	FireBuildupResPct
	IceBuildupResPct
	ElectricBuildupResPct
	EtherBuildupResPct

	DazeResPct
	DazeRedPct
	DmgIncPct
	DamageTakenRedPct
	EnemyDazeVulnPct

	// Count is the number of slots in a Vector.
	Count
)

// names is indexed by Index. The spellings are the wire names used in
// context documents.
var names = [Count]string{
	HPBase:      "HP_BASE",
	ATKBase:     "ATK_BASE",
	DEFBase:     "DEF_BASE",
	AnomMasBase: "ANOM_MAS_BASE",

	HP:     "HP",
	HPPct:  "HP_",
	ATK:    "ATK",
	ATKPct: "ATK_",
	DEF:    "DEF",
	DEFPct: "DEF_",

	Pen:         "PEN",
	PenPct:      "PEN_",
	SheerForce:  "SHEER_FORCE",
	SheerDmgPct: "SHEER_DMG_",
	ResIgnPct:   "RES_IGN_",
	DefIgnPct:   "DEF_IGN_",

	Crit:    "CRIT_",
	CritDmg: "CRIT_DMG_",

	EnerRegenPct:  "ENER_REGEN_",
	EnerRegen:     "ENER_REGEN",
	BaseEnerRegen: "BASE_ENER_REGEN",
	EnerEffPct:    "ENER_EFF_",

	ImpactPct:    "IMPACT_",
	Impact:       "IMPACT",
	DazeIncPct:   "DAZE_INC_",
	FeverGainPct: "FEVER_GAIN_",
	ShieldPct:    "SHIELD_",

	AnomMas:    "ANOM_MAS",
	AnomMasPct: "ANOM_MAS_",
	AnomProf:   "ANOM_PROF",

	AnomBuildupPct:     "ANOM_BUILDUP_",
	PhysicalBuildupPct: "PHYSICAL_ANOMALY_BUILDUP_",
	FireBuildupPct:     "FIRE_ANOMALY_BUILDUP_",
	IceBuildupPct:      "ICE_ANOMALY_BUILDUP_",
	ElectricBuildupPct: "ELECTRIC_ANOMALY_BUILDUP_",
	EtherBuildupPct:    "ETHER_ANOMALY_BUILDUP_",

	AnomCrit:        "ANOM_CRIT_",
	AnomCritDmg:     "ANOM_CRIT_DMG_",
	AnomMVMultPct:   "ANOM_MV_MULT_",
	AddlDisorderPct: "ADDL_DISORDER_",
	AnomBasePct:     "ANOM_BASE_",
	AnomFlatDmg:     "ANOM_FLAT_DMG",

	BurnDmgPct:       "BURN_DMG_",
	ShockDmgPct:      "SHOCK_DMG_",
	CorruptionDmgPct: "CORRUPTION_DMG_",
	ShatterDmgPct:    "SHATTER_DMG_",
	AssaultDmgPct:    "ASSAULT_DMG_",

	CommonDmgPct: "COMMON_DMG_",
	DmgPct:       "DMG_",
	FlatDmg:      "FLAT_DMG",

	NormalAtkDmgPct:       "NORMAL_ATK_DMG_",
	EnhancedSpecialDmgPct: "ENHANCED_SPECIAL_DMG_",
	ChainAtkDmgPct:        "CHAIN_ATK_DMG_",
	UltimateAtkDmgPct:     "ULTIMATE_ATK_DMG_",
	DashAtkDmgPct:         "DASH_ATK_DMG_",
	DodgeCounterDmgPct:    "DODGE_COUNTER_DMG_",
	AssistAtkDmgPct:       "ASSIST_ATK_DMG_",
	AddlAtkDmgPct:         "ADDL_ATK_DMG_",
	SpecialAtkDmgPct:      "SPECIAL_ATK_DMG_",

	PhysicalDmgPct: "PHYSICAL_DMG_",
	EtherDmgPct:    "ETHER_DMG_",
	ElectricDmgPct: "ELECTRIC_DMG_",
	IceDmgPct:      "ICE_DMG_",
	FireDmgPct:     "FIRE_DMG_",

	ImpactDmgPct:      "IMPACT_DMG_",
	FreezeDmgPct:      "FREEZE_DMG_",
	PenetrationDmgPct: "PENETRATION_DMG_",
	DisorderDmgPct:    "DISORDER_DMG_",
	AnomalyDmgPct:     "ANOMALY_DMG_",

	DefRedPct:         "DEF_RED_",
	EnemyResPct:       "ENEMY_RES_",
	EnemyResRedPct:    "ENEMY_RES_RED_",
	PhysicalResRedPct: "PHYSICAL_RES_RED_",
	FireResRedPct:     "FIRE_RES_RED_",
	IceResRedPct:      "ICE_RES_RED_",
	ElectricResRedPct: "ELECTRIC_RES_RED_",
	EtherResRedPct:    "ETHER_RES_RED_",
	EnemyResIgnPct:    "ENEMY_RES_IGN_",
	PhysicalResIgnPct: "PHYSICAL_RES_IGN_",
	FireResIgnPct:     "FIRE_RES_IGN_",
	IceResIgnPct:      "ICE_RES_IGN_",
	ElectricResIgnPct: "ELECTRIC_RES_IGN_",
	EtherResIgnPct:    "ETHER_RES_IGN_",

	AnomBuildupResPct:     "ANOM_BUILDUP_RES_",
	PhysicalBuildupResPct: "PHYSICAL_ANOM_BUILDUP_RES_",
	FireBuildupResPct:     "FIRE_ANOM_BUILDUP_RES_",
	IceBuildupResPct:      "ICE_ANOM_BUILDUP_RES_",
	ElectricBuildupResPct: "ELECTRIC_ANOM_BUILDUP_RES_",
	EtherBuildupResPct:    "ETHER_ANOM_BUILDUP_RES_",

	DazeResPct:        "DAZE_RES_",
	DazeRedPct:        "DAZE_RED_",
	DmgIncPct:         "DMG_INC_",
	DamageTakenRedPct: "DAMAGE_TAKEN_RED_",
	EnemyDazeVulnPct:  "ENEMY_DAZE_VULNERABILITY_",
}

var byName = func() map[string]Index {
	m := make(map[string]Index, Count)
	for i, n := range names {
		m[n] = Index(i)
	}
	return m
}()

// Lookup returns the slot for a stat name.
func Lookup(name string) (Index, bool) {
	i, ok := byName[name]
	return i, ok
}

// Valid reports whether i addresses a slot.
func (i Index) Valid() bool { return i >= 0 && i < Count }

func (i Index) String() string {
	if !i.Valid() {
		return "INVALID"
	}
	return names[i]
}

// Names returns the full catalogue in slot order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Vector is one value per catalogued stat.
type Vector [Count]float64

// Add adds v into the named slot. Unknown names are ignored.
func (p *Vector) Add(name string, v float64) {
	if i, ok := byName[name]; ok {
		p[i] += v
	}
}

// Get reads the named slot; unknown names read as zero.
func (p *Vector) Get(name string) float64 {
	if i, ok := byName[name]; ok {
		return p[i]
	}
	return 0
}

// AddVec adds o into p slot by slot.
func (p *Vector) AddVec(o *Vector) {
	for i := range p {
		p[i] += o[i]
	}
}

// SubVec subtracts o from p slot by slot.
func (p *Vector) SubVec(o *Vector) {
	for i := range p {
		p[i] -= o[i]
	}
}

// IsZero reports whether every slot is zero.
func (p *Vector) IsZero() bool {
	for _, v := range p {
		if v != 0 {
			return false
		}
	}
	return true
}

// NonZero returns the populated slots keyed by name, for display.
func (p *Vector) NonZero() map[string]float64 {
	out := make(map[string]float64)
	for i, v := range p {
		if v != 0 {
			out[names[i]] = v
		}
	}
	return out
}

// SortedNames returns the keys of m in catalogue order.
func SortedNames(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		ia, oka := byName[keys[a]]
		ib, okb := byName[keys[b]]
		if oka && okb {
			return ia < ib
		}
		if oka != okb {
			return oka
		}
		return keys[a] < keys[b]
	})
	return keys
}
