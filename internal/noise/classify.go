// classify.go - Celestial body classification from hash digits.
//
// The thresholds partition the base-256 digit space into dead space, body
// types, size classes and comet assignments. Every helper is a total if/else
// cascade with a single return: classification runs over values that may be
// secret-shared, so every code path must be evaluated unconditionally and
// no branch may exit early.

package noise

// BodyType identifies the mutually exclusive celestial body variants.
type BodyType uint8

const (
	Planet BodyType = iota
	Quasar
	SpacetimeRip
	AsteroidBelt
)

// CometBoost names the single stat doubled by one comet.
type CometBoost uint8

const (
	BoostShipCapacity CometBoost = iota
	BoostMetalCapacity
	BoostShipGenSpeed
	BoostMetalGenSpeed
	BoostRange
	BoostLaunchVelocity

	// NumBoosts is the size of the comet selection domain.
	NumBoosts = 6
)

// Thresholds are the ordered digit cut-points fixed at game creation.
// Digit 0 decides dead space, digit 1 the body type, digit 2 the size,
// digit 3 the comet count and digits 4-5 the comet boost assignments.
type Thresholds struct {
	DeadSpace    uint8 `json:"dead_space_threshold" yaml:"dead_space_threshold"`
	Planet       uint8 `json:"planet_threshold" yaml:"planet_threshold"`
	Quasar       uint8 `json:"quasar_threshold" yaml:"quasar_threshold"`
	SpacetimeRip uint8 `json:"spacetime_rip_threshold" yaml:"spacetime_rip_threshold"`
	Size1        uint8 `json:"size_threshold_1" yaml:"size_threshold_1"`
	Size2        uint8 `json:"size_threshold_2" yaml:"size_threshold_2"`
	Size3        uint8 `json:"size_threshold_3" yaml:"size_threshold_3"`
	Size4        uint8 `json:"size_threshold_4" yaml:"size_threshold_4"`
	Size5        uint8 `json:"size_threshold_5" yaml:"size_threshold_5"`
	CometOne     uint8 `json:"comet_one_threshold" yaml:"comet_one_threshold"`
	CometTwo     uint8 `json:"comet_two_threshold" yaml:"comet_two_threshold"`
}

// DefaultThresholds returns the standard classification table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DeadSpace:    10,
		Planet:       100,
		Quasar:       160,
		SpacetimeRip: 210,
		Size1:        50,
		Size2:        120,
		Size3:        180,
		Size4:        220,
		Size5:        245,
		CometOne:     216,
		CometTwo:     242,
	}
}

// IsBody reports whether digit 0 of the hash clears the dead-space threshold.
func (t Thresholds) IsBody(d0 uint8) bool {
	var body bool
	if d0 >= t.DeadSpace {
		body = true
	} else {
		body = false
	}
	return body
}

// Body classifies digit 1 of the hash into a body type.
func (t Thresholds) Body(d1 uint8) BodyType {
	var bt BodyType
	if d1 < t.Planet {
		bt = Planet
	} else if d1 < t.Quasar {
		bt = Quasar
	} else if d1 < t.SpacetimeRip {
		bt = SpacetimeRip
	} else {
		bt = AsteroidBelt
	}
	return bt
}

// Size classifies digit 2 of the hash into a size class 1 (Miniscule)
// through 6 (Gargantuan).
func (t Thresholds) Size(d2 uint8) uint8 {
	var size uint8
	if d2 < t.Size1 {
		size = 1
	} else if d2 < t.Size2 {
		size = 2
	} else if d2 < t.Size3 {
		size = 3
	} else if d2 < t.Size4 {
		size = 4
	} else if d2 < t.Size5 {
		size = 5
	} else {
		size = 6
	}
	return size
}

// CometCount classifies digit 3 of the hash into 0, 1, or 2 active comets.
func (t Thresholds) CometCount(d3 uint8) uint8 {
	var n uint8
	if d3 <= t.CometOne {
		n = 0
	} else if d3 <= t.CometTwo {
		n = 1
	} else {
		n = 2
	}
	return n
}

// BoostFromDigit maps a digit to one of the six comet boosts.
func BoostFromDigit(d uint8) CometBoost {
	return CometBoost(d % NumBoosts)
}

// Comets selects the active comet boosts from digits 4 and 5.
// When two comets are active and both digits land on the same boost, the
// second digit is perturbed by one before re-selection so the two comets
// never double the same stat.
func (t Thresholds) Comets(d3, d4, d5 uint8) []CometBoost {
	n := t.CometCount(d3)
	comets := make([]CometBoost, 0, 2)
	if n >= 1 {
		comets = append(comets, BoostFromDigit(d4))
	}
	if n >= 2 {
		second := BoostFromDigit(d5)
		if second == comets[0] {
			second = BoostFromDigit(d5 + 1)
		}
		comets = append(comets, second)
	}
	return comets
}

// Properties bundles the full classification of one coordinate hash.
type Properties struct {
	Body   BodyType
	Size   uint8
	Comets []CometBoost
}

// Classify derives the celestial-body properties from a planet hash.
// The second return is false for dead space; the properties are still fully
// populated so callers that must stay total can ignore the flag.
func (t Thresholds) Classify(h HashWords) (Properties, bool) {
	d0 := Digit(h[0], 0)
	d1 := Digit(h[0], 1)
	d2 := Digit(h[0], 2)
	d3 := Digit(h[0], 3)
	d4 := Digit(h[0], 4)
	d5 := Digit(h[0], 5)

	props := Properties{
		Body:   t.Body(d1),
		Size:   t.Size(d2),
		Comets: t.Comets(d3, d4, d5),
	}
	return props, t.IsBody(d0)
}

// Validate checks the cut-points are ordered; a misordered table would make
// classification ambiguous between the cleartext and circuit paths.
func (t Thresholds) Validate() bool {
	ordered := t.Planet <= t.Quasar &&
		t.Quasar <= t.SpacetimeRip &&
		t.Size1 <= t.Size2 &&
		t.Size2 <= t.Size3 &&
		t.Size3 <= t.Size4 &&
		t.Size4 <= t.Size5 &&
		t.CometOne <= t.CometTwo
	return ordered
}
