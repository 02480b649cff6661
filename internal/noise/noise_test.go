// noise_test.go - Tests for the coordinate-mixing hash and classification.

package noise

import "testing"

func TestMixDeterministic(t *testing.T) {
	h1 := Mix(12, -7, 42)
	h2 := Mix(12, -7, 42)
	if h1 != h2 {
		t.Fatalf("Mix is not deterministic: %v vs %v", h1, h2)
	}
}

func TestMixWordEquations(t *testing.T) {
	// Hand-evaluated at (x=2, y=3, game=5).
	h := Mix(2, 3, 5)

	wantA := uint64(2*31 + 3*37 + 5*41 + 7)
	wantB := uint64(3*43 + 5*47 + 2*53 + 13)
	wantC := uint64(5*59 + 2*61 + 3*67 + 17)
	wantD := wantA*3 + wantB*5 + wantC*7 + 19

	if h[0] != wantA {
		t.Errorf("word a = %d, want %d", h[0], wantA)
	}
	if h[1] != wantB {
		t.Errorf("word b = %d, want %d", h[1], wantB)
	}
	if h[2] != wantC {
		t.Errorf("word c = %d, want %d", h[2], wantC)
	}
	if h[3] != wantD {
		t.Errorf("word d = %d, want %d", h[3], wantD)
	}
}

func TestMixNegativeCoordinates(t *testing.T) {
	// Negative coordinates fold through two's complement, they must not
	// collide with their positive mirror.
	if Mix(-3, 4, 1) == Mix(3, 4, 1) {
		t.Error("negative x collides with positive x")
	}
	if Mix(3, -4, 1) == Mix(3, 4, 1) {
		t.Error("negative y collides with positive y")
	}
}

func TestMixSensitivity(t *testing.T) {
	base := Mix(10, 20, 7)
	cases := []struct {
		name string
		h    HashWords
	}{
		{"x+1", Mix(11, 20, 7)},
		{"y+1", Mix(10, 21, 7)},
		{"game+1", Mix(10, 20, 8)},
		{"swap x/y", Mix(20, 10, 7)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.h == base {
				t.Errorf("hash unchanged for %s", tc.name)
			}
		})
	}
}

func TestDigitExtraction(t *testing.T) {
	// 0x0807060504030201: digit i must be i+1.
	h := uint64(0x0807060504030201)
	for i := 0; i < 8; i++ {
		if got := Digit(h, i); got != uint8(i+1) {
			t.Errorf("Digit(h, %d) = %d, want %d", i, got, i+1)
		}
	}
}

func TestBytesHexRoundTrip(t *testing.T) {
	h := Mix(1, 2, 3)
	b := h.Bytes()
	if len(h.Hex()) != 64 {
		t.Fatalf("hex length = %d, want 64", len(h.Hex()))
	}
	// Word 0 occupies the first 8 bytes little-endian.
	var w0 uint64
	for i := 7; i >= 0; i-- {
		w0 = w0*256 + uint64(b[i])
	}
	if w0 != h[0] {
		t.Errorf("byte encoding of word 0 = %d, want %d", w0, h[0])
	}
}

func TestThresholdCascades(t *testing.T) {
	th := DefaultThresholds()
	if !th.Validate() {
		t.Fatal("default thresholds fail validation")
	}

	t.Run("dead space", func(t *testing.T) {
		if th.IsBody(5) {
			t.Error("digit 5 below dead-space threshold 10 classified as body")
		}
		if !th.IsBody(10) {
			t.Error("digit 10 at threshold must be a body")
		}
	})

	t.Run("body type boundaries", func(t *testing.T) {
		cases := []struct {
			d1   uint8
			want BodyType
		}{
			{0, Planet}, {99, Planet},
			{100, Quasar}, {159, Quasar},
			{160, SpacetimeRip}, {209, SpacetimeRip},
			{210, AsteroidBelt}, {255, AsteroidBelt},
		}
		for _, tc := range cases {
			if got := th.Body(tc.d1); got != tc.want {
				t.Errorf("Body(%d) = %v, want %v", tc.d1, got, tc.want)
			}
		}
	})

	t.Run("size boundaries", func(t *testing.T) {
		cases := []struct {
			d2   uint8
			want uint8
		}{
			{0, 1}, {49, 1}, {50, 2}, {119, 2}, {120, 3},
			{179, 3}, {180, 4}, {219, 4}, {220, 5}, {244, 5},
			{245, 6}, {255, 6},
		}
		for _, tc := range cases {
			if got := th.Size(tc.d2); got != tc.want {
				t.Errorf("Size(%d) = %d, want %d", tc.d2, got, tc.want)
			}
		}
	})

	t.Run("comet count boundaries", func(t *testing.T) {
		cases := []struct {
			d3   uint8
			want uint8
		}{
			{0, 0}, {216, 0}, {217, 1}, {242, 1}, {243, 2}, {255, 2},
		}
		for _, tc := range cases {
			if got := th.CometCount(tc.d3); got != tc.want {
				t.Errorf("CometCount(%d) = %d, want %d", tc.d3, got, tc.want)
			}
		}
	})
}

func TestCometCollisionPerturb(t *testing.T) {
	th := DefaultThresholds()

	// d4 and d5 mapping to the same boost: second comet shifts to the
	// next boost instead of doubling the same stat twice.
	comets := th.Comets(255, 2, 8) // both digits select boost 2
	if len(comets) != 2 {
		t.Fatalf("comet count = %d, want 2", len(comets))
	}
	if comets[0] != BoostShipGenSpeed {
		t.Errorf("first comet = %v, want %v", comets[0], BoostShipGenSpeed)
	}
	if comets[1] != BoostMetalGenSpeed {
		t.Errorf("perturbed second comet = %v, want %v", comets[1], BoostMetalGenSpeed)
	}

	// Distinct digits keep their natural selections.
	comets = th.Comets(255, 0, 5)
	if comets[0] != BoostShipCapacity || comets[1] != BoostLaunchVelocity {
		t.Errorf("distinct digits perturbed: %v", comets)
	}
}

func TestClassifyDeadSpaceStillPopulated(t *testing.T) {
	th := DefaultThresholds()
	// Find a hash whose digit 0 falls under the dead-space threshold.
	for x := int64(0); x < 4096; x++ {
		h := Mix(x, 0, 1)
		if Digit(h[0], 0) < th.DeadSpace {
			props, ok := th.Classify(h)
			if ok {
				t.Fatal("dead space classified as body")
			}
			if props.Size < 1 || props.Size > 6 {
				t.Fatalf("dead-space properties not populated: size %d", props.Size)
			}
			return
		}
	}
	t.Skip("no dead-space coordinate found in scan range")
}
