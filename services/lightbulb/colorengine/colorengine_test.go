package colorengine

import "testing"

func defaultConfig(channels int) Config {
	return Config{
		Channels:   channels,
		WhitePoint: Primary{0.3127, 0.3290},
		Red:        Primary{0.700, 0.300},
		Green:      Primary{0.172, 0.747},
		Blue:       Primary{0.135, 0.039},
		Flux:       [5]float64{1, 1, 1, 1, 1},
		ColorTempMin: 140,
		ColorTempMax: 500,
	}
}

func TestComputeOffYieldsZero(t *testing.T) {
	out := Compute(defaultConfig(3), HSI{On: false, Brightness: 100})
	for i, v := range out {
		if v != 0 {
			t.Fatalf("channel %d = %d, want 0 when off", i, v)
		}
	}
}

func TestComputeFullBrightnessRedHue(t *testing.T) {
	cfg := defaultConfig(3)
	out := Compute(cfg, HSI{On: true, Brightness: 100, Hue: 0, Sat: 100})
	if out[0] == 0 {
		t.Fatalf("expected nonzero red channel for red hue, got %v", out)
	}
}

func TestComputeMonotonicWithBrightness(t *testing.T) {
	cfg := defaultConfig(3)
	low := Compute(cfg, HSI{On: true, Brightness: 10, Hue: 120, Sat: 100})
	high := Compute(cfg, HSI{On: true, Brightness: 90, Hue: 120, Sat: 100})
	if high[1] < low[1] {
		t.Fatalf("higher brightness produced lower duty: low=%v high=%v", low, high)
	}
}

func TestComputeCCTTwoChannel(t *testing.T) {
	cfg := defaultConfig(2)
	warm := Compute(cfg, HSI{On: true, Brightness: 100, ColorTemp: 500})
	cool := Compute(cfg, HSI{On: true, Brightness: 100, ColorTemp: 140})
	if warm[4] < warm[3] {
		t.Fatalf("warm color temp should favor WW channel: %v", warm)
	}
	if cool[3] < cool[4] {
		t.Fatalf("cool color temp should favor CW channel: %v", cool)
	}
}

func TestComputeRespectsMaxPowerCap(t *testing.T) {
	cfg := defaultConfig(3)
	uncapped := Compute(cfg, HSI{On: true, Brightness: 100, Hue: 200, Sat: 100})
	cfg.MaxPowerCap = 0.3
	capped := Compute(cfg, HSI{On: true, Brightness: 100, Hue: 200, Sat: 100})
	sum := func(o [5]uint16) int {
		s := 0
		for _, v := range o {
			s += int(v)
		}
		return s
	}
	if sum(capped) > sum(uncapped) {
		t.Fatalf("capped output exceeds uncapped: capped=%v uncapped=%v", capped, uncapped)
	}
}
