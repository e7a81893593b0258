// Package colorengine implements the HSI->RGBWW mapping pipeline from
// spec.md §4.2 as a pure function: HSI in, per-channel 16-bit PWM
// targets out. Gamut mapping, flux correction, and the saturation-white
// curve are all arithmetic with no I/O, following the Design Note to
// "lift the HSI->RGBWW arithmetic into a pure, independently testable
// function" — the same shape as irrf.Encode and freemonitor.Eval.
package colorengine

import "math"

// PWMScale is the maximum per-channel duty value written by Compute.
const PWMScale = 65535

// HSI is the lightbulb's logical color input (spec.md §4.2).
type HSI struct {
	On         bool
	Brightness float64 // [0..100]
	Hue        float64 // [0..360)
	Sat        float64 // [0..100]
	ColorTemp  float64 // mired (higher is warmer), 2-channel mode only
}

// Primary is a chromaticity coordinate (CIE xy).
type Primary struct{ X, Y float64 }

// Config is a lightbulb's static per-install color configuration: LED
// primaries, white point, per-channel flux, and correction curve.
type Config struct {
	Channels int // 1, 2, 3, 4, or 5

	WhitePoint Primary
	Red, Green, Blue Primary // LED-specific primaries (3+ channel mode)

	// Flux is the relative luminous flux of each channel in channel-map
	// order (R,G,B,CW,WW), used for step 7's flux correction. A zero
	// entry is treated as "channel absent" and forced to 0 contribution.
	Flux [5]float64

	CurveFactor float64 // saturation-white curve k; 0 disables it
	MaxPowerCap float64 // 0 disables the derate in step 11

	ColorTempMin, ColorTempMax float64
}

// sRGB outer primaries and the nominal sCMY intermediate points, fixed
// reference geometry for the gamut-mapping sector classification.
var (
	srgbRed   = Primary{0.6400, 0.3300}
	srgbGreen = Primary{0.3000, 0.6000}
	srgbBlue  = Primary{0.1500, 0.0600}
)

// Compute runs the full spec.md §4.2 algorithm and returns duty targets
// for up to 5 channels (R,G,B,CW,WW in that order; unused channels are 0).
func Compute(cfg Config, in HSI) [5]uint16 {
	var out [5]uint16
	if !in.On || in.Brightness <= 0 {
		return out
	}

	if cfg.Channels <= 2 {
		return computeCCT(cfg, in)
	}
	return computeColor(cfg, in)
}

func computeCCT(cfg Config, in HSI) [5]uint16 {
	var out [5]uint16
	v := clamp(in.Brightness/100, 0, 1)
	t := 0.5
	if cfg.ColorTempMax > cfg.ColorTempMin {
		t = clamp((in.ColorTemp-cfg.ColorTempMin)/(cfg.ColorTempMax-cfg.ColorTempMin), 0, 1)
	}
	// Channel 0 = CW, channel 1 = WW in 2-channel mode.
	out[3] = floorScale(v * (1 - t))
	out[4] = floorScale(v * t)
	if cfg.Channels == 1 {
		out[4] = 0
		out[3] = floorScale(v)
	}
	return out
}

func computeColor(cfg Config, in HSI) [5]uint16 {
	// Step 1: HSI -> linear RGB via the six 60-degree sector rule.
	r, g, b := hsiToRGB(in.Hue, in.Sat/100, 1)

	// Step 2: sRGB -> linear gamma per channel.
	r, g, b = srgbGamma(r), srgbGamma(g), srgbGamma(b)

	// Step 3: linear RGB -> xy chromaticity (simplified sRGB primaries
	// basis, since the exact camera-matrix coefficients are an
	// installation constant not carried by this config).
	x, y := rgbToXY(r, g, b, cfg.WhitePoint)

	// Step 4+5: gamut-map into the LED-specific triangle, then recover
	// barycentric target RGB coefficients in that triangle.
	x, y = gamutMap(x, y, cfg)
	targetR, targetG, targetB := barycentricRGB(x, y, cfg)

	coeff := [5]float64{targetR, targetG, targetB, 0, 0}

	// Step 6: RGBW decomposition using CW as the W vertex; for 5
	// channels, add a second decomposition against WW.
	if cfg.Channels >= 4 {
		w := math.Min(coeff[0], math.Min(coeff[1], coeff[2]))
		coeff[0] -= w
		coeff[1] -= w
		coeff[2] -= w
		coeff[3] = w
	}
	if cfg.Channels == 5 {
		w2 := coeff[3] / 2
		coeff[3] -= w2
		coeff[4] = w2
	}

	// Step 7: flux correction.
	for i := 0; i < cfg.Channels; i++ {
		if cfg.Flux[i] <= 0 {
			coeff[i] = 0
			continue
		}
		coeff[i] /= cfg.Flux[i]
	}
	renormalize(&coeff, cfg.Channels)

	// Step 8: saturation-white curve.
	if cfg.CurveFactor != 0 {
		s := in.Sat
		k := cfg.CurveFactor
		mul := 1 - (math.Exp(k*s/100)-1)/(math.Exp(k)-1)
		for i := 0; i < cfg.Channels; i++ {
			coeff[i] *= mul
		}
	}

	// Step 9: extra-RGB headroom.
	headroom := 1.0
	for i := 0; i < cfg.Channels; i++ {
		headroom = math.Min(headroom, 1-coeff[i])
	}
	if headroom > 0 {
		for i := 0; i < 3 && i < cfg.Channels; i++ {
			coeff[i] += headroom
		}
	}

	// Step 10: renormalize so max <= 1.
	renormalize(&coeff, cfg.Channels)

	// Step 11: brightness scale with optional max-power derate.
	scale := (in.Brightness / 100) * PWMScale
	if cfg.MaxPowerCap > 0 {
		fluxDot, fluxSum := 0.0, 0.0
		for i := 0; i < cfg.Channels; i++ {
			fluxDot += cfg.Flux[i] * coeff[i]
			fluxSum += cfg.Flux[i]
		}
		if fluxDot > 0 && fluxSum > 0 {
			ratio := math.Min(cfg.MaxPowerCap, fluxDot/fluxSum) / (fluxDot / fluxSum)
			scale *= ratio
		}
	}

	var out [5]uint16
	for i := 0; i < cfg.Channels; i++ {
		out[i] = floorScale(coeff[i] * scale / PWMScale)
	}
	return out
}

func renormalize(coeff *[5]float64, n int) {
	max := 0.0
	for i := 0; i < n; i++ {
		if coeff[i] > max {
			max = coeff[i]
		}
	}
	if max > 1 {
		for i := 0; i < n; i++ {
			coeff[i] /= max
		}
	}
}

func floorScale(v float64) uint16 {
	v = clamp(v, 0, 1)
	return uint16(math.Floor(v * PWMScale))
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

// hsiToRGB implements the six-60-degree-sector HSI->RGB wheel.
func hsiToRGB(h, s, i float64) (r, g, b float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	hp := h / 60
	z := 1 - math.Abs(math.Mod(hp, 2)-1)
	c := (3 * i * s) / (1 + z)
	x := c * z
	m := i * (1 - s)

	switch {
	case hp < 1:
		r, g, b = c, x, 0
	case hp < 2:
		r, g, b = x, c, 0
	case hp < 3:
		r, g, b = 0, c, x
	case hp < 4:
		r, g, b = 0, x, c
	case hp < 5:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}

func srgbGamma(x float64) float64 {
	if x > 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

func rgbToXY(r, g, b float64, white Primary) (x, y float64) {
	sum := r + g + b
	if sum <= 0 {
		return white.X, white.Y
	}
	// Project onto the sRGB primary simplex, weighted by channel value.
	x = (r*srgbRed.X + g*srgbGreen.X + b*srgbBlue.X) / sum
	y = (r*srgbRed.Y + g*srgbGreen.Y + b*srgbBlue.Y) / sum
	return x, y
}

// gamutMap classifies (x,y) into one of six sRGB/sCMY sectors and, if it
// falls outside the LED-specific (R,G,B) triangle, applies the two-step
// affine transform from spec.md §4.2 step 4.
func gamutMap(x, y float64, cfg Config) (float64, float64) {
	if insideTriangle(x, y, cfg.Red, cfg.Green, cfg.Blue) {
		return x, y
	}
	w := cfg.WhitePoint
	cmy := [3]Primary{
		midpoint(srgbGreen, srgbBlue),  // cyan
		midpoint(srgbRed, srgbBlue),    // magenta
		midpoint(srgbRed, srgbGreen),   // yellow
	}
	ledCMY := [3]Primary{
		midpoint(cfg.Green, cfg.Blue),
		midpoint(cfg.Red, cfg.Blue),
		midpoint(cfg.Red, cfg.Green),
	}
	srgbPrim := [3]Primary{srgbRed, srgbGreen, srgbBlue}
	ledPrim := [3]Primary{cfg.Red, cfg.Green, cfg.Blue}

	sector := classifySector(x, y, w, srgbPrim, cmy)

	x, y = affinePair(x, y, w, cmy[sector], ledCMY[sector])
	if !insideTriangle(x, y, midpoint(ledPrim[sector], Primary{}), ledCMY[sector], w) {
		x, y = affinePair(x, y, w, srgbPrim[sector], ledPrim[sector])
	}
	return x, y
}

func classifySector(x, y float64, w Primary, prim, cmy [3]Primary) int {
	best, bestD := 0, math.MaxFloat64
	for i := 0; i < 3; i++ {
		mx := (prim[i].X + cmy[i].X + w.X) / 3
		my := (prim[i].Y + cmy[i].Y + w.Y) / 3
		d := (x-mx)*(x-mx) + (y-my)*(y-my)
		if d < bestD {
			bestD, best = d, i
		}
	}
	return best
}

func midpoint(a, b Primary) Primary {
	return Primary{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// affinePair maps point 'from' onto 'to' via a 2x2 transform centered
// on the white point, and applies the same transform to (x,y).
func affinePair(x, y float64, w, from, to Primary) (float64, float64) {
	fx, fy := from.X-w.X, from.Y-w.Y
	tx, ty := to.X-w.X, to.Y-w.Y
	denom := fx*fx + fy*fy
	if denom == 0 {
		return x, y
	}
	scale := math.Sqrt((tx*tx + ty*ty) / denom)
	angleFrom := math.Atan2(fy, fx)
	angleTo := math.Atan2(ty, tx)
	dAngle := angleTo - angleFrom

	px, py := x-w.X, y-w.Y
	r := math.Hypot(px, py) * scale
	theta := math.Atan2(py, px) + dAngle
	return w.X + r*math.Cos(theta), w.Y + r*math.Sin(theta)
}

func insideTriangle(x, y float64, a, b, c Primary) bool {
	d1 := sign(x, y, a, b)
	d2 := sign(x, y, b, c)
	d3 := sign(x, y, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(px, py float64, a, b Primary) float64 {
	return (px-b.X)*(a.Y-b.Y) - (a.X-b.X)*(py-b.Y)
}

// barycentricRGB returns normalized barycentric coordinates of (x,y) in
// the LED (R,G,B) triangle -- the channel contribution coefficients.
func barycentricRGB(x, y float64, cfg Config) (r, g, b float64) {
	a, bb, c := cfg.Red, cfg.Green, cfg.Blue
	denom := (bb.Y-c.Y)*(a.X-c.X) + (c.X-bb.X)*(a.Y-c.Y)
	if denom == 0 {
		return 1, 0, 0
	}
	r = ((bb.Y-c.Y)*(x-c.X) + (c.X-bb.X)*(y-c.Y)) / denom
	g = ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	b = 1 - r - g
	r, g, b = clamp(r, 0, 1), clamp(g, 0, 1), clamp(b, 0, 1)
	return
}
