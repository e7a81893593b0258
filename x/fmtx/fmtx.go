// Package fmtx implements the small alloc-free logging helpers the boot
// and status paths use, mirroring the teacher's cmd/pico-hal-main/main.go
// fixed-point print helpers (printDeci/printHundredths) rather than
// pulling in fmt on MCU-safe code paths. Host-side tooling under cmd/
// uses fmt directly instead, matching the teacher's own MCU/host split.
package fmtx

import "haa/x/strconvx"

// Logger writes tagged boot/status/error lines with print/println only
// (no fmt), so it stays usable on the tinygo build target the rest of
// this package tree targets.
type Logger struct {
	prefix string
}

// NewLogger returns a Logger that prefixes every line with tag.
func NewLogger(tag string) Logger { return Logger{prefix: tag} }

func (l Logger) Info(msg string) {
	print("[")
	print(l.prefix)
	print("] ")
	println(msg)
}

func (l Logger) Error(msg string, err error) {
	print("[")
	print(l.prefix)
	print("] error: ")
	print(msg)
	if err != nil {
		print(": ")
		print(err.Error())
	}
	println()
}

// Fixed prints label followed by a value scaled by 10^-decimals without
// float formatting, the same fixed-point idiom as the teacher's
// printDeci/printHundredths.
func (l Logger) Fixed(label string, scaled int, decimals int) {
	sign := ""
	if scaled < 0 {
		sign = "-"
		scaled = -scaled
	}
	div := 1
	for i := 0; i < decimals; i++ {
		div *= 10
	}
	whole := scaled / div
	frac := scaled % div
	print("[")
	print(l.prefix)
	print("] ")
	print(label)
	print(sign)
	print(strconvx.Itoa(whole))
	if decimals > 0 {
		print(".")
		fs := strconvx.Itoa(frac)
		for len(fs) < decimals {
			fs = "0" + fs
		}
		print(fs)
	}
	println()
}
