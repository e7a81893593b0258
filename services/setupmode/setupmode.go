// Package setupmode implements the rapid-toggle setup-entry door from
// spec.md §4.11: a debounced counter on the first accessory's toggles,
// plus the allowed-setup-window right after boot during which any
// setup-mode action is honored outright.
package setupmode

import (
	"context"
	"time"

	"haa/persist"
)

// RearmWindow is the debounce period between counted toggles (spec.md
// §4.11 "debounced by a 1s rearm timer").
const RearmWindow = time.Second

// DefaultThreshold/DefaultAllowedSec are the spec.md defaults, used when
// General's config-driven values are zero.
const (
	DefaultThreshold  = 8
	DefaultAllowedSec = 60
)

// Door tracks the toggle counter and the post-boot allowed-setup window.
type Door struct {
	threshold int
	bootAt    time.Time
	allowed   time.Duration

	count    int
	lastToggle time.Time
}

// NewDoor builds a Door from the config-resolved threshold and allowed-
// window length, anchored to now as boot time.
func NewDoor(threshold, allowedSec int) *Door {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if allowedSec <= 0 {
		allowedSec = DefaultAllowedSec
	}
	return &Door{
		threshold: threshold,
		bootAt:    time.Now(),
		allowed:   time.Duration(allowedSec) * time.Second,
	}
}

// Toggle records one on/off toggle of the first accessory. Toggles
// arriving within RearmWindow of the previous one are ignored (debounce);
// it reports whether this toggle just reached the threshold.
func (d *Door) Toggle() (enteredSetup bool) {
	now := time.Now()
	if !d.lastToggle.IsZero() && now.Sub(d.lastToggle) < RearmWindow {
		return false
	}
	d.lastToggle = now
	d.count++
	if d.count >= d.threshold {
		d.count = 0
		return true
	}
	return false
}

// InAllowedWindow reports whether now is still within the post-boot
// window where any setup-mode action is honored outright.
func (d *Door) InAllowedWindow() bool {
	return time.Since(d.bootAt) < d.allowed
}

// EnterSetup persists the emergency setup-mode flag (spec.md §6
// "haa_setup_mode") so the next boot starts in setup regardless of the
// normal config.
func EnterSetup(store persist.Store) error {
	return store.SetInt8(persist.KeySetupMode, 1)
}

// ClearSetup clears the flag once setup mode has been serviced.
func ClearSetup(store persist.Store) error {
	return store.SetInt8(persist.KeySetupMode, 0)
}

// IsSetup reports whether the persisted flag requests setup mode at
// boot.
func IsSetup(store persist.Store) bool {
	v, ok := store.GetInt8(persist.KeySetupMode)
	return ok && v != 0
}

// ConfigError mirrors spec.md §7's "Configuration error at load time"
// edge case: a zero accessory count, or a persistence store that refused
// the config, always forces setup mode regardless of the toggle counter
// or allowed window.
func ConfigError(store persist.Store, accessoryCount int, loadErr error) bool {
	if accessoryCount == 0 || loadErr != nil {
		_ = EnterSetup(store)
		return true
	}
	return false
}

// RunLoop starts a goroutine that calls onWindowClose once when the
// allowed window closes, or exits without calling it if ctx is done
// first; with no allowed window it starts nothing. It gives a Door a
// ctx-scoped lifetime, matching every other package's ctx-first
// convention even though a Door itself holds no timer state.
func RunLoop(ctx context.Context, d *Door, onWindowClose func()) {
	if d.allowed <= 0 {
		return
	}
	go func() {
		t := time.NewTimer(d.allowed)
		defer t.Stop()
		select {
		case <-ctx.Done():
		case <-t.C:
			if onWindowClose != nil {
				onWindowClose()
			}
		}
	}()
}
