// Package model implements the accessory runtime's in-memory data model:
// characteristics, services (channel groups), accessories, and the
// dense-index registry that resolves cross-service references.
package model

// Format is the wire/storage type of a Characteristic's value.
type Format uint8

const (
	FormatBool Format = iota
	FormatInt8
	FormatUint8
	FormatInt32
	FormatUint32
	FormatFloat
	FormatString
	FormatBytes // opaque byte blob (data-history blocks)
)

// Perm is a read/write/notify permission bit.
type Perm uint8

const (
	PermRead Perm = 1 << iota
	PermWrite
	PermNotify
)

// SetterFunc is invoked whenever a Characteristic's value is written,
// whether from an external RPC write or from internal code re-entering
// the setter. It receives the new raw value already coerced to Format.
type SetterFunc func(ch *Characteristic, newValue any) error

// Characteristic is a typed, named, RPC-exposed value owned by exactly one
// Service (spec.md §3 Invariants). It is never freed during runtime.
type Characteristic struct {
	Name   string
	Format Format
	Perms  Perm

	Value any

	// Numeric constraints; zero Step means "no step constraint".
	Min, Max, Step float64

	// ValidValues, if non-empty, restricts the accepted values (enum style).
	ValidValues []any

	Setter SetterFunc

	owner *Service
}

// Owner returns the Service that owns this characteristic.
func (c *Characteristic) Owner() *Service { return c.owner }

// Set invokes the setter (if any) and stores the new value. It is safe to
// call re-entrantly; the setter itself is responsible for idempotency.
func (c *Characteristic) Set(v any) error {
	if c.Setter != nil {
		if err := c.Setter(c, v); err != nil {
			return err
		}
	}
	c.Value = v
	return nil
}

// Float returns the characteristic's value coerced to float64 using the
// canonical type coercion from spec.md §4.1 step 6: bool->0/1,
// int/uint->int, float->float.
func (c *Characteristic) Float() float64 {
	switch v := c.Value.(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int32:
		return float64(v)
	case uint8:
		return float64(v)
	case uint32:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns the characteristic's value coerced to bool.
func (c *Characteristic) Bool() bool {
	switch v := c.Value.(type) {
	case bool:
		return v
	default:
		return c.Float() != 0
	}
}

// Int returns the characteristic's value coerced to int.
func (c *Characteristic) Int() int { return int(c.Float()) }

// WriteCoerced writes f into the characteristic using the reverse
// coercion of Float(): the stored Go type matches c.Format.
func (c *Characteristic) WriteCoerced(f float64) error {
	switch c.Format {
	case FormatBool:
		return c.Set(f != 0)
	case FormatInt8:
		return c.Set(int8(f))
	case FormatUint8:
		return c.Set(uint8(f))
	case FormatInt32:
		return c.Set(int32(f))
	case FormatUint32:
		return c.Set(uint32(f))
	case FormatFloat:
		return c.Set(f)
	default:
		return c.Set(f)
	}
}
