package samples

import (
	"fmt"

	"github.com/ella918/thejoker/errs"
	"github.com/ella918/thejoker/quantity"
)

// Key names one orbital parameter that a Samples container may hold.
type Key uint8

const (
	KeyP      Key = iota + 1 // period
	KeyM0                    // mean anomaly at the reference epoch
	KeyEcc                   // eccentricity
	KeyOmega                 // argument of pericenter
	KeyJitter                // extra RV noise
	KeyK                     // velocity semi-amplitude
	KeyV0                    // systemic velocity

	keyCount = int(KeyV0)
)

var keyNames = [...]string{
	KeyP:      "P",
	KeyM0:     "M0",
	KeyEcc:    "e",
	KeyOmega:  "omega",
	KeyJitter: "jitter",
	KeyK:      "K",
	KeyV0:     "v0",
}

var keyDims = [...]quantity.Dimension{
	KeyP:      quantity.DimensionTime,
	KeyM0:     quantity.DimensionAngle,
	KeyEcc:    quantity.DimensionNone,
	KeyOmega:  quantity.DimensionAngle,
	KeyJitter: quantity.DimensionVelocity,
	KeyK:      quantity.DimensionVelocity,
	KeyV0:     quantity.DimensionVelocity,
}

// AllKeys returns every valid key in canonical order.
func AllKeys() []Key {
	return []Key{KeyP, KeyM0, KeyEcc, KeyOmega, KeyJitter, KeyK, KeyV0}
}

// ParseKey returns the key with the given name.
func ParseKey(name string) (Key, error) {
	for _, k := range AllKeys() {
		if keyNames[k] == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrInvalidKey, name)
}

// Valid reports whether k is one of the defined keys.
func (k Key) Valid() bool {
	return k >= KeyP && k <= KeyV0
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(k))
	}

	return keyNames[k]
}

// Dimension returns the physical dimension values for k must carry.
func (k Key) Dimension() quantity.Dimension {
	if !k.Valid() {
		return quantity.DimensionNone
	}

	return keyDims[k]
}
