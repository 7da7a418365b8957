package units

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
)

// Dimension identifies a resource axis.
type Dimension int

// Resource dimensions.
const (
	CPU Dimension = iota
	Memory
	Storage
	Network
)

// Dimensions lists every dimension in display order.
var Dimensions = []Dimension{CPU, Memory, Storage, Network}

var dimensionNames = [...]string{"cpu", "memory", "storage", "network"}

// canonicalUnits holds the unit symbol every amount of a dimension is stored in.
var canonicalUnits = [...]string{"cores", "MB", "GB", "Mbps"}

// String returns the lowercase dimension name ("cpu", "memory", ...).
func (d Dimension) String() string {
	if d < 0 || int(d) >= len(dimensionNames) {
		return fmt.Sprintf("dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Unit returns the canonical unit symbol for the dimension.
func (d Dimension) Unit() string {
	if d < 0 || int(d) >= len(canonicalUnits) {
		return ""
	}
	return canonicalUnits[d]
}

// ParseDimension converts a dimension name back to a Dimension.
func ParseDimension(s string) (Dimension, error) {
	for i, name := range dimensionNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Dimension(i), nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidInput, "unknown resource dimension %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Dimension) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Dimension) UnmarshalText(b []byte) error {
	v, err := ParseDimension(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Quantity is an amount of one dimension expressed in its canonical unit.
// Amount is never negative.
type Quantity struct {
	Dimension Dimension `json:"dimension" bson:"dimension"`
	Amount    float64   `json:"amount" bson:"amount"`
}

// Cores returns a CPU quantity.
func Cores(v float64) Quantity { return Quantity{Dimension: CPU, Amount: v} }

// Megabytes returns a memory quantity.
func Megabytes(v float64) Quantity { return Quantity{Dimension: Memory, Amount: v} }

// Gigabytes returns a storage quantity.
func Gigabytes(v float64) Quantity { return Quantity{Dimension: Storage, Amount: v} }

// Mbps returns a network quantity.
func Mbps(v float64) Quantity { return Quantity{Dimension: Network, Amount: v} }

// Zero returns an empty quantity of dimension d.
func Zero(d Dimension) Quantity { return Quantity{Dimension: d} }

// Add returns q + o. Quantities of a different dimension are ignored.
func (q Quantity) Add(o Quantity) Quantity {
	if o.Dimension != q.Dimension {
		return q
	}
	q.Amount += o.Amount
	return q
}

// Scale multiplies the amount by f.
func (q Quantity) Scale(f float64) Quantity {
	q.Amount *= f
	return q
}

// Exceeds reports whether q is strictly larger than limit.
func (q Quantity) Exceeds(limit Quantity) bool {
	return q.Amount > limit.Amount
}

// String returns the formatted quantity, see [Format].
func (q Quantity) String() string {
	return Format(q)
}
