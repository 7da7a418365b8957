package resources

import (
	"github.com/matzehuels/stackcanvas/pkg/units"
)

// Requirements is the free-text resource input attached to a component.
type Requirements struct {
	CPU     string `json:"cpu,omitempty" bson:"cpu,omitempty" toml:"cpu"`
	Memory  string `json:"memory,omitempty" bson:"memory,omitempty" toml:"memory"`
	Storage string `json:"storage,omitempty" bson:"storage,omitempty" toml:"storage"`
	Network string `json:"network,omitempty" bson:"network,omitempty" toml:"network"`
}

// Text returns the raw input for dimension d.
func (r *Requirements) Text(d units.Dimension) string {
	if r == nil {
		return ""
	}
	switch d {
	case units.CPU:
		return r.CPU
	case units.Memory:
		return r.Memory
	case units.Storage:
		return r.Storage
	case units.Network:
		return r.Network
	}
	return ""
}

// Profile is a canonical resource profile.
type Profile struct {
	CPU     units.Quantity `json:"cpu" bson:"cpu"`
	Memory  units.Quantity `json:"memory" bson:"memory"`
	Storage units.Quantity `json:"storage" bson:"storage"`
	Network units.Quantity `json:"network" bson:"network"`
}

// Get returns the quantity for dimension d.
func (p Profile) Get(d units.Dimension) units.Quantity {
	switch d {
	case units.CPU:
		return p.CPU
	case units.Memory:
		return p.Memory
	case units.Storage:
		return p.Storage
	case units.Network:
		return p.Network
	}
	return units.Zero(d)
}

// With returns p with the quantity for q's dimension replaced.
func (p Profile) With(q units.Quantity) Profile {
	switch q.Dimension {
	case units.CPU:
		p.CPU = q
	case units.Memory:
		p.Memory = q
	case units.Storage:
		p.Storage = q
	case units.Network:
		p.Network = q
	}
	return p
}

// Strings returns the formatted quantities keyed by dimension name.
func (p Profile) Strings() map[string]string {
	out := make(map[string]string, len(units.Dimensions))
	for _, d := range units.Dimensions {
		out[d.String()] = units.Format(p.Get(d))
	}
	return out
}

// Requirements converts the profile back into display text.
func (p Profile) Requirements() Requirements {
	return Requirements{
		CPU:     units.Format(p.CPU),
		Memory:  units.Format(p.Memory),
		Storage: units.Format(p.Storage),
		Network: units.Format(p.Network),
	}
}

// EmptyProfile returns a profile with every dimension set to zero.
func EmptyProfile() Profile {
	return Profile{
		CPU:     units.Zero(units.CPU),
		Memory:  units.Zero(units.Memory),
		Storage: units.Zero(units.Storage),
		Network: units.Zero(units.Network),
	}
}

// Baseline is the profile reported for a container without members.
// An idle container still reserves resources.
func Baseline() Profile {
	return Profile{
		CPU:     units.Cores(0.5),
		Memory:  units.Megabytes(256),
		Storage: units.Gigabytes(1),
		Network: units.Mbps(10),
	}
}

// Limits are the user-supplied caps of a container in manual mode.
// Only CPU and memory are limit-bearing.
type Limits struct {
	CPU    units.Quantity `json:"cpu" bson:"cpu"`
	Memory units.Quantity `json:"memory" bson:"memory"`
}

// ParseLimits parses free-text limits. Unparseable values fall back to the
// corresponding quantity of fallback.
func ParseLimits(cpu, memory string, fallback Limits) Limits {
	return Limits{
		CPU:    units.ParseOr(cpu, units.CPU, fallback.CPU),
		Memory: units.ParseOr(memory, units.Memory, fallback.Memory),
	}
}

// Mode selects how a container's displayed profile is produced.
type Mode string

// Resource modes.
const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeAuto || m == ModeManual
}
