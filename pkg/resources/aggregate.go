package resources

import (
	"fmt"

	"github.com/matzehuels/stackcanvas/pkg/units"
)

// OverheadFactor is applied to summed member resources.
const OverheadFactor = 1.2

// Requirer is anything that carries resource requirements.
// A nil result means "no requirements".
type Requirer interface {
	ResourceRequirements() *Requirements
}

// Sum returns the raw per-dimension sum of members' parsed requirements.
// Missing or unparseable values contribute zero.
func Sum[M Requirer](members []M) Profile {
	total := EmptyProfile()
	for _, m := range members {
		req := m.ResourceRequirements()
		if req == nil {
			continue
		}
		for _, d := range units.Dimensions {
			q := units.ParseOr(req.Text(d), d, units.Zero(d))
			total = total.With(total.Get(d).Add(q))
		}
	}
	return total
}

// Aggregate returns the container profile for members: Sum times
// OverheadFactor, or Baseline when members is empty.
func Aggregate[M Requirer](members []M) Profile {
	if len(members) == 0 {
		return Baseline()
	}
	total := Sum(members)
	for _, d := range units.Dimensions {
		total = total.With(total.Get(d).Scale(OverheadFactor))
	}
	return total
}

// LimitCheck is the outcome of comparing aggregated demand with manual limits.
type LimitCheck struct {
	Violated bool     `json:"violated"`
	Messages []string `json:"messages,omitempty"`
}

// CheckManualLimits compares CPU and memory of auto against limits.
// It is pure; callers decide whether to surface a warning.
func CheckManualLimits(auto Profile, limits Limits) LimitCheck {
	var check LimitCheck
	for _, pair := range []struct {
		label string
		usage units.Quantity
		limit units.Quantity
	}{
		{"CPU", auto.CPU, limits.CPU},
		{"Memory", auto.Memory, limits.Memory},
	} {
		if pair.usage.Exceeds(pair.limit) {
			check.Violated = true
			check.Messages = append(check.Messages, fmt.Sprintf("%s usage %s exceeds limit %s",
				pair.label, units.Format(pair.usage), units.Format(pair.limit)))
		}
	}
	return check
}

// SelectDisplay returns the profile a container shows. Auto mode aggregates
// members. Manual mode projects limits onto stored, or returns stored when no
// limits are set.
func SelectDisplay[M Requirer](mode Mode, members []M, limits *Limits, stored Profile) Profile {
	if mode != ModeManual {
		return Aggregate(members)
	}
	if limits == nil {
		return stored
	}
	return stored.With(units.Cores(limits.CPU.Amount)).With(units.Megabytes(limits.Memory.Amount))
}
