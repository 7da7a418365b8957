package stack

import (
	"math"
	"slices"

	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/pagination"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

// Container sizing rules, in logical pixels.
const (
	baseHeight      = 200.0 // header plus padding of an empty member list
	memberHeight    = 80.0  // height added per member
	kubernetesWidth = 600.0 // minimum width of a kubernetes container
	kubernetesPad   = 100.0 // extra width over MinWidth for kubernetes
)

// NewContainer creates a container from t at pos and runs UpdateMembership
// with the initial members. It returns the members that were rejected.
func NewContainer(t Template, pos geom.Point, members ...Component) (Container, []Component) {
	c := Container{
		ID:           NewID(),
		Name:         t.DisplayName(),
		Kind:         t.Kind,
		Template:     t.Name,
		Bounds:       geom.Rect{X: pos.X, Y: pos.Y, Width: t.Width, Height: t.Height},
		MinWidth:     t.Width,
		MinHeight:    t.Height,
		ResourceMode: t.Mode,
		DefaultPorts: cloneStrings(t.Ports),
		Replicas:     t.Replicas,
		Accepts:      cloneCategories(t.Categories),
		Resources:    resources.Baseline(),
	}
	if c.ResourceMode == "" {
		c.ResourceMode = defaultMode(t)
	}
	if len(t.Env) > 0 {
		c.Env = make(map[string]string, len(t.Env))
		for k, v := range t.Env {
			c.Env[k] = v
		}
	}

	// Custom templates hand over their defaults verbatim.
	if t.Kind == KindCustom {
		c.Ports = cloneStrings(t.Ports)
		if t.Baseline != nil {
			base := resources.Baseline()
			for _, d := range units.Dimensions {
				base = base.With(units.ParseOr(t.Baseline.Text(d), d, base.Get(d)))
			}
			c.Resources = base
			c.ManualLimits = &resources.Limits{CPU: base.CPU, Memory: base.Memory}
		}
	}

	return UpdateMembership(c, members)
}

// defaultMode is manual for custom templates that carry a fixed baseline,
// auto otherwise.
func defaultMode(t Template) resources.Mode {
	if t.Kind == KindCustom && t.Baseline != nil {
		return resources.ModeManual
	}
	return resources.ModeAuto
}

// ConvertToContainer turns an existing component into an empty container.
// The component's id, name and position are kept.
func ConvertToContainer(comp Component, t Template) Container {
	c, _ := NewContainer(t, comp.Bounds.Origin())
	c.ID = comp.ID
	c.Name = comp.Name
	return c
}

// CanAccept reports whether n may become a member of c.
//
// Containers are never accepted. Docker containers accept only the docker
// categories, narrowed by their Accepts list when it is set; kubernetes
// containers accept any component; other containers use their Accepts
// allow-list when it is non-empty.
func CanAccept(c Container, n Node) bool {
	comp, ok := n.(Component)
	if !ok {
		return false
	}
	accepts, all := AcceptedCategories(c)
	return all || slices.Contains(accepts, comp.Category)
}

// AcceptedCategories returns the categories c takes as members. all is true
// when c takes every category.
func AcceptedCategories(c Container) (accepts []Category, all bool) {
	switch c.Kind {
	case KindKubernetes:
		return nil, true
	case KindDocker:
		if len(c.Accepts) == 0 {
			return DockerCategories, false
		}
		for _, cat := range c.Accepts {
			if slices.Contains(DockerCategories, cat) {
				accepts = append(accepts, cat)
			}
		}
		return accepts, false
	}
	return c.Accepts, len(c.Accepts) == 0
}

// UpdateMembership replaces c's members with the accepted subset of members,
// preserving order, and recomputes every derived field:
//
//   - Height = max(MinHeight, 200 + 80*len(members))
//   - kubernetes Width >= max(600, MinWidth+100)
//   - default ports assigned when a frontend/backend member joins a portless container
//   - Resources re-aggregated in auto mode
//   - CurrentPage clamped
//
// members must be the complete desired list, not a delta. The caller is
// responsible for removing each member from any previous owner first.
// Rejected components are returned so the caller can surface a hint.
func UpdateMembership(c Container, members []Component) (Container, []Component) {
	c = c.Clone()

	var accepted, rejected []Component
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if CanAccept(c, m) {
			accepted = append(accepted, m.Clone())
		} else {
			rejected = append(rejected, m)
		}
	}
	c.Members = accepted

	c.Bounds.Height = math.Max(c.MinHeight, baseHeight+memberHeight*float64(len(accepted)))
	if c.Kind == KindKubernetes {
		c.Bounds.Width = max(c.Bounds.Width, kubernetesWidth, c.MinWidth+kubernetesPad)
	}
	c.Bounds.Width = math.Max(c.Bounds.Width, c.MinWidth)

	if len(c.Ports) == 0 && slices.ContainsFunc(accepted, func(m Component) bool { return m.Category.exposesPorts() }) {
		c.Ports = cloneStrings(c.DefaultPorts)
	}

	return refresh(c), rejected
}

// Resize sets the container size, never below its minimum, and re-clamps the
// page index.
func Resize(c Container, width, height float64) Container {
	c = c.Clone()
	c.Bounds.Width = math.Max(width, c.MinWidth)
	c.Bounds.Height = math.Max(height, c.MinHeight)
	return clampPage(c)
}

// SetPage moves the container to page, clamped to the valid range.
func SetPage(c Container, page int) Container {
	c.CurrentPage = page
	return clampPage(c)
}

// SetResourceMode switches between auto and manual resources. In manual
// mode a non-nil limits replaces the stored limits.
func SetResourceMode(c Container, mode resources.Mode, limits *resources.Limits) Container {
	c = c.Clone()
	c.ResourceMode = mode
	if mode == resources.ModeManual && limits != nil {
		l := *limits
		c.ManualLimits = &l
	}
	return refresh(c)
}

// DisplayProfile returns the profile shown for c.
func DisplayProfile(c Container) resources.Profile {
	return resources.SelectDisplay(c.ResourceMode, c.Members, c.ManualLimits, c.Resources)
}

// Violations compares the aggregated member demand with manual limits.
// Containers in auto mode or without limits never violate.
func Violations(c Container) resources.LimitCheck {
	if c.ResourceMode != resources.ModeManual || c.ManualLimits == nil {
		return resources.LimitCheck{}
	}
	return resources.CheckManualLimits(resources.Aggregate(c.Members), *c.ManualLimits)
}

// Pagination returns the pagination view of c.
func Pagination(c Container) pagination.State {
	return pagination.Compute(c.Bounds.Height, len(c.Members), c.CurrentPage)
}

// refresh recomputes resources and the page index.
func refresh(c Container) Container {
	c.Resources = DisplayProfile(c)
	return clampPage(c)
}

func clampPage(c Container) Container {
	per := pagination.ItemsPerPage(c.Bounds.Height, pagination.HeaderHeight, pagination.ItemHeight)
	c.CurrentPage = pagination.ClampPage(c.CurrentPage, len(c.Members), per)
	return c
}
