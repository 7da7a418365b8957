package stack

import (
	"github.com/google/uuid"

	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/resources"
)

// =============================================================================
// Kinds and Categories
// =============================================================================

// Kind is the container flavour.
type Kind string

// Container kinds.
const (
	KindDocker     Kind = "docker"
	KindKubernetes Kind = "kubernetes"
	KindCustom     Kind = "custom"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindDocker || k == KindKubernetes || k == KindCustom
}

// Category classifies a component on the palette.
type Category string

// Component categories.
const (
	CategoryFrontend Category = "frontend"
	CategoryBackend  Category = "backend"
	CategoryDatabase Category = "database"
	CategoryTesting  Category = "testing"
	CategoryMobile   Category = "mobile"
	CategoryDevOps   Category = "devops"
	CategoryCloud    Category = "cloud"
	CategoryAI       Category = "ai"
	CategoryTool     Category = "tool"
)

// DockerCategories are the categories a docker container accepts.
var DockerCategories = []Category{
	CategoryFrontend,
	CategoryBackend,
	CategoryDatabase,
	CategoryTesting,
	CategoryMobile,
}

// exposesPorts reports whether members of this category serve traffic.
func (c Category) exposesPorts() bool {
	return c == CategoryFrontend || c == CategoryBackend
}

// NewID returns a fresh random node id.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// Node - sealed union of Component and Container
// =============================================================================

// Node is a top-level canvas element. Only Component and Container implement it.
type Node interface {
	NodeID() string
	NodeName() string
	NodeBounds() geom.Rect
	node()
}

// =============================================================================
// Component
// =============================================================================

// Component is a leaf technology or tool on the canvas.
type Component struct {
	ID         string                  `json:"id" bson:"id" validate:"required"`
	Name       string                  `json:"name" bson:"name" validate:"required"`
	Technology string                  `json:"technology,omitempty" bson:"technology,omitempty"`
	Category   Category                `json:"category,omitempty" bson:"category,omitempty"`
	Bounds     geom.Rect               `json:"bounds" bson:"bounds"`
	Resources  *resources.Requirements `json:"resources,omitempty" bson:"resources,omitempty"`
}

func (c Component) NodeID() string        { return c.ID }
func (c Component) NodeName() string      { return c.Name }
func (c Component) NodeBounds() geom.Rect { return c.Bounds }
func (Component) node()                   {}

// ResourceRequirements implements resources.Requirer.
func (c Component) ResourceRequirements() *resources.Requirements { return c.Resources }

// Clone returns a deep copy of c.
func (c Component) Clone() Component {
	if c.Resources != nil {
		r := *c.Resources
		c.Resources = &r
	}
	return c
}

// =============================================================================
// Container
// =============================================================================

// Container groups components under one runtime.
type Container struct {
	ID           string             `json:"id" bson:"id" validate:"required"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Kind         Kind               `json:"kind" bson:"kind" validate:"required,oneof=docker kubernetes custom"`
	Template     string             `json:"template,omitempty" bson:"template,omitempty"`
	Members      []Component        `json:"members,omitempty" bson:"members,omitempty" validate:"dive"`
	Bounds       geom.Rect          `json:"bounds" bson:"bounds"`
	MinWidth     float64            `json:"min_width" bson:"min_width" validate:"gte=0"`
	MinHeight    float64            `json:"min_height" bson:"min_height" validate:"gte=0"`
	ResourceMode resources.Mode     `json:"resource_mode" bson:"resource_mode" validate:"omitempty,oneof=auto manual"`
	ManualLimits *resources.Limits  `json:"manual_limits,omitempty" bson:"manual_limits,omitempty"`
	Resources    resources.Profile  `json:"resources" bson:"resources"`
	Ports        []string           `json:"ports,omitempty" bson:"ports,omitempty"`
	DefaultPorts []string           `json:"default_ports,omitempty" bson:"default_ports,omitempty"`
	Env          map[string]string  `json:"env,omitempty" bson:"env,omitempty"`
	Replicas     int                `json:"replicas,omitempty" bson:"replicas,omitempty" validate:"gte=0"`
	Accepts      []Category         `json:"accepts,omitempty" bson:"accepts,omitempty"`
	CurrentPage  int                `json:"current_page" bson:"current_page" validate:"gte=0"`
}

func (c Container) NodeID() string        { return c.ID }
func (c Container) NodeName() string      { return c.Name }
func (c Container) NodeBounds() geom.Rect { return c.Bounds }
func (Container) node()                   {}

// DropZone projects the container for drag hit-testing.
func (c Container) DropZone() geom.DropZone {
	return geom.DropZone{ID: c.ID, Bounds: c.Bounds}
}

// MemberIndex returns the position of component id in Members, or -1.
func (c Container) MemberIndex(id string) int {
	for i, m := range c.Members {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of c.
func (c Container) Clone() Container {
	if c.Members != nil {
		members := make([]Component, len(c.Members))
		for i, m := range c.Members {
			members[i] = m.Clone()
		}
		c.Members = members
	}
	if c.ManualLimits != nil {
		l := *c.ManualLimits
		c.ManualLimits = &l
	}
	c.Ports = cloneStrings(c.Ports)
	c.DefaultPorts = cloneStrings(c.DefaultPorts)
	c.Accepts = cloneCategories(c.Accepts)
	if c.Env != nil {
		env := make(map[string]string, len(c.Env))
		for k, v := range c.Env {
			env[k] = v
		}
		c.Env = env
	}
	return c
}

// =============================================================================
// Connection
// =============================================================================

// ConnectionType labels what an edge represents.
type ConnectionType string

// Connection types.
const (
	ConnectionDependsOn ConnectionType = "depends_on"
	ConnectionDataFlow  ConnectionType = "data_flow"
	ConnectionNetwork   ConnectionType = "network"
)

// Connection is a typed edge between two node ids.
type Connection struct {
	ID    string         `json:"id" bson:"id" validate:"required"`
	From  string         `json:"from" bson:"from" validate:"required"`
	To    string         `json:"to" bson:"to" validate:"required"`
	Type  ConnectionType `json:"type,omitempty" bson:"type,omitempty"`
	Label string         `json:"label,omitempty" bson:"label,omitempty"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneCategories(s []Category) []Category {
	if s == nil {
		return nil
	}
	return append([]Category(nil), s...)
}
