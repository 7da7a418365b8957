package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// ComposeFile is the subset of the compose file format we emit.
type ComposeFile struct {
	Name     string                    `yaml:"name,omitempty"`
	Services map[string]ComposeService `yaml:"services"`
}

// ComposeService is one compose service.
type ComposeService struct {
	Image       string            `yaml:"image"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Deploy      *ComposeDeploy    `yaml:"deploy,omitempty"`
}

// ComposeDeploy carries replicas and resource limits.
type ComposeDeploy struct {
	Replicas  int              `yaml:"replicas,omitempty"`
	Resources ComposeResources `yaml:"resources"`
}

// ComposeResources wraps the limits block.
type ComposeResources struct {
	Limits ComposeLimits `yaml:"limits"`
}

// ComposeLimits are compose resource limits: cpus as a decimal string and
// memory with a unit suffix.
type ComposeLimits struct {
	CPUs   string `yaml:"cpus,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

// Compose renders every docker container of s as one compose service.
func Compose(s stack.State, opts Options) ([]byte, error) {
	file := ComposeFile{
		Name:     slug(s.Name),
		Services: make(map[string]ComposeService),
	}
	for _, c := range s.Containers {
		if c.Kind != stack.KindDocker {
			continue
		}
		name := Name(c)
		if _, dup := file.Services[name]; dup {
			return nil, fmt.Errorf("duplicate service name %q", name)
		}
		file.Services[name] = composeService(c, opts)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("encode compose: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode compose: %w", err)
	}
	return buf.Bytes(), nil
}

func composeService(c stack.Container, opts Options) ComposeService {
	svc := ComposeService{
		Image:       "busybox:latest",
		Environment: c.Env,
		Labels:      map[string]string{"app.kubernetes.io/managed-by": ManagedBy},
	}
	if len(c.Members) > 0 {
		svc.Image = image(c.Members[portOwner(c.Members)], opts)
		names := make([]string, len(c.Members))
		for i, m := range c.Members {
			names[i] = m.Name
		}
		svc.Labels["dev.stackcanvas.members"] = strings.Join(names, ",")
	}
	for _, p := range c.Ports {
		svc.Ports = append(svc.Ports, p+":"+p)
	}

	p := stack.DisplayProfile(c)
	deploy := &ComposeDeploy{}
	if c.Replicas > 1 {
		deploy.Replicas = c.Replicas
	}
	if cpu := millicores(p.CPU.Amount); cpu > 0 {
		deploy.Resources.Limits.CPUs = strconv.FormatFloat(float64(cpu)/1000, 'f', -1, 64)
	}
	if mem := mebibytes(p.Memory.Amount); mem > 0 {
		deploy.Resources.Limits.Memory = strconv.FormatInt(mem, 10) + "M"
	}
	svc.Deploy = deploy
	return svc
}
