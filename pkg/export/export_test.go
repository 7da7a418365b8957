package export

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/matzehuels/stackcanvas/pkg/geom"
	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

func exportState() stack.State {
	pod, _ := stack.NewContainer(stack.KubernetesTemplate(), geom.Point{},
		stack.Component{ID: "api", Name: "Orders API", Technology: "Go", Category: stack.CategoryBackend,
			Resources: &resources.Requirements{CPU: "500m", Memory: "512MB"}},
		stack.Component{ID: "worker", Name: "Worker", Technology: "Python"},
	)
	pod.ID = "pod"
	pod.Name = "Orders Pod"
	pod.Env = map[string]string{"LOG_LEVEL": "info"}

	box, _ := stack.NewContainer(stack.DockerTemplate(), geom.Point{X: 800},
		stack.Component{ID: "web", Name: "Web", Technology: "React", Category: stack.CategoryFrontend,
			Resources: &resources.Requirements{CPU: "1", Memory: "1GB"}},
	)
	box.ID = "box"
	box.Name = "Storefront"

	return stack.State{Name: "My Shop", Containers: []stack.Container{pod, box}}
}

func splitDocs(data []byte) [][]byte {
	return bytes.Split(data, []byte("---\n"))
}

func TestKubernetes(t *testing.T) {
	out, err := Kubernetes(exportState(), Options{Namespace: "shop", Registry: "ghcr.io/acme/"})
	if err != nil {
		t.Fatalf("Kubernetes: %v", err)
	}
	docs := splitDocs(out)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2 (deployment, service)\n%s", len(docs), out)
	}

	var dep appsv1.Deployment
	if err := sigsyaml.Unmarshal(docs[0], &dep); err != nil {
		t.Fatalf("unmarshal deployment: %v", err)
	}
	if dep.Kind != "Deployment" || dep.Name != "orders-pod" || dep.Namespace != "shop" {
		t.Errorf("deployment meta = %s %s/%s", dep.Kind, dep.Namespace, dep.Name)
	}
	if dep.Spec.Replicas == nil || *dep.Spec.Replicas != 3 {
		t.Errorf("replicas = %v, want 3", dep.Spec.Replicas)
	}

	containers := dep.Spec.Template.Spec.Containers
	if len(containers) != 2 {
		t.Fatalf("pod containers = %d, want 2", len(containers))
	}
	api := containers[0]
	if api.Name != "orders-api" || api.Image != "ghcr.io/acme/go:latest" {
		t.Errorf("container = %s %s", api.Name, api.Image)
	}
	if len(api.Ports) != 3 {
		t.Errorf("ports on backend member = %d, want 3", len(api.Ports))
	}
	if len(containers[1].Ports) != 0 {
		t.Error("ports should be attached to one member only")
	}

	// Display profile: 0.6 cores and 614.4MB, split across two members.
	cpu := api.Resources.Limits[corev1.ResourceCPU]
	if got := cpu.String(); got != "300m" {
		t.Errorf("cpu limit = %s, want 300m", got)
	}
	mem := api.Resources.Limits[corev1.ResourceMemory]
	if got := mem.String(); got != "308Mi" {
		t.Errorf("memory limit = %s, want 308Mi", got)
	}
	req := api.Resources.Requests[corev1.ResourceCPU]
	if got := req.String(); got != "300m" {
		t.Errorf("cpu request = %s, want capped at 300m", got)
	}
	if containers[1].Resources.Requests != nil {
		t.Error("member without requirements should not request resources")
	}
	if len(api.Env) != 1 || api.Env[0].Name != "LOG_LEVEL" {
		t.Errorf("env = %v", api.Env)
	}

	var svc corev1.Service
	if err := sigsyaml.Unmarshal(docs[1], &svc); err != nil {
		t.Fatalf("unmarshal service: %v", err)
	}
	if svc.Kind != "Service" || len(svc.Spec.Ports) != 3 || svc.Spec.Ports[0].Port != 80 {
		t.Errorf("service = %+v", svc.Spec.Ports)
	}
	if svc.Spec.Selector["app.kubernetes.io/name"] != "orders-pod" {
		t.Errorf("selector = %v", svc.Spec.Selector)
	}
}

func TestKubernetesManualLimits(t *testing.T) {
	s := exportState()
	limits := resources.Limits{CPU: units.Cores(2), Memory: units.Megabytes(4096)}
	s.Containers[0] = stack.SetResourceMode(s.Containers[0], resources.ModeManual, &limits)

	objs, err := KubernetesObjects(s.Containers[0], Options{})
	if err != nil {
		t.Fatalf("KubernetesObjects: %v", err)
	}
	dep := objs[0].(*appsv1.Deployment)
	cpu := dep.Spec.Template.Spec.Containers[0].Resources.Limits[corev1.ResourceCPU]
	if got := cpu.String(); got != "1" {
		t.Errorf("cpu limit = %s, want 1 (2 cores over 2 members)", got)
	}
}

func TestKubernetesEmptyAndInvalid(t *testing.T) {
	empty, _ := stack.NewContainer(stack.KubernetesTemplate(), geom.Point{})
	empty.Name = "idle"
	objs, err := KubernetesObjects(empty, Options{})
	if err != nil {
		t.Fatalf("KubernetesObjects: %v", err)
	}
	if len(objs) != 1 {
		t.Errorf("objects = %d, want deployment only (no ports assigned)", len(objs))
	}
	dep := objs[0].(*appsv1.Deployment)
	if c := dep.Spec.Template.Spec.Containers; len(c) != 1 || c[0].Name != "app" {
		t.Errorf("placeholder containers = %v", c)
	}

	empty.Ports = []string{"http"}
	if _, err := KubernetesObjects(empty, Options{}); err == nil {
		t.Error("non-numeric port should fail")
	}
}

func TestCompose(t *testing.T) {
	out, err := Compose(exportState(), Options{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	var file ComposeFile
	if err := yaml.Unmarshal(out, &file); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if file.Name != "my-shop" {
		t.Errorf("name = %q, want my-shop", file.Name)
	}
	if len(file.Services) != 1 {
		t.Fatalf("services = %v, want storefront only", file.Services)
	}
	svc, ok := file.Services["storefront"]
	if !ok {
		t.Fatalf("missing storefront service:\n%s", out)
	}
	if svc.Image != "react:latest" {
		t.Errorf("image = %q", svc.Image)
	}
	if strings.Join(svc.Ports, ",") != "3000:3000,5000:5000" {
		t.Errorf("ports = %v", svc.Ports)
	}
	if svc.Deploy == nil || svc.Deploy.Resources.Limits.CPUs != "1.2" || svc.Deploy.Resources.Limits.Memory != "1229M" {
		t.Errorf("deploy = %+v", svc.Deploy)
	}
	if svc.Labels["dev.stackcanvas.members"] != "Web" {
		t.Errorf("labels = %v", svc.Labels)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name, id, want string
	}{
		{"Orders Pod", "x", "orders-pod"},
		{"  API__v2!! ", "x", "api-v2"},
		{"", "7f3c2a10-aaaa", "container-7f3c2a10"},
		{strings.Repeat("a", 70), "x", strings.Repeat("a", 63)},
	}
	for _, tt := range tests {
		if got := Name(stack.Container{ID: tt.id, Name: tt.name}); got != tt.want {
			t.Errorf("Name(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
