package export

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"github.com/matzehuels/stackcanvas/pkg/resources"
	"github.com/matzehuels/stackcanvas/pkg/stack"
	"github.com/matzehuels/stackcanvas/pkg/units"
)

// ManagedBy is the app.kubernetes.io/managed-by label value.
const ManagedBy = "stackcanvas"

// Kubernetes renders every kubernetes container of s as a multi-document
// YAML manifest. Containers of other kinds are skipped.
func Kubernetes(s stack.State, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range s.Containers {
		if c.Kind != stack.KindKubernetes {
			continue
		}
		objs, err := KubernetesObjects(c, opts)
		if err != nil {
			return nil, err
		}
		for _, obj := range objs {
			data, err := yaml.Marshal(obj)
			if err != nil {
				return nil, fmt.Errorf("marshal %s: %w", Name(c), err)
			}
			if buf.Len() > 0 {
				buf.WriteString("---\n")
			}
			buf.Write(data)
		}
	}
	return buf.Bytes(), nil
}

// KubernetesObjects builds the Deployment and, if c has ports, the Service
// for one container.
func KubernetesObjects(c stack.Container, opts Options) ([]any, error) {
	name := Name(c)
	labels := map[string]string{
		"app.kubernetes.io/name":       name,
		"app.kubernetes.io/managed-by": ManagedBy,
	}

	ports, err := containerPorts(c.Ports)
	if err != nil {
		return nil, fmt.Errorf("container %s: %w", name, err)
	}

	replicas := int32(c.Replicas)
	if replicas < 1 {
		replicas = 1
	}

	deployment := &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: opts.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec:       corev1.PodSpec{Containers: podContainers(c, ports, opts)},
			},
		},
	}

	objs := []any{deployment}
	if len(ports) == 0 {
		return objs, nil
	}

	svc := &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: opts.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{Selector: labels},
	}
	for _, p := range ports {
		svc.Spec.Ports = append(svc.Spec.Ports, corev1.ServicePort{
			Name:       p.Name,
			Port:       p.ContainerPort,
			TargetPort: intstr.FromInt32(p.ContainerPort),
			Protocol:   corev1.ProtocolTCP,
		})
	}
	return append(objs, svc), nil
}

// podContainers maps members to pod containers. The displayed profile is
// split evenly across members as limits; each member requests what it
// declares. An empty container gets a single placeholder.
func podContainers(c stack.Container, ports []corev1.ContainerPort, opts Options) []corev1.Container {
	limits := resourceList(stack.DisplayProfile(c), max(len(c.Members), 1))
	env := envVars(c.Env)

	if len(c.Members) == 0 {
		return []corev1.Container{{
			Name:      "app",
			Image:     "registry.k8s.io/pause:3.10",
			Ports:     ports,
			Env:       env,
			Resources: corev1.ResourceRequirements{Limits: limits},
		}}
	}

	names := uniqueNames(c.Members)
	out := make([]corev1.Container, len(c.Members))
	for i, m := range c.Members {
		out[i] = corev1.Container{
			Name:            names[i],
			Image:           image(m, opts),
			ImagePullPolicy: corev1.PullIfNotPresent,
			Env:             env,
			Resources: corev1.ResourceRequirements{
				Limits:   limits,
				Requests: memberRequests(m, limits),
			},
		}
	}
	// Ports belong to the first member serving traffic, else the first member.
	out[portOwner(c.Members)].Ports = ports
	return out
}

func portOwner(members []stack.Component) int {
	for i, m := range members {
		if m.Category == stack.CategoryFrontend || m.Category == stack.CategoryBackend {
			return i
		}
	}
	return 0
}

// resourceList converts CPU, memory and storage of p, divided by n.
func resourceList(p resources.Profile, n int) corev1.ResourceList {
	share := float64(n)
	list := corev1.ResourceList{}
	if cpu := millicores(p.CPU.Amount / share); cpu > 0 {
		list[corev1.ResourceCPU] = *resource.NewMilliQuantity(cpu, resource.DecimalSI)
	}
	if mem := mebibytes(p.Memory.Amount / share); mem > 0 {
		list[corev1.ResourceMemory] = *resource.NewQuantity(mem<<20, resource.BinarySI)
	}
	if disk := mebibytes(p.Storage.Amount * 1024 / share); disk > 0 {
		list[corev1.ResourceEphemeralStorage] = *resource.NewQuantity(disk<<20, resource.BinarySI)
	}
	return list
}

// memberRequests parses the member's own CPU and memory, capped at limits.
func memberRequests(m stack.Component, limits corev1.ResourceList) corev1.ResourceList {
	if m.Resources == nil {
		return nil
	}
	req := corev1.ResourceList{}
	if q, err := units.Parse(m.Resources.CPU, units.CPU); err == nil && q.Amount > 0 {
		req[corev1.ResourceCPU] = capAt(*resource.NewMilliQuantity(millicores(q.Amount), resource.DecimalSI), limits, corev1.ResourceCPU)
	}
	if q, err := units.Parse(m.Resources.Memory, units.Memory); err == nil && q.Amount > 0 {
		req[corev1.ResourceMemory] = capAt(*resource.NewQuantity(mebibytes(q.Amount)<<20, resource.BinarySI), limits, corev1.ResourceMemory)
	}
	if len(req) == 0 {
		return nil
	}
	return req
}

func capAt(q resource.Quantity, limits corev1.ResourceList, name corev1.ResourceName) resource.Quantity {
	if l, ok := limits[name]; ok && q.Cmp(l) > 0 {
		return l
	}
	return q
}

func containerPorts(ports []string) ([]corev1.ContainerPort, error) {
	out := make([]corev1.ContainerPort, 0, len(ports))
	for _, p := range ports {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		out = append(out, corev1.ContainerPort{
			Name:          "port-" + p,
			ContainerPort: int32(n),
			Protocol:      corev1.ProtocolTCP,
		})
	}
	return out, nil
}

func envVars(env map[string]string) []corev1.EnvVar {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]corev1.EnvVar, len(keys))
	for i, k := range keys {
		out[i] = corev1.EnvVar{Name: k, Value: env[k]}
	}
	return out
}
