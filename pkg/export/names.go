package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/stackcanvas/pkg/stack"
)

// maxNameLength is the DNS-1123 label limit.
const maxNameLength = 63

// Options configures manifest generation.
type Options struct {
	// Namespace for Kubernetes objects. Empty leaves the namespace unset.
	Namespace string

	// Registry prefixes generated image names, e.g. "ghcr.io/acme".
	Registry string
}

// Name returns the DNS-1123 label used for a container's objects.
func Name(c stack.Container) string {
	if n := slug(c.Name); n != "" {
		return n
	}
	id := slug(c.ID)
	if len(id) > 8 {
		id = id[:8]
	}
	return "container-" + id
}

// slug lowercases s and collapses runs of other characters into '-'.
func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if len(out) > maxNameLength {
		out = strings.TrimSuffix(out[:maxNameLength], "-")
	}
	return out
}

// image names the image for a member: its technology, else its name.
func image(m stack.Component, opts Options) string {
	name := slug(m.Technology)
	if name == "" {
		name = slug(m.Name)
	}
	if name == "" {
		name = "app"
	}
	if opts.Registry != "" {
		return strings.TrimSuffix(opts.Registry, "/") + "/" + name + ":latest"
	}
	return name + ":latest"
}

// uniqueNames assigns each member a distinct slug within one container.
func uniqueNames(members []stack.Component) []string {
	seen := make(map[string]int, len(members))
	out := make([]string, len(members))
	for i, m := range members {
		n := slug(m.Name)
		if n == "" {
			n = "member"
		}
		seen[n]++
		if k := seen[n]; k > 1 {
			n = n + "-" + strconv.Itoa(k)
		}
		out[i] = n
	}
	return out
}

// millicores converts cores to whole millicores, rounding up.
func millicores(cores float64) int64 {
	return int64(math.Ceil(cores*1000 - 1e-9))
}

// mebibytes rounds megabytes up to a whole number.
func mebibytes(mb float64) int64 {
	return int64(math.Ceil(mb - 1e-9))
}
