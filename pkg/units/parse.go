package units

import (
	"regexp"
	"strconv"
	"strings"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
)

// quantityRe splits "<number><suffix>" with optional whitespace in between.
var quantityRe = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)\s*([a-z]*)$`)

// suffixFactors maps a lowercase suffix to the multiplier into the canonical
// unit. An empty suffix is only accepted where it appears in the table.
var suffixFactors = map[Dimension]map[string]float64{
	CPU: {
		"":      1,
		"m":     0.001,
		"core":  1,
		"cores": 1,
		"cpu":   1,
		"cpus":  1,
	},
	Memory: {
		"mb": 1,
		"gb": 1024,
	},
	Storage: {
		"mb": 1.0 / 1024,
		"gb": 1,
		"tb": 1024,
	},
	Network: {
		"mbps": 1,
		"gbps": 1000,
	},
}

// Parse converts free-form text into a canonical Quantity of dimension d.
// Matching is case-insensitive. Unknown suffixes, missing suffixes for
// memory/storage/network and negative numbers return an INVALID_QUANTITY error.
func Parse(text string, d Dimension) (Quantity, error) {
	factors, ok := suffixFactors[d]
	if !ok {
		return Quantity{}, errs.New(errs.ErrCodeInvalidQuantity, "unknown dimension %s", d)
	}

	m := quantityRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(text)))
	if m == nil {
		return Zero(d), errs.New(errs.ErrCodeInvalidQuantity, "cannot parse %q as %s", text, d)
	}

	factor, ok := factors[m[2]]
	if !ok {
		return Zero(d), errs.New(errs.ErrCodeInvalidQuantity, "unknown %s unit %q in %q", d, m[2], text)
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Zero(d), errs.Wrap(errs.ErrCodeInvalidQuantity, err, "cannot parse %q as %s", text, d)
	}

	return Quantity{Dimension: d, Amount: v * factor}, nil
}

// ParseOr is Parse without the error: malformed input yields fallback.
func ParseOr(text string, d Dimension, fallback Quantity) Quantity {
	q, err := Parse(text, d)
	if err != nil {
		return fallback
	}
	return q
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(text string, d Dimension) Quantity {
	q, err := Parse(text, d)
	if err != nil {
		panic(err)
	}
	return q
}
