package units

import (
	"fmt"
	"math"
	"strconv"
)

// ceilEpsilon absorbs float noise such as 1.7999999999999998 before rounding up.
const ceilEpsilon = 1e-9

// Format renders q in a human-readable unit. Every rounding step is a ceiling.
func Format(q Quantity) string {
	v := math.Max(q.Amount, 0)

	switch q.Dimension {
	case CPU:
		if v >= 1 {
			cores := ceilTenth(v)
			if cores == 1 {
				return "1 core"
			}
			return trim(cores) + " cores"
		}
		return fmt.Sprintf("%dm", int64(ceil(v*1000)))

	case Memory:
		mb := ceil(v)
		if mb >= 1024 {
			return fmt.Sprintf("%.1fGB", ceilTenth(mb/1024))
		}
		return fmt.Sprintf("%dMB", int64(mb))

	case Storage:
		if v >= 1024 {
			return fmt.Sprintf("%.1fTB", ceilTenth(v/1024))
		}
		return trim(ceilTenth(v)) + "GB"

	case Network:
		if v >= 1000 {
			return trim(ceilTenth(v/1000)) + "Gbps"
		}
		return fmt.Sprintf("%dMbps", int64(ceil(v)))
	}

	return trim(v)
}

func ceil(v float64) float64 {
	return math.Ceil(v - ceilEpsilon)
}

func ceilTenth(v float64) float64 {
	return ceil(v*10) / 10
}

func trim(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
