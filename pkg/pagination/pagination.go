// Package pagination computes how many container members fit on one page and
// keeps a container's active page index valid.
//
// Both [ItemsPerPage] and [ClampPage] must be re-run after every resize and
// every membership change; a page index left pointing past the last page
// renders an empty view.
package pagination

import "math"

// Layout constants for the member list inside a container, in logical pixels.
const (
	HeaderHeight = 140.0 // title bar, kind badge and resource summary
	FixedChrome  = 60.0  // pager controls and padding
	ItemHeight   = 80.0  // one member row
)

// ItemsPerPage returns max(1, floor((containerHeight - headerHeight - FixedChrome) / itemHeight)).
// A non-positive itemHeight yields 1.
func ItemsPerPage(containerHeight, headerHeight, itemHeight float64) int {
	if itemHeight <= 0 {
		return 1
	}
	n := int(math.Floor((containerHeight - headerHeight - FixedChrome) / itemHeight))
	if n < 1 {
		return 1
	}
	return n
}

// Pages returns the number of pages needed for total items, at least 1.
func Pages(total, perPage int) int {
	if perPage < 1 {
		perPage = 1
	}
	if total <= 0 {
		return 1
	}
	return (total + perPage - 1) / perPage
}

// ClampPage returns min(current, max(0, ceil(total/perPage) - 1)).
// Negative pages clamp to 0.
func ClampPage(current, total, perPage int) int {
	last := Pages(total, perPage) - 1
	if current > last {
		current = last
	}
	if current < 0 {
		return 0
	}
	return current
}

// Window returns the half-open index range [start, end) of the items shown on
// page. page is clamped first.
func Window(page, total, perPage int) (start, end int) {
	if perPage < 1 {
		perPage = 1
	}
	page = ClampPage(page, total, perPage)
	start = page * perPage
	end = start + perPage
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}
	return start, end
}

// State is the pagination view of one container.
type State struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

// Compute derives the full pagination state for a container of the given
// height holding total members, with page clamped.
func Compute(height float64, total, page int) State {
	per := ItemsPerPage(height, HeaderHeight, ItemHeight)
	return State{
		Page:    ClampPage(page, total, per),
		PerPage: per,
		Pages:   Pages(total, per),
		Total:   total,
	}
}
