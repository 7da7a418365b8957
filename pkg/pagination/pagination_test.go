package pagination

import "testing"

func TestItemsPerPage(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		header float64
		item   float64
		want   int
	}{
		{"default docker", 300, HeaderHeight, ItemHeight, 1},
		{"fits three", 200 + 3*80, HeaderHeight, ItemHeight, 3},
		{"partial row floors", 200 + 3*80 + 79, HeaderHeight, ItemHeight, 3},
		{"too small", 50, HeaderHeight, ItemHeight, 1},
		{"zero item height", 500, HeaderHeight, 0, 1},
		{"no header", 460, 0, 100, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ItemsPerPage(tt.height, tt.header, tt.item); got != tt.want {
				t.Errorf("ItemsPerPage(%v, %v, %v) = %d, want %d", tt.height, tt.header, tt.item, got, tt.want)
			}
		})
	}
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		name                    string
		current, total, perPage int
		want                    int
	}{
		{"valid last page", 2, 7, 3, 2},
		{"shrink to four members", 2, 4, 3, 1},
		{"empty", 3, 0, 3, 0},
		{"negative", -1, 10, 3, 0},
		{"exact multiple", 5, 9, 3, 2},
		{"zero per page", 4, 3, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampPage(tt.current, tt.total, tt.perPage); got != tt.want {
				t.Errorf("ClampPage(%d, %d, %d) = %d, want %d", tt.current, tt.total, tt.perPage, got, tt.want)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		page, total, per int
		start, end       int
	}{
		{0, 7, 3, 0, 3},
		{2, 7, 3, 6, 7},
		{9, 7, 3, 6, 7},
		{0, 0, 3, 0, 0},
	}

	for _, tt := range tests {
		start, end := Window(tt.page, tt.total, tt.per)
		if start != tt.start || end != tt.end {
			t.Errorf("Window(%d, %d, %d) = [%d, %d), want [%d, %d)", tt.page, tt.total, tt.per, start, end, tt.start, tt.end)
		}
	}
}

func TestCompute(t *testing.T) {
	s := Compute(200+80*3, 7, 5)
	if s.PerPage != 3 || s.Pages != 3 || s.Page != 2 || s.Total != 7 {
		t.Errorf("Compute = %+v", s)
	}
}
