package units

import (
	"encoding/json"
	"math"
	"testing"

	errs "github.com/matzehuels/stackcanvas/pkg/errors"
)

const tolerance = 1e-9

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		dim  Dimension
		want float64
	}{
		{"2 cores", CPU, 2},
		{"1 core", CPU, 1},
		{"500m", CPU, 0.5},
		{"250M", CPU, 0.25},
		{"1.5", CPU, 1.5},
		{"4 CPU", CPU, 4},
		{" 0.25 cores ", CPU, 0.25},

		{"512MB", Memory, 512},
		{"1.5 GB", Memory, 1536},
		{"1gb", Memory, 1024},
		{"2.0GB", Memory, 2048},

		{"512MB", Storage, 0.5},
		{"20GB", Storage, 20},
		{"1TB", Storage, 1024},

		{"100Mbps", Network, 100},
		{"1 Gbps", Network, 1000},
		{"2.5gbps", Network, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			q, err := Parse(tt.text, tt.dim)
			if err != nil {
				t.Fatalf("Parse(%q, %s) error: %v", tt.text, tt.dim, err)
			}
			if q.Dimension != tt.dim {
				t.Errorf("Dimension = %v, want %v", q.Dimension, tt.dim)
			}
			if math.Abs(q.Amount-tt.want) > tolerance {
				t.Errorf("Amount = %v, want %v", q.Amount, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text string
		dim  Dimension
	}{
		{"", CPU},
		{"lots", CPU},
		{"2 GHz", CPU},
		{"-1", CPU},
		{"512", Memory},
		{"512KB", Memory},
		{"1TB", Memory},
		{"20", Storage},
		{"100", Network},
		{"1 Tbps", Network},
	}

	for _, tt := range tests {
		t.Run(tt.dim.String()+"/"+tt.text, func(t *testing.T) {
			_, err := Parse(tt.text, tt.dim)
			if err == nil {
				t.Fatalf("Parse(%q, %s) = nil error, want failure", tt.text, tt.dim)
			}
			if !errs.Is(err, errs.ErrCodeInvalidQuantity) {
				t.Errorf("code = %v, want %v", errs.GetCode(err), errs.ErrCodeInvalidQuantity)
			}
		})
	}
}

func TestParseOr(t *testing.T) {
	fallback := Megabytes(256)
	if got := ParseOr("garbage", Memory, fallback); got != fallback {
		t.Errorf("ParseOr(garbage) = %v, want %v", got, fallback)
	}
	if got := ParseOr("1GB", Memory, fallback); got.Amount != 1024 {
		t.Errorf("ParseOr(1GB) = %v, want 1024", got.Amount)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"one core singular", Cores(1), "1 core"},
		{"two cores", Cores(2), "2 cores"},
		{"fractional cores", Cores(1.8), "1.8 cores"},
		{"float noise cores", Cores((1 + 0.5) * 1.2), "1.8 cores"},
		{"cores round up", Cores(1.81), "1.9 cores"},
		{"millicores", Cores(0.5), "500m"},
		{"millicores round up", Cores(0.2501), "251m"},
		{"zero cpu", Cores(0), "0m"},

		{"memory MB", Megabytes(512), "512MB"},
		{"memory MB round up", Megabytes(511.2), "512MB"},
		{"memory GB", Megabytes(1536), "1.5GB"},
		{"memory GB whole", Megabytes(2048), "2.0GB"},
		{"memory ceiling", Megabytes(1843.2), "1.9GB"},

		{"storage GB", Gigabytes(1), "1GB"},
		{"storage fraction", Gigabytes(0.5), "0.5GB"},
		{"storage float noise", Gigabytes(1.2), "1.2GB"},
		{"storage TB", Gigabytes(2048), "2.0TB"},

		{"network Mbps", Mbps(10), "10Mbps"},
		{"network round up", Mbps(12.1), "13Mbps"},
		{"network Gbps", Mbps(1000), "1Gbps"},
		{"network Gbps fraction", Mbps(1200), "1.2Gbps"},

		{"negative clamps", Cores(-3), "0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.q); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.q.Amount, got, tt.want)
			}
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	quantities := []Quantity{
		Cores(1), Cores(2), Cores(1.5), Cores(0.5), Cores(0.1), Cores(0.75),
		Megabytes(128), Megabytes(512), Megabytes(1024), Megabytes(1536), Megabytes(4096),
		Gigabytes(1), Gigabytes(0.5), Gigabytes(20), Gigabytes(1024), Gigabytes(1536),
		Mbps(10), Mbps(100), Mbps(1000), Mbps(2500),
	}

	for _, q := range quantities {
		t.Run(q.Dimension.String()+"/"+Format(q), func(t *testing.T) {
			back, err := Parse(Format(q), q.Dimension)
			if err != nil {
				t.Fatalf("Parse(Format(%v)) error: %v", q, err)
			}
			if math.Abs(back.Amount-q.Amount) > 1e-6 {
				t.Errorf("round trip = %v, want %v", back.Amount, q.Amount)
			}
		})
	}
}

func TestQuantityArithmetic(t *testing.T) {
	q := Cores(1).Add(Cores(0.5)).Scale(2)
	if q.Amount != 3 {
		t.Errorf("Amount = %v, want 3", q.Amount)
	}

	if got := Cores(1).Add(Megabytes(512)); got.Amount != 1 {
		t.Errorf("Add across dimensions = %v, want 1", got.Amount)
	}

	if !Cores(2).Exceeds(Cores(1)) || Cores(1).Exceeds(Cores(1)) {
		t.Error("Exceeds should be strict")
	}
}

func TestDimensionJSON(t *testing.T) {
	data, err := json.Marshal(Megabytes(512))
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	want := `{"dimension":"memory","amount":512}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var q Quantity
	if err := json.Unmarshal([]byte(`{"dimension":"network","amount":10}`), &q); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if q.Dimension != Network || q.Amount != 10 {
		t.Errorf("Unmarshal = %+v, want network/10", q)
	}

	if err := json.Unmarshal([]byte(`{"dimension":"gpu"}`), &q); err == nil {
		t.Error("Unmarshal unknown dimension should fail")
	}
}
