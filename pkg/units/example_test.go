package units_test

import (
	"fmt"

	"github.com/matzehuels/stackcanvas/pkg/units"
)

func ExampleParse() {
	q, err := units.Parse("1.5 GB", units.Memory)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(q.Amount, q.Dimension.Unit())
	// Output: 1536 MB
}

func ExampleFormat() {
	fmt.Println(units.Format(units.Cores(1)))
	fmt.Println(units.Format(units.Cores(0.25)))
	fmt.Println(units.Format(units.Megabytes(1843.2)))
	fmt.Println(units.Format(units.Mbps(2500)))
	// Output:
	// 1 core
	// 250m
	// 1.9GB
	// 2.5Gbps
}
