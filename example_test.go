package exclusivity_test

import (
	"fmt"

	"github.com/alexshd/exclusivity"
)

func ExampleFullyOptimized() {
	// Two draws of sizes 2 and 3 from a population of 10.
	fmt.Printf("%.4f\n", exclusivity.FullyOptimized([]int{2, 3}, 10))
	fmt.Printf("%.4f\n", exclusivity.FullyOptimized([]int{2, 2}, 5))
	// Output:
	// 0.5333
	// 0.7000
}

func ExampleVariant_Evaluate() {
	for _, v := range exclusivity.Variants() {
		p, err := v.Evaluate([]int{1, 1}, 100)
		fmt.Printf("%s %.4f %v\n", v.Name, p, err)
	}
	// Output:
	// naive 0.0100 <nil>
	// algebraically_optimized 0.0100 <nil>
	// fully_optimized 0.0100 <nil>
}
