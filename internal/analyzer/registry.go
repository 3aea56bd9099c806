package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "gap", "":
		return NewGapDetector(), nil
	case "even":
		return &EvenDetector{Count: 3}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
