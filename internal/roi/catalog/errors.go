// internal/roi/catalog/errors.go
package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownIndustry = errors.New("UNKNOWN_INDUSTRY")
	ErrUnknownSolution = errors.New("UNKNOWN_SOLUTION")
	ErrInvalidCatalog  = errors.New("INVALID_CATALOG")
)

// UnknownIndustryError is returned when an industry name is not in the catalog.
type UnknownIndustryError struct {
	Industry string
}

func (e *UnknownIndustryError) Error() string {
	return fmt.Sprintf("unknown industry %q", e.Industry)
}

func (e *UnknownIndustryError) Is(target error) bool {
	return target == ErrUnknownIndustry
}

// UnknownSolutionError is returned when a solution does not belong to the
// resolved industry.
type UnknownSolutionError struct {
	Industry string
	Solution string
}

func (e *UnknownSolutionError) Error() string {
	return fmt.Sprintf("unknown solution %q for industry %q", e.Solution, e.Industry)
}

func (e *UnknownSolutionError) Is(target error) bool {
	return target == ErrUnknownSolution
}
