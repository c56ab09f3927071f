package scrape

import "fmt"

// PaginationError represents a category fetch that could not complete. The
// partial listings fetched before the failure are discarded by the paginator.
type PaginationError struct {
	District string
	Category string
	Offset   int
	Cause    error
}

func (e *PaginationError) Error() string {
	return fmt.Sprintf("pagination error for district %s category %s at offset %d: %v",
		e.District, e.Category, e.Offset, e.Cause)
}

func (e *PaginationError) Unwrap() error {
	return e.Cause
}

// DistrictError represents a failure that is terminal for a single district:
// every category candidate failed, or assembly/persistence failed.
type DistrictError struct {
	District string
	Message  string
	Cause    error
}

func (e *DistrictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("district %s failed: %s: %v", e.District, e.Message, e.Cause)
	}
	return fmt.Sprintf("district %s failed: %s", e.District, e.Message)
}

func (e *DistrictError) Unwrap() error {
	return e.Cause
}
