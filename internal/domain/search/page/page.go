package page

import "fmt"

// Page size limits, aligned with the serving defaults.
const (
	DefaultSize = 20
	MaxSize     = 100
)

// Page is one display window over the filtered record sequence.
// Numbering is 1-based; indexes derived from it are 0-based.
type Page struct {
	number int
	size   int
}

// New validates and creates a Page. Size is clamped to [DefaultSize
// when unset, MaxSize]; a number below 1 is an error rather than a
// clamp so navigation bugs surface instead of silently landing on
// page 1.
func New(number, size int) (Page, error) {
	if number < 1 {
		return Page{}, fmt.Errorf("page number must be >= 1, got %d", number)
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Page{number: number, size: size}, nil
}

// Reconstruct creates a Page without validation, for callers that
// already bounds-checked the number.
func Reconstruct(number, size int) Page {
	return Page{number: number, size: size}
}

// Number returns the 1-based page number.
func (p Page) Number() int { return p.number }

// Size returns the number of records per page.
func (p Page) Size() int { return p.size }

// StartIndex returns the 0-based index of the page's first record in
// the filtered sequence.
func (p Page) StartIndex() int { return (p.number - 1) * p.size }

// Next returns the following page at the same size.
func (p Page) Next() Page { return Page{number: p.number + 1, size: p.size} }

// Previous returns the preceding page at the same size; calling it on
// page 1 returns page 1.
func (p Page) Previous() Page {
	if p.number <= 1 {
		return p
	}
	return Page{number: p.number - 1, size: p.size}
}
