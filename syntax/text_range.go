package syntax

import "fmt"

// TextRange is a half-open byte interval [Start, End) into the source text.
type TextRange struct {
	Start int
	End   int
}

func NewRange(start, end int) TextRange {
	if end < start {
		panic(fmt.Sprintf("invalid text range %d..%d", start, end))
	}
	return TextRange{Start: start, End: end}
}

// EmptyRange returns the zero-length range at offset.
func EmptyRange(offset int) TextRange {
	return TextRange{Start: offset, End: offset}
}

func (r TextRange) Len() int {
	return r.End - r.Start
}

func (r TextRange) IsEmpty() bool {
	return r.Start == r.End
}

// Contains reports whether offset lies inside the half-open range.
func (r TextRange) Contains(offset int) bool {
	return r.Start <= offset && offset < r.End
}

// ContainsInclusive also accepts offset == End.
func (r TextRange) ContainsInclusive(offset int) bool {
	return r.Start <= offset && offset <= r.End
}

func (r TextRange) ContainsRange(other TextRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// Intersect returns the overlap of r and other, if any.
func (r TextRange) Intersect(other TextRange) (TextRange, bool) {
	start := max(r.Start, other.Start)
	end := min(r.End, other.End)
	if end < start {
		return TextRange{}, false
	}
	return TextRange{Start: start, End: end}, true
}

// Cover returns the smallest range containing both r and other.
func (r TextRange) Cover(other TextRange) TextRange {
	return TextRange{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

func (r TextRange) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}
