package domain

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage normalises number (min 1) and applies size.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	return Page{Number: number, Size: size}
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}
