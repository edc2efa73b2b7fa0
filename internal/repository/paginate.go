package repository

// PageSize is the fixed number of rows on one list page.
const PageSize = 10

// Page describes one page of a paginated list.
type Page struct {
	Number   int // 1-based page number after clamping
	Size     int // rows per page
	Total    int // total rows matching the filter
	NumPages int // at least 1, even for an empty list
}

// Paginate clamps the requested page into [1, NumPages].  Anything below
// one (including an unparsable page, passed as 0) becomes the first page
// and anything past the end becomes the last page.
func Paginate(total, number, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > pages {
		number = pages
	}
	return Page{Number: number, Size: size, Total: total, NumPages: pages}
}

// Offset is the number of rows to skip for this page.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.NumPages }

// Prev is the previous page number.
func (p Page) Prev() int { return p.Number - 1 }

// Next is the next page number.
func (p Page) Next() int { return p.Number + 1 }
