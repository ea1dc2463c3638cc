package paging

// Page describes one page of a list.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number"`
	// Size is the fixed page size.
	Size int `json:"size"`
	// Total is the number of items across all pages.
	Total int `json:"total"`
	// TotalPages is never less than 1, so an empty list still renders as page 1/1.
	TotalPages int `json:"total_pages"`
	// Start and End bound the page inside the full list (End exclusive).
	Start int `json:"start"`
	End   int `json:"end"`
}

// Paginate computes the bounds of page within a list of total items.
// Out-of-range pages are clamped to the nearest valid page.
func Paginate(total, page, size int) Page {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page{
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: pages,
		Start:      start,
		End:        end,
	}
}

// Count returns the number of items on the page.
func (p Page) Count() int {
	return p.End - p.Start
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

// Index resolves item number n (1-based, on this page) to its absolute list index.
func (p Page) Index(n int) int {
	return AbsoluteIndex(p.Number, p.Size, n)
}

// AbsoluteIndex resolves item n of page to its index in the full list.
func AbsoluteIndex(page, size, n int) int {
	return (page-1)*size + (n - 1)
}

// Slice returns the items of the full list that fall on page p.
func Slice[T any](items []T, p Page) []T {
	start, end := p.Start, p.End
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
