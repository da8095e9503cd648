package utils

// DefaultPerPage is the number of items shown on a listing page when the
// configuration does not override it.
const DefaultPerPage = 10

// Page is one window of an ordered collection plus the metadata the
// templates need to render pagination controls.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

func (p Page[T]) HasNext() bool     { return p.Number < p.TotalPages }
func (p Page[T]) HasPrevious() bool { return p.Number > 1 }
func (p Page[T]) NextNumber() int   { return p.Number + 1 }
func (p Page[T]) PrevNumber() int   { return p.Number - 1 }

// Paginate slices items into the requested page. A page below 1 is
// treated as the first page and a page past the end returns the last
// valid page; a paginated request never fails. An empty collection
// yields a single empty page.
func Paginate[T any](items []T, page, perPage int) Page[T] {
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	total := (len(items) + perPage - 1) / perPage
	if total < 1 {
		total = 1
	}

	if page < 1 {
		page = 1
	}
	if page > total {
		page = total
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      items[start:end],
		Number:     page,
		TotalPages: total,
		TotalItems: len(items),
	}
}
