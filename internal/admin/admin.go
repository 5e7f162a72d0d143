// Package admin backs the admin console: the user directory and the
// knowledge-base document catalog. Both are in-memory and seeded with demo
// data; the RAG service owns the real documents.
package admin

// PerPage is the page size of both admin listings.
const PerPage = 10

// Page describes one slice of a listing. Pages are 1-based.
type Page struct {
	Number int
	Total  int // number of pages
	Start  int // index of the first item, inclusive
	End    int // index past the last item
	Count  int // number of items across all pages
}

// Paginate computes page number of n items split perPage at a time. Pages
// outside [1, Total] are empty.
func Paginate(n, page, perPage int) Page {
	if perPage <= 0 {
		perPage = PerPage
	}
	p := Page{Number: page, Count: n, Total: (n + perPage - 1) / perPage}
	if page < 1 || page > p.Total {
		return p
	}
	p.Start = (page - 1) * perPage
	p.End = min(p.Start+perPage, n)
	return p
}

// Empty reports whether the page holds no items.
func (p Page) Empty() bool { return p.End <= p.Start }
