package users

// DefaultPageSize is the number of table rows per page.
const DefaultPageSize = 5

// Window is one page of the roster.
type Window struct {
	Page        int
	PageCount   int
	PageSize    int
	Total       int
	Offset      int
	ShowingFrom int
	ShowingTo   int
	Items       []User
}

func (w Window) HasPrev() bool {
	return w.Page > 1
}

func (w Window) HasNext() bool {
	return w.Page < w.PageCount
}

// Page slices the roster for the requested page. The page is clamped to
// [1, PageCount]; the page count comes from the metadata total.
func (r *Roster) Page(page, pageSize int) Window {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	var meta Metadata
	if r != nil {
		meta = r.Metadata
	}
	pages := meta.PageCount(pageSize)
	page = ClampPage(page, pages)

	w := Window{
		Page:      page,
		PageCount: pages,
		PageSize:  pageSize,
		Total:     meta.Total,
		Offset:    (page - 1) * pageSize,
	}
	if r == nil || w.Offset >= len(r.Users) {
		return w
	}
	end := w.Offset + pageSize
	if end > len(r.Users) {
		end = len(r.Users)
	}
	w.Items = r.Users[w.Offset:end]
	w.ShowingFrom = w.Offset + 1
	w.ShowingTo = end
	return w
}

// ClampPage keeps page inside [1, pages]. With zero pages it returns 1.
func ClampPage(page, pages int) int {
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	return page
}
