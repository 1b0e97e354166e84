package services

// Page is one page of a listing.
type Page[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

func newPage[T any](items []T, total int64, page, pageSize int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Count: total, Page: page, PageSize: pageSize, Results: items}
}

func normalizePaging(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
