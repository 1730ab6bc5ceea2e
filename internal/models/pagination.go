// ABOUTME: Pagination metadata models for list endpoints
// ABOUTME: Converts the API's meta block into a normalized PageWindow

package models

// PageMeta is the raw meta block of a paginated response.
// from/to are null when the page is empty.
type PageMeta struct {
	CurrentPage int  `json:"current_page"`
	LastPage    int  `json:"last_page"`
	PerPage     int  `json:"per_page"`
	Total       int  `json:"total"`
	From        *int `json:"from"`
	To          *int `json:"to"`
}

// PageLinks holds the navigation URLs of a paginated response
type PageLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

// PageWindow describes which slice of a collection a page holds
type PageWindow struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	TotalItems  int `json:"total"`
	FirstIndex  int `json:"from"`
	LastIndex   int `json:"to"`
}

// Window normalizes the meta block so that 1 <= current <= last (when
// last >= 1) and first <= last index <= total.
func (m PageMeta) Window() PageWindow {
	w := PageWindow{
		CurrentPage: m.CurrentPage,
		LastPage:    m.LastPage,
		PerPage:     m.PerPage,
		TotalItems:  m.Total,
	}
	if w.TotalItems < 0 {
		w.TotalItems = 0
	}
	if w.LastPage >= 1 {
		if w.CurrentPage < 1 {
			w.CurrentPage = 1
		}
		if w.CurrentPage > w.LastPage {
			w.CurrentPage = w.LastPage
		}
	}
	if m.From != nil {
		w.FirstIndex = *m.From
	}
	if m.To != nil {
		w.LastIndex = *m.To
	}
	if w.LastIndex > w.TotalItems {
		w.LastIndex = w.TotalItems
	}
	if w.FirstIndex > w.LastIndex {
		w.FirstIndex = w.LastIndex
	}
	return w
}
