package models

// Category is a legal service category offered on the first wizard step
type Category struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Payable       bool     `json:"payable"`
	PriceKopecks  int64    `json:"price_kopecks,omitempty"`
	SortOrder     int      `json:"-"`
	Subcategories []string `json:"subcategories,omitempty"`
}
