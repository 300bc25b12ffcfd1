package domain

// Product is an immutable snapshot taken at catalog-fetch or add-to-cart time.
// Cart entries are copies, not live references: a later price change on the
// server does not retroactively update an item already added.
type Product struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
}

// Category doubles as a catalog facet and a filter key.
type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
