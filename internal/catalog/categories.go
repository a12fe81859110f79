package catalog

import "time"

// Category and media rows live in the remote store only; the gateway reads
// them for the admin surface.

type MainCategory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type SubCategory struct {
	ID             string    `json:"id"`
	MainCategoryID string    `json:"main_category_id"`
	Name           string    `json:"name"`
	SortOrder      int       `json:"sort_order"`
	CreatedAt      time.Time `json:"created_at"`
}

type Media struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}
