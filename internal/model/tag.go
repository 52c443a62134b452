package model

// Tag is an entry of the global tag dictionary shared by all items.
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	// ItemCount is populated by GetTags.
	ItemCount int `json:"item_count" db:"item_count"`
}
