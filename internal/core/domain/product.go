package domain

import "time"

// Product is a catalog item managed through the admin API.
type Product struct {
	ID          string    `json:"id" bson:"-"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Stock       int       `json:"stock" bson:"stock"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// ProductPatch holds the fields of a partial update. Nil means "unchanged".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
	Category    *string
	Stock       *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.ImageURL == nil && p.Category == nil && p.Stock == nil
}
