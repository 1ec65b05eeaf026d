package handler

import "time"

type createProductRequest struct {
	Name        string   `json:"name" example:"Linen shirt"`
	Description string   `json:"description" example:"Relaxed fit, breathable linen"`
	Price       *float64 `json:"price" example:"49.9"`
	Image       string   `json:"image,omitempty" example:"https://cdn.example.com/shirt.jpg"`
	Category    string   `json:"category,omitempty" example:"shirts"`
	Stock       int      `json:"stock" example:"12"`
}

// updateProductRequest is a partial update: omitted fields stay unchanged and
// an empty image or category clears it.
type updateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category,omitempty"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type productListResponse struct {
	Data []productResponse `json:"data"`
}
