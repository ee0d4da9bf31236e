package models

import "time"

// Product is a product row joined with its category and owner. Category and
// User are nil when the joined row is gone.
type Product struct {
	ID          string
	Name        string
	Description *string
	Price       float64
	CategoryID  string
	UserID      *string
	CreatedAt   time.Time

	Category *Category
	User     *User
}

type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	Price       float64           `json:"price"`
	Category    *CategoryResponse `json:"category"`
	User        *UserResponse     `json:"user"`
	CreatedAt   time.Time         `json:"createdAt"`
}

func ToProductResponse(p Product) ProductResponse {
	out := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   p.CreatedAt,
	}
	if p.Category != nil {
		c := ToCategoryResponse(*p.Category)
		out.Category = &c
	}
	if p.User != nil {
		u := ToUserResponse(*p.User)
		out.User = &u
	}
	return out
}

type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0,lte=9999999999.99,cents"`
	CategoryID  string  `json:"categoryId" binding:"required"`
}

// UpdateProductRequest is a partial update: nil fields are left untouched.
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gt=0,lte=9999999999.99,cents"`
	CategoryID  *string  `json:"categoryId" binding:"omitempty,min=1"`
}

func (r UpdateProductRequest) Empty() bool {
	return r.Name == nil && r.Description == nil && r.Price == nil && r.CategoryID == nil
}
