package models

// Product is the storage representation of a catalog entry.
// The ID is supplied by the caller, never generated by the store.
type Product struct {
	ID          int     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name        string  `json:"name" gorm:"type:varchar(100)"`
	Description string  `json:"description" gorm:"type:varchar(255)"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category" gorm:"type:varchar(255)"`
}

// TableName pins the table to "products".
func (Product) TableName() string {
	return "products"
}

// ProductInput is the transport representation used for request bodies.
// Fields are pointers so that validation can tell a missing field from a zero value.
type ProductInput struct {
	ID          *int     `json:"id" validate:"required,gt=0"`
	Name        *string  `json:"name" validate:"required,max=100"`
	Description *string  `json:"description" validate:"required,max=255"`
	Price       *float64 `json:"price" validate:"required"`
	Quantity    *int     `json:"quantity" validate:"required"`
	Category    *string  `json:"category" validate:"omitempty,max=255"`
}

// ToModel converts the input into its storage representation. Missing fields become zero values.
func (in ProductInput) ToModel() *Product {
	return &Product{
		ID:          value(in.ID),
		Name:        value(in.Name),
		Description: value(in.Description),
		Price:       value(in.Price),
		Quantity:    value(in.Quantity),
		Category:    value(in.Category),
	}
}

func value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
