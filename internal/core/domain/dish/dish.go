package dish

import "time"

type Status int

const (
	StatusDisabled Status = 0 // not for sale
	StatusEnabled  Status = 1 // on sale
)

// Dish is a menu item. Flavors live in their own table and reference the
// dish by id; the pair is written parent-first so the children can carry
// the generated identifier.
type Dish struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Price      int64     `json:"price" db:"price"` // cents
	Image      string    `json:"image" db:"image"`
	Description string   `json:"description" db:"description"`
	Status     Status    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Flavor is a variant option attached to a dish (e.g. spiciness, sweetness).
type Flavor struct {
	ID     int64  `json:"id" db:"id"`
	DishID int64  `json:"dish_id" db:"dish_id"`
	Name   string `json:"name" db:"name"`
	Value  string `json:"value" db:"value"`
}

// View is the assembled read model served to customers: the dish together
// with its flavors. This is the unit the cache stores and invalidates.
type View struct {
	Dish
	Flavors []Flavor `json:"flavors"`
}

type CreateDishRequest struct {
	Name        string   `json:"name"`
	CategoryID  int64    `json:"category_id"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Flavors     []Flavor `json:"flavors"`
}

type UpdateDishRequest struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	CategoryID  int64    `json:"category_id"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Flavors     []Flavor `json:"flavors"`
}
