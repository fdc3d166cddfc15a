package cart

import "time"

// Item is one shopping cart row. A (user, dish, flavor) triple is unique:
// adding the same dish with the same flavor again increments Number instead
// of inserting a second row.
type Item struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	DishID     int64     `json:"dish_id" db:"dish_id"`
	Name       string    `json:"name" db:"name"`
	DishFlavor string    `json:"dish_flavor" db:"dish_flavor"`
	Number     int       `json:"number" db:"number"`
	Amount     int64     `json:"amount" db:"amount"` // unit price, cents
	Image      string    `json:"image" db:"image"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type AddItemRequest struct {
	DishID     int64  `json:"dish_id"`
	DishFlavor string `json:"dish_flavor"`
}
