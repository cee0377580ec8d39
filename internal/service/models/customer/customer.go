package customer

import (
	"errors"
	"time"
)

// Customer represents a contact profile an order can be placed for.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrInvalidCustomer is returned when the customer reference of an order
// placement does not resolve to an existing profile.
var ErrInvalidCustomer = errors.New("invalid customer")
