package domain

import (
	"errors"
	"time"
)

var (
	// ErrCustomerNotFound is returned when a customer id does not exist.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrDuplicatePhone is returned when another customer has the phone number.
	ErrDuplicatePhone = errors.New("phone already belongs to another customer")
)

// Customer is a buyer. The phone number is unique and customers are matched
// by it when orders are placed.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"not null;uniqueIndex" json:"phone"`
	Address   string    `gorm:"not null" json:"address"`
	Ward      string    `json:"ward,omitempty"`
	District  string    `json:"district,omitempty"`
	Province  string    `json:"province,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
