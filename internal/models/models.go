package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is the closed set of user roles
type Role string

const (
	RoleRenter Role = "renter"
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleRenter, RoleOwner, RoleAdmin:
		return true
	default:
		return false
	}
}

// Label returns the display name shown for a role
func (r Role) Label() string {
	switch r {
	case RoleRenter:
		return "Customer"
	case RoleOwner:
		return "Product Lister"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// Category is the closed set of product categories
type Category string

const (
	CategoryMens        Category = "mens"
	CategoryWomens      Category = "womens"
	CategoryAccessories Category = "accessories"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMens, CategoryWomens, CategoryAccessories:
		return true
	default:
		return false
	}
}

// Rental statuses
const (
	RentalStatusOngoing   = "ongoing"
	RentalStatusCompleted = "completed"
	RentalStatusCanceled  = "canceled"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Maintenance statuses
const (
	MaintenanceStatusPending   = "pending"
	MaintenanceStatusCompleted = "completed"
)

// User is a registered account. PasswordHash never leaves the service.
type User struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	PasswordHash string  `db:"password_hash" json:"-"`
	Role         Role    `db:"role" json:"role"`
}

// Product is an item an owner lists for rent
type Product struct {
	ID                int64           `db:"id" json:"id"`
	Name              string          `db:"name" json:"name"`
	Category          Category        `db:"category" json:"category"`
	SubCategory       *string         `db:"sub_category" json:"sub_category,omitempty"`
	OwnerID           int64           `db:"owner_id" json:"owner_id"`
	RentalPrice       decimal.Decimal `db:"rental_price" json:"rental_price"`
	AvailableQuantity int             `db:"available_quantity" json:"available_quantity"`
}

// Rental is one renter renting one product over a date range
type Rental struct {
	ID          int64           `db:"id" json:"id"`
	RenterID    int64           `db:"renter_id" json:"renter_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	RentalStart time.Time       `db:"rental_start" json:"rental_start"`
	RentalEnd   time.Time       `db:"rental_end" json:"rental_end"`
	TotalCost   decimal.Decimal `db:"total_cost" json:"total_cost"`
	Status      string          `db:"status" json:"status"`
}

type Payment struct {
	ID            int64           `db:"id" json:"id"`
	RentalID      int64           `db:"rental_id" json:"rental_id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	PaymentStatus string          `db:"payment_status" json:"payment_status"`
	PaymentDate   time.Time       `db:"payment_date" json:"payment_date"`
}

type Review struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	ProductID  int64     `db:"product_id" json:"product_id"`
	Rating     int       `db:"rating" json:"rating"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	ReviewDate time.Time `db:"review_date" json:"review_date"`
}

// Maintenance tracks cleaning for a single product
type Maintenance struct {
	ID              int64      `db:"id" json:"id"`
	ProductID       int64      `db:"product_id" json:"product_id"`
	LastCleaned     time.Time  `db:"last_cleaned" json:"last_cleaned"`
	NextCleaningDue *time.Time `db:"next_cleaning_due" json:"next_cleaning_due,omitempty"`
	Status          string     `db:"status" json:"status"`
}
