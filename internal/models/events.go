package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeUserRegistered = "USER_REGISTERED"
	EventTypeUserLoggedIn   = "USER_LOGGED_IN"
	EventTypeProductListed  = "PRODUCT_LISTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// UserRegisteredEvent published after a new account is stored
type UserRegisteredEvent struct {
	BaseEvent
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// UserLoggedInEvent published after a session is opened
type UserLoggedInEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

// ProductListedEvent published after an owner lists a product
type ProductListedEvent struct {
	BaseEvent
	ProductID   int64           `json:"product_id"`
	OwnerID     int64           `json:"owner_id"`
	Category    Category        `json:"category"`
	RentalPrice decimal.Decimal `json:"rental_price"`
}
