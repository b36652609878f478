package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row types returned by the reporting queries.

type RenterRow struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

type RentalPairRow struct {
	RentalID    int64  `db:"rental_id" json:"rental_id"`
	RenterName  string `db:"renter_name" json:"renter_name"`
	ProductName string `db:"product_name" json:"product_name"`
	OwnerName   string `db:"owner_name" json:"owner_name"`
}

type OwnerProductCountRow struct {
	OwnerID       int64  `db:"owner_id" json:"owner_id"`
	OwnerName     string `db:"owner_name" json:"owner_name"`
	TotalProducts int64  `db:"total_products" json:"total_products"`
}

type BuyerSpendRow struct {
	UserID     int64           `db:"user_id" json:"user_id"`
	Name       string          `db:"name" json:"name"`
	TotalSpent decimal.Decimal `db:"total_spent" json:"total_spent"`
}

type ProductRef struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type RentalDurationRow struct {
	ProductID       int64   `db:"product_id" json:"product_id"`
	ProductName     string  `db:"product_name" json:"product_name"`
	AvgDurationDays float64 `db:"avg_duration_days" json:"avg_duration_days"`
}

type ProductRevenueRow struct {
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Revenue     decimal.Decimal `db:"revenue" json:"revenue"`
}

type CategoryPriceRow struct {
	ID               int64           `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Category         Category        `db:"category" json:"category"`
	RentalPrice      decimal.Decimal `db:"rental_price" json:"rental_price"`
	CategoryAvgPrice decimal.Decimal `db:"category_avg_price" json:"category_avg_price"`
}

type EmailRow struct {
	Email string `db:"email" json:"email"`
}

type RoleLabelRow struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Role      Role   `db:"role" json:"role"`
	RoleLabel string `db:"-" json:"role_label"`
}

type RatedProductRow struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	RentalPrice decimal.Decimal `db:"rental_price" json:"rental_price"`
	AvgRating   float64         `db:"avg_rating" json:"avg_rating"`
}

type CleanedProductRow struct {
	ID                int64     `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	AvailableQuantity int       `db:"available_quantity" json:"available_quantity"`
	LastCleaned       time.Time `db:"last_cleaned" json:"last_cleaned"`
}

type CategoryRatingRow struct {
	ID        int64    `db:"id" json:"id"`
	Name      string   `db:"name" json:"name"`
	Category  Category `db:"category" json:"category"`
	AvgRating float64  `db:"avg_rating" json:"avg_rating"`
}

type MultiFunctionalUserRow struct {
	UserID              int64           `db:"user_id" json:"user_id"`
	Name                string          `db:"name" json:"name"`
	Email               string          `db:"email" json:"email"`
	TotalProductsListed int64           `db:"total_products_listed" json:"total_products_listed"`
	TotalSpentOnRentals decimal.Decimal `db:"total_spent_on_rentals" json:"total_spent_on_rentals"`
}
