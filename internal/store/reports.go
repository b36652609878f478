package store

import (
	"context"
	"time"

	"lendit/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Reporting queries. Each returns a non-nil slice in a fixed order so
// repeated calls over unchanged data give identical results.

// UsersByRole lists users with the given role ordered by id
func (s *Store) UsersByRole(ctx context.Context, role models.Role) ([]models.RenterRow, error) {
	rows := []models.RenterRow{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, name, email FROM users WHERE role = $1 ORDER BY id", role)
	return rows, err
}

// RentalPairs joins users twice: once as renter, once as product owner.
func (s *Store) RentalPairs(ctx context.Context) ([]models.RentalPairRow, error) {
	rows := []models.RentalPairRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id AS rental_id,
		       renter_u.name AS renter_name,
		       p.name AS product_name,
		       owner_u.name AS owner_name
		FROM rentals r
		JOIN users renter_u ON renter_u.id = r.renter_id
		JOIN products p ON p.id = r.product_id
		JOIN users owner_u ON owner_u.id = p.owner_id
		ORDER BY r.id`)
	return rows, err
}

// ProductCountByOwner counts products per owner. Owners without products
// are not returned. A minCount above zero keeps only groups with more
// than minCount products.
func (s *Store) ProductCountByOwner(ctx context.Context, minCount int) ([]models.OwnerProductCountRow, error) {
	rows := []models.OwnerProductCountRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT u.id AS owner_id, u.name AS owner_name, COUNT(p.id) AS total_products
		FROM users u
		JOIN products p ON p.owner_id = u.id
		GROUP BY u.id, u.name
		HAVING COUNT(p.id) > $1
		ORDER BY u.id`, minCount)
	return rows, err
}

// BuyersAboveAverage compares each renter's total spend against the mean
// cost of a single rental, not the mean renter total.
func (s *Store) BuyersAboveAverage(ctx context.Context) ([]models.BuyerSpendRow, error) {
	rows := []models.BuyerSpendRow{}
	err := s.db.SelectContext(ctx, &rows, `
		WITH spend AS (
			SELECT renter_id, SUM(total_cost) AS total_spent
			FROM rentals
			GROUP BY renter_id
		)
		SELECT u.id AS user_id, u.name, s.total_spent
		FROM users u
		JOIN spend s ON s.renter_id = u.id
		WHERE s.total_spent > (SELECT AVG(total_cost) FROM rentals)
		ORDER BY u.id`)
	return rows, err
}

// ProductsNeverRented uses NOT EXISTS, which unlike NOT IN is not
// affected by NULL product ids in rentals.
func (s *Store) ProductsNeverRented(ctx context.Context) ([]models.ProductRef, error) {
	rows := []models.ProductRef{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name
		FROM products p
		WHERE NOT EXISTS (SELECT 1 FROM rentals r WHERE r.product_id = p.id)
		ORDER BY p.id`)
	return rows, err
}

// AverageRentalDuration averages rental_end - rental_start in days
func (s *Store) AverageRentalDuration(ctx context.Context) ([]models.RentalDurationRow, error) {
	rows := []models.RentalDurationRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id AS product_id, p.name AS product_name,
		       AVG(r.rental_end - r.rental_start)::float8 AS avg_duration_days
		FROM products p
		JOIN rentals r ON r.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY p.id`)
	return rows, err
}

// TopRevenueProducts ranks by summed total_cost; ties go to the lower id
func (s *Store) TopRevenueProducts(ctx context.Context, limit int) ([]models.ProductRevenueRow, error) {
	rows := []models.ProductRevenueRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id AS product_id, p.name AS product_name, SUM(r.total_cost) AS revenue
		FROM products p
		JOIN rentals r ON r.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY revenue DESC, p.id ASC
		LIMIT $1`, limit)
	return rows, err
}

// ProductsAboveCategoryAverage returns products priced strictly above
// the average price of their own category.
func (s *Store) ProductsAboveCategoryAverage(ctx context.Context) ([]models.CategoryPriceRow, error) {
	rows := []models.CategoryPriceRow{}
	err := s.db.SelectContext(ctx, &rows, `
		WITH category_avg AS (
			SELECT category, AVG(rental_price) AS avg_price
			FROM products
			GROUP BY category
		)
		SELECT p.id, p.name, p.category, p.rental_price, ca.avg_price AS category_avg_price
		FROM products p
		JOIN category_avg ca ON ca.category = p.category
		WHERE p.rental_price > ca.avg_price
		ORDER BY p.category, p.id`)
	return rows, err
}

// EmailsForRoles returns the deduplicated union of emails of both roles
func (s *Store) EmailsForRoles(ctx context.Context, first, second models.Role) ([]models.EmailRow, error) {
	rows := []models.EmailRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT email FROM users WHERE role = $1
		UNION
		SELECT email FROM users WHERE role = $2
		ORDER BY email`, first, second)
	return rows, err
}

// UserRoles lists every user with their role
func (s *Store) UserRoles(ctx context.Context) ([]models.RoleLabelRow, error) {
	rows := []models.RoleLabelRow{}
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, name, role FROM users ORDER BY id")
	return rows, err
}

// ProductsBySubCategoryUnder filters on category, sub_category and a
// strict price ceiling.
func (s *Store) ProductsBySubCategoryUnder(ctx context.Context, category models.Category, subCategory string, maxPrice decimal.Decimal) ([]models.Product, error) {
	rows := []models.Product{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, category, sub_category, owner_id, rental_price, available_quantity
		FROM products
		WHERE category = $1 AND sub_category = $2 AND rental_price < $3
		ORDER BY id`, category, subCategory, maxPrice)
	return rows, err
}

// RatedProductsUnder returns reviewed products of a category priced below
// maxPrice whose average rating is at least minRating. Products without
// reviews drop out of the inner join.
func (s *Store) RatedProductsUnder(ctx context.Context, category models.Category, maxPrice decimal.Decimal, minRating float64) ([]models.RatedProductRow, error) {
	rows := []models.RatedProductRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name, p.rental_price, AVG(rv.rating)::float8 AS avg_rating
		FROM products p
		JOIN reviews rv ON rv.product_id = p.id
		WHERE p.category = $1 AND p.rental_price < $2
		GROUP BY p.id, p.name, p.rental_price
		HAVING AVG(rv.rating) >= $3
		ORDER BY p.id`, category, maxPrice, minRating)
	return rows, err
}

// ProductsCleanedBetween returns products of a category with more than
// minQuantity units whose last cleaning date falls in [from, to). Only
// the calendar dates of from and to are used.
func (s *Store) ProductsCleanedBetween(ctx context.Context, category models.Category, minQuantity int, from, to time.Time) ([]models.CleanedProductRow, error) {
	rows := []models.CleanedProductRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name, p.available_quantity, m.last_cleaned
		FROM products p
		JOIN maintenance m ON m.product_id = p.id
		WHERE p.category = $1
		  AND p.available_quantity > $2
		  AND m.last_cleaned >= $3::date
		  AND m.last_cleaned < $4::date
		ORDER BY p.id`, category, minQuantity, from.Format(dateLayout), to.Format(dateLayout))
	return rows, err
}

// ProductsByAverageRating orders reviewed products of the given
// categories by mean rating, highest first, then by id.
func (s *Store) ProductsByAverageRating(ctx context.Context, categories []models.Category) ([]models.CategoryRatingRow, error) {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}

	rows := []models.CategoryRatingRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name, p.category, AVG(rv.rating)::float8 AS avg_rating
		FROM products p
		JOIN reviews rv ON rv.product_id = p.id
		WHERE p.category = ANY($1)
		GROUP BY p.id, p.name, p.category
		ORDER BY avg_rating DESC, p.id ASC`, pq.Array(names))
	return rows, err
}

// MultiFunctionalUsers joins two independent aggregates back to users.
// A user missing from either aggregate is excluded.
func (s *Store) MultiFunctionalUsers(ctx context.Context, minProducts int, minSpent decimal.Decimal) ([]models.MultiFunctionalUserRow, error) {
	rows := []models.MultiFunctionalUserRow{}
	err := s.db.SelectContext(ctx, &rows, `
		WITH listed AS (
			SELECT owner_id AS user_id, COUNT(id) AS total_products_listed
			FROM products
			GROUP BY owner_id
		),
		spent AS (
			SELECT renter_id AS user_id, SUM(total_cost) AS total_spent_on_rentals
			FROM rentals
			GROUP BY renter_id
		)
		SELECT u.id AS user_id, u.name, u.email,
		       l.total_products_listed, s.total_spent_on_rentals
		FROM users u
		JOIN listed l ON l.user_id = u.id
		JOIN spent s ON s.user_id = u.id
		WHERE l.total_products_listed > $1
		  AND s.total_spent_on_rentals > $2
		ORDER BY u.id`, minProducts, minSpent)
	return rows, err
}
