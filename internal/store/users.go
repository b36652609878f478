package store

import (
	"context"
	"database/sql"
	"errors"

	"lendit/internal/models"
)

// CreateUser inserts a user and fills in its ID
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (name, email, phone, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	return s.db.GetContext(ctx, &user.ID, query,
		user.Name, user.Email, user.Phone, user.PasswordHash, user.Role)
}

// GetUserByEmail returns nil, nil when no user has that email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user,
		"SELECT id, name, email, phone, password_hash, role FROM users WHERE email = $1", email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailExists checks whether an email is already registered
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email)
	return exists, err
}

// CreateProduct inserts a product and fills in its ID
func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (name, category, sub_category, owner_id, rental_price, available_quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.db.GetContext(ctx, &product.ID, query,
		product.Name, product.Category, product.SubCategory, product.OwnerID,
		product.RentalPrice, product.AvailableQuantity)
}

// GetProductsByPrice lists every product, cheapest first
func (s *Store) GetProductsByPrice(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT id, name, category, sub_category, owner_id, rental_price, available_quantity
		FROM products
		ORDER BY rental_price ASC, id ASC`)
	return products, err
}
