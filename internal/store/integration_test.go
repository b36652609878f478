package store

import (
	"context"
	"os"
	"testing"
	"time"

	"lendit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file run against a real Postgres named by
// LENDIT_TEST_DATABASE_URL. They drop and recreate every table.

func openTestStore(t *testing.T) *Store {
	t.Helper()

	url := os.Getenv("LENDIT_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("Integration test - set LENDIT_TEST_DATABASE_URL to run")
	}

	s, err := NewStore(url)
	if err != nil {
		t.Skipf("Integration test - unable to connect to Postgres: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	_, err = s.db.ExecContext(ctx,
		"DROP TABLE IF EXISTS maintenance, reviews, payments, rentals, products, users CASCADE")
	require.NoError(t, err)

	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Migrate(ctx))
	return s
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }

type catalog struct {
	ada, bo, cy, di, eve       *models.User
	navySuit, greySuit, tuxedo *models.Product
	gown, wrap, clutch, belt   *models.Product
}

func seedUser(t *testing.T, s *Store, name string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "hash", Role: role}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, s *Store, owner *models.User, name string, category models.Category, sub *string, price string, qty int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:              name,
		Category:          category,
		SubCategory:       sub,
		OwnerID:           owner.ID,
		RentalPrice:       decimal.RequireFromString(price),
		AvailableQuantity: qty,
	}
	require.NoError(t, s.CreateProduct(context.Background(), product))
	return product
}

// insertReturningID runs a named INSERT ... RETURNING id for arg
func insertReturningID(t *testing.T, s *Store, query string, arg interface{}) int64 {
	t.Helper()

	rows, err := s.db.NamedQueryContext(context.Background(), query, arg)
	require.NoError(t, err)
	defer rows.Close()

	var id int64
	require.True(t, rows.Next())
	require.NoError(t, rows.Scan(&id))
	return id
}

func seedRental(t *testing.T, s *Store, renter *models.User, product *models.Product, start, end time.Time, cost string) *models.Rental {
	t.Helper()

	rental := &models.Rental{
		RenterID:    renter.ID,
		ProductID:   product.ID,
		RentalStart: start,
		RentalEnd:   end,
		TotalCost:   decimal.RequireFromString(cost),
		Status:      models.RentalStatusCompleted,
	}
	rental.ID = insertReturningID(t, s, `
		INSERT INTO rentals (renter_id, product_id, rental_start, rental_end, total_cost, status)
		VALUES (:renter_id, :product_id, :rental_start, :rental_end, :total_cost, :status)
		RETURNING id`, rental)

	payment := &models.Payment{
		RentalID:      rental.ID,
		UserID:        renter.ID,
		Amount:        rental.TotalCost,
		PaymentStatus: models.PaymentStatusCompleted,
		PaymentDate:   end,
	}
	payment.ID = insertReturningID(t, s, `
		INSERT INTO payments (rental_id, user_id, amount, payment_status, payment_date)
		VALUES (:rental_id, :user_id, :amount, :payment_status, :payment_date)
		RETURNING id`, payment)

	return rental
}

func seedReview(t *testing.T, s *Store, user *models.User, product *models.Product, rating int) {
	t.Helper()

	review := &models.Review{
		UserID:     user.ID,
		ProductID:  product.ID,
		Rating:     rating,
		Comment:    strPtr("fits well"),
		ReviewDate: date(2026, time.September, 30),
	}
	review.ID = insertReturningID(t, s, `
		INSERT INTO reviews (user_id, product_id, rating, comment, review_date)
		VALUES (:user_id, :product_id, :rating, :comment, :review_date)
		RETURNING id`, review)
}

func seedMaintenance(t *testing.T, s *Store, product *models.Product, lastCleaned time.Time) {
	t.Helper()

	due := lastCleaned.AddDate(0, 0, 30)
	maintenance := &models.Maintenance{
		ProductID:       product.ID,
		LastCleaned:     lastCleaned,
		NextCleaningDue: &due,
		Status:          models.MaintenanceStatusCompleted,
	}
	maintenance.ID = insertReturningID(t, s, `
		INSERT INTO maintenance (product_id, last_cleaned, next_cleaning_due, status)
		VALUES (:product_id, :last_cleaned, :next_cleaning_due, :status)
		RETURNING id`, maintenance)
}

// seedCatalog builds a small marketplace:
//   - ada and bo own three products each, eve owns one
//   - ada rents the gown for 800, bo rents the navy suit for 100,
//     cy rents the tuxedo and the gown for 600 each
//   - only the gown and the tuxedo have reviews
//   - wrap, grey suit, clutch and belt were never rented
func seedCatalog(t *testing.T, s *Store) *catalog {
	t.Helper()

	c := &catalog{}
	c.ada = seedUser(t, s, "ada", models.RoleOwner)
	c.bo = seedUser(t, s, "bo", models.RoleOwner)
	c.cy = seedUser(t, s, "cy", models.RoleRenter)
	c.di = seedUser(t, s, "di", models.RoleAdmin)
	c.eve = seedUser(t, s, "eve", models.RoleOwner)

	c.navySuit = seedProduct(t, s, c.ada, "Navy Suit", models.CategoryMens, nil, "100", 2)
	c.greySuit = seedProduct(t, s, c.ada, "Grey Suit", models.CategoryMens, nil, "200", 2)
	c.tuxedo = seedProduct(t, s, c.ada, "Black Tuxedo", models.CategoryMens, strPtr("tuxedo"), "300", 1)
	c.gown = seedProduct(t, s, c.bo, "Gown", models.CategoryWomens, strPtr("evening"), "900", 1)
	c.wrap = seedProduct(t, s, c.bo, "Wrap", models.CategoryWomens, nil, "400", 3)
	c.clutch = seedProduct(t, s, c.bo, "Clutch", models.CategoryAccessories, nil, "50", 5)
	c.belt = seedProduct(t, s, c.eve, "Belt", models.CategoryAccessories, nil, "20", 1)

	seedRental(t, s, c.cy, c.tuxedo, date(2026, time.September, 1), date(2026, time.September, 4), "600")
	seedRental(t, s, c.ada, c.gown, date(2026, time.September, 10), date(2026, time.September, 12), "800")
	seedRental(t, s, c.bo, c.navySuit, date(2026, time.September, 15), date(2026, time.September, 16), "100")
	seedRental(t, s, c.cy, c.gown, date(2026, time.October, 1), date(2026, time.October, 2), "600")

	seedReview(t, s, c.cy, c.gown, 5)
	seedReview(t, s, c.ada, c.gown, 4)
	seedReview(t, s, c.cy, c.tuxedo, 3)

	seedMaintenance(t, s, c.clutch, date(2026, time.September, 20))
	seedMaintenance(t, s, c.belt, date(2026, time.September, 21))
	seedMaintenance(t, s, c.wrap, date(2026, time.August, 31))

	return c
}

func ownerIDs(rows []models.OwnerProductCountRow) map[int64]int64 {
	counts := map[int64]int64{}
	for _, row := range rows {
		counts[row.OwnerID] = row.TotalProducts
	}
	return counts
}

func TestIntegrationOwnerCounts(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	all, err := s.ProductCountByOwner(ctx, 0)
	require.NoError(t, err)
	filtered, err := s.ProductCountByOwner(ctx, 2)
	require.NoError(t, err)

	allCounts := ownerIDs(all)
	assert.Equal(t, map[int64]int64{c.ada.ID: 3, c.bo.ID: 3, c.eve.ID: 1}, allCounts)

	require.Len(t, filtered, 2)
	for _, row := range filtered {
		count, ok := allCounts[row.OwnerID]
		assert.True(t, ok, "owner %d missing from unfiltered counts", row.OwnerID)
		assert.Equal(t, count, row.TotalProducts)
		assert.Greater(t, row.TotalProducts, int64(2))
	}
}

func TestIntegrationRentedAndNeverRentedPartitionProducts(t *testing.T) {
	s := openTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	products, err := s.GetProductsByPrice(ctx)
	require.NoError(t, err)
	never, err := s.ProductsNeverRented(ctx)
	require.NoError(t, err)
	durations, err := s.AverageRentalDuration(ctx)
	require.NoError(t, err)

	seen := map[int64]int{}
	for _, p := range never {
		seen[p.ID]++
	}
	for _, d := range durations {
		seen[d.ProductID]++
	}

	require.Len(t, seen, len(products))
	for _, p := range products {
		assert.Equal(t, 1, seen[p.ID], "product %s", p.Name)
	}
}

func TestIntegrationRentalAggregates(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	pairs, err := s.RentalPairs(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 4)
	assert.Equal(t, "cy", pairs[0].RenterName)
	assert.Equal(t, "ada", pairs[0].OwnerName)

	durations, err := s.AverageRentalDuration(ctx)
	require.NoError(t, err)
	byProduct := map[int64]float64{}
	for _, d := range durations {
		byProduct[d.ProductID] = d.AvgDurationDays
	}
	assert.InDelta(t, 3.0, byProduct[c.tuxedo.ID], 0.001)
	assert.InDelta(t, 1.5, byProduct[c.gown.ID], 0.001)

	// mean single rental is 525; totals are ada 800, bo 100, cy 1200
	buyers, err := s.BuyersAboveAverage(ctx)
	require.NoError(t, err)
	require.Len(t, buyers, 2)
	assert.Equal(t, c.ada.ID, buyers[0].UserID)
	assert.Equal(t, c.cy.ID, buyers[1].UserID)
	assert.True(t, decimal.NewFromInt(1200).Equal(buyers[1].TotalSpent))

	top, err := s.TopRevenueProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, c.gown.ID, top[0].ProductID)
	assert.True(t, decimal.NewFromInt(1400).Equal(top[0].Revenue))
	assert.Equal(t, c.navySuit.ID, top[2].ProductID)
}

func TestIntegrationAboveCategoryAverage(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	products, err := s.GetProductsByPrice(ctx)
	require.NoError(t, err)

	sums := map[models.Category]decimal.Decimal{}
	counts := map[models.Category]int64{}
	for _, p := range products {
		sums[p.Category] = sums[p.Category].Add(p.RentalPrice)
		counts[p.Category]++
	}

	want := map[int64]bool{}
	for _, p := range products {
		avg := sums[p.Category].Div(decimal.NewFromInt(counts[p.Category]))
		if p.RentalPrice.GreaterThan(avg) {
			want[p.ID] = true
		}
	}

	rows, err := s.ProductsAboveCategoryAverage(ctx)
	require.NoError(t, err)

	got := map[int64]bool{}
	for _, row := range rows {
		got[row.ID] = true
	}
	assert.Equal(t, want, got)
	assert.Equal(t, map[int64]bool{c.tuxedo.ID: true, c.gown.ID: true, c.clutch.ID: true}, got)
}

func TestIntegrationUserReports(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	renters, err := s.UsersByRole(ctx, models.RoleRenter)
	require.NoError(t, err)
	require.Len(t, renters, 1)
	assert.Equal(t, c.cy.ID, renters[0].ID)

	emails, err := s.EmailsForRoles(ctx, models.RoleOwner, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, []models.EmailRow{
		{Email: "ada@example.com"},
		{Email: "bo@example.com"},
		{Email: "di@example.com"},
		{Email: "eve@example.com"},
	}, emails)

	roles, err := s.UserRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 5)
	assert.Equal(t, models.RoleAdmin, roles[3].Role)
}

func TestIntegrationMultiFunctionalUsersIsConjunction(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)

	// bo lists three products but spent 100; cy spent 1200 but lists none
	rows, err := s.MultiFunctionalUsers(context.Background(), 2, decimal.NewFromInt(700))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, c.ada.ID, rows[0].UserID)
	assert.Equal(t, int64(3), rows[0].TotalProductsListed)
	assert.True(t, decimal.NewFromInt(800).Equal(rows[0].TotalSpentOnRentals))
}

func TestIntegrationUnreviewedProductsDropOut(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	rated, err := s.RatedProductsUnder(ctx, models.CategoryWomens, decimal.NewFromInt(1300), 4)
	require.NoError(t, err)
	require.Len(t, rated, 1)
	assert.Equal(t, c.gown.ID, rated[0].ID)
	assert.InDelta(t, 4.5, rated[0].AvgRating, 0.001)

	sorted, err := s.ProductsByAverageRating(ctx, []models.Category{models.CategoryMens, models.CategoryWomens})
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, c.gown.ID, sorted[0].ID)
	assert.Equal(t, c.tuxedo.ID, sorted[1].ID)

	never, err := s.ProductsNeverRented(ctx)
	require.NoError(t, err)
	neverIDs := map[int64]bool{}
	for _, p := range never {
		neverIDs[p.ID] = true
	}

	// wrap has no reviews and no rentals, navy suit has no reviews but was rented
	for _, id := range []int64{c.wrap.ID, c.navySuit.ID} {
		for _, row := range rated {
			assert.NotEqual(t, id, row.ID)
		}
		for _, row := range sorted {
			assert.NotEqual(t, id, row.ID)
		}
	}
	assert.True(t, neverIDs[c.wrap.ID])
	assert.False(t, neverIDs[c.navySuit.ID])
}

func TestIntegrationCatalogFilters(t *testing.T) {
	s := openTestStore(t)
	c := seedCatalog(t, s)
	ctx := context.Background()

	tuxedos, err := s.ProductsBySubCategoryUnder(ctx, models.CategoryMens, "tuxedo", decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.Len(t, tuxedos, 1)
	assert.Equal(t, c.tuxedo.ID, tuxedos[0].ID)

	// belt is too scarce, wrap was cleaned in August and is not an accessory
	cleaned, err := s.ProductsCleanedBetween(ctx, models.CategoryAccessories, 3,
		date(2026, time.September, 1), date(2026, time.October, 1))
	require.NoError(t, err)
	require.Len(t, cleaned, 1)
	assert.Equal(t, c.clutch.ID, cleaned[0].ID)
	assert.Equal(t, 20, cleaned[0].LastCleaned.Day())
}

func TestIntegrationReportsAreRepeatable(t *testing.T) {
	s := openTestStore(t)
	seedCatalog(t, s)
	ctx := context.Background()

	queries := map[string]func() (interface{}, error){
		"pairs":    func() (interface{}, error) { return s.RentalPairs(ctx) },
		"owners":   func() (interface{}, error) { return s.ProductCountByOwner(ctx, 0) },
		"buyers":   func() (interface{}, error) { return s.BuyersAboveAverage(ctx) },
		"never":    func() (interface{}, error) { return s.ProductsNeverRented(ctx) },
		"top":      func() (interface{}, error) { return s.TopRevenueProducts(ctx, 5) },
		"category": func() (interface{}, error) { return s.ProductsAboveCategoryAverage(ctx) },
		"ratings": func() (interface{}, error) {
			return s.ProductsByAverageRating(ctx, []models.Category{models.CategoryMens, models.CategoryWomens})
		},
		"multi": func() (interface{}, error) { return s.MultiFunctionalUsers(ctx, 2, decimal.NewFromInt(700)) },
	}

	for name, query := range queries {
		first, err := query()
		require.NoError(t, err, name)
		second, err := query()
		require.NoError(t, err, name)
		assert.Equal(t, first, second, name)
	}
}

func TestIntegrationDuplicateEmailRejected(t *testing.T) {
	s := openTestStore(t)
	seedUser(t, s, "ada", models.RoleOwner)

	err := s.CreateUser(context.Background(), &models.User{
		Name: "Ada Again", Email: "ada@example.com", PasswordHash: "hash", Role: models.RoleRenter,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users_email_key")
}
