package service

import (
	"context"
	"fmt"
	"time"

	"lendit/internal/models"
	"lendit/internal/store"
	"lendit/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Report names as exposed over HTTP and the CLI
const (
	ReportRenters                     = "renters"
	ReportRentalPairs                 = "rental-pairs"
	ReportProductsByOwner             = "products-by-owner"
	ReportProductsByOwnerFiltered     = "products-by-owner-filtered"
	ReportBuyersAboveAverage          = "buyers-above-average"
	ReportProductsNeverRented         = "products-never-rented"
	ReportAverageRentalDuration       = "average-rental-duration"
	ReportTopRevenue                  = "top-revenue"
	ReportAboveCategoryAverage        = "above-category-average"
	ReportSellersAndAdmins            = "sellers-and-admins"
	ReportRoleLabels                  = "role-labels"
	ReportMensTuxedo                  = "mens-tuxedo"
	ReportWomensTopRated              = "womens-top-rated"
	ReportAccessoriesCleanedLastMonth = "accessories-cleaned-last-month"
	ReportSortedByRating              = "sorted-by-rating"
	ReportMultiFunctionalUsers        = "multi-functional-users"
)

// Fixed report parameters
const (
	ownerMinProducts        = 2
	topRevenueLimit         = 5
	tuxedoSubCategory       = "tuxedo"
	womensMinRating         = 4.0
	accessoriesMinQuantity  = 3
	multiFunctionalProducts = 2
)

var (
	tuxedoMaxPrice         = decimal.NewFromInt(1500)
	womensMaxPrice         = decimal.NewFromInt(1300)
	multiFunctionalSpent   = decimal.NewFromInt(700)
	ratingSortedCategories = []models.Category{models.CategoryMens, models.CategoryWomens}
)

var reportNames = []string{
	ReportRenters,
	ReportRentalPairs,
	ReportProductsByOwner,
	ReportProductsByOwnerFiltered,
	ReportBuyersAboveAverage,
	ReportProductsNeverRented,
	ReportAverageRentalDuration,
	ReportTopRevenue,
	ReportAboveCategoryAverage,
	ReportSellersAndAdmins,
	ReportRoleLabels,
	ReportMensTuxedo,
	ReportWomensTopRated,
	ReportAccessoriesCleanedLastMonth,
	ReportSortedByRating,
	ReportMultiFunctionalUsers,
}

// Clock returns the current time
type Clock func() time.Time

// ReportService runs the read-only reporting catalog
type ReportService struct {
	store  *store.Store
	now    Clock
	logger *zap.Logger
}

// NewReportService creates a new report service. A nil clock means
// time.Now.
func NewReportService(store *store.Store, now Clock) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		store:  store,
		now:    now,
		logger: util.GetLogger(),
	}
}

// ReportNames lists every report in catalog order
func ReportNames() []string {
	names := make([]string, len(reportNames))
	copy(names, reportNames)
	return names
}

// Run executes a report by name
func (s *ReportService) Run(ctx context.Context, name string) (interface{}, error) {
	switch name {
	case ReportRenters:
		return s.Renters(ctx)
	case ReportRentalPairs:
		return s.RentalPairs(ctx)
	case ReportProductsByOwner:
		return s.ProductCountByOwner(ctx)
	case ReportProductsByOwnerFiltered:
		return s.ProductCountByOwnerFiltered(ctx)
	case ReportBuyersAboveAverage:
		return s.BuyersAboveAverage(ctx)
	case ReportProductsNeverRented:
		return s.ProductsNeverRented(ctx)
	case ReportAverageRentalDuration:
		return s.AverageRentalDuration(ctx)
	case ReportTopRevenue:
		return s.TopRevenueProducts(ctx)
	case ReportAboveCategoryAverage:
		return s.ProductsAboveCategoryAverage(ctx)
	case ReportSellersAndAdmins:
		return s.SellersAndAdmins(ctx)
	case ReportRoleLabels:
		return s.RoleLabels(ctx)
	case ReportMensTuxedo:
		return s.MensTuxedoUnder1500(ctx)
	case ReportWomensTopRated:
		return s.WomensTopRatedUnder1300(ctx)
	case ReportAccessoriesCleanedLastMonth:
		return s.AccessoriesCleanedLastMonth(ctx)
	case ReportSortedByRating:
		return s.SortedByRating(ctx)
	case ReportMultiFunctionalUsers:
		return s.MultiFunctionalUsers(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReport, name)
	}
}

// runReport wraps a query with a span, latency metric and error mapping
func runReport[T any](ctx context.Context, s *ReportService, name string, query func(context.Context) ([]T, error)) ([]T, error) {
	ctx, span := util.StartSpan(ctx, "ReportService."+name)
	defer span.End()

	start := time.Now()
	rows, err := query(ctx)
	util.ReportQueryLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		util.ReportQueryErrors.WithLabelValues(name).Inc()
		s.logger.Error("Report query failed", zap.String("report", name), zap.Error(err))
		return nil, util.SpanError(span, fmt.Errorf("%w: %s: %v", ErrStorageUnavailable, name, err))
	}

	s.logger.Debug("Report query completed", zap.String("report", name), zap.Int("rows", len(rows)))
	return rows, nil
}

// Renters lists every user with the renter role
func (s *ReportService) Renters(ctx context.Context) ([]models.RenterRow, error) {
	return runReport(ctx, s, ReportRenters, func(ctx context.Context) ([]models.RenterRow, error) {
		return s.store.UsersByRole(ctx, models.RoleRenter)
	})
}

// RentalPairs names the renter, product and product owner of each rental
func (s *ReportService) RentalPairs(ctx context.Context) ([]models.RentalPairRow, error) {
	return runReport(ctx, s, ReportRentalPairs, s.store.RentalPairs)
}

// ProductCountByOwner counts listed products per owner
func (s *ReportService) ProductCountByOwner(ctx context.Context) ([]models.OwnerProductCountRow, error) {
	return runReport(ctx, s, ReportProductsByOwner, func(ctx context.Context) ([]models.OwnerProductCountRow, error) {
		return s.store.ProductCountByOwner(ctx, 0)
	})
}

// ProductCountByOwnerFiltered keeps owners with more than two products
func (s *ReportService) ProductCountByOwnerFiltered(ctx context.Context) ([]models.OwnerProductCountRow, error) {
	return runReport(ctx, s, ReportProductsByOwnerFiltered, func(ctx context.Context) ([]models.OwnerProductCountRow, error) {
		return s.store.ProductCountByOwner(ctx, ownerMinProducts)
	})
}

// BuyersAboveAverage returns renters whose total spend exceeds the
// average cost of a single rental.
func (s *ReportService) BuyersAboveAverage(ctx context.Context) ([]models.BuyerSpendRow, error) {
	return runReport(ctx, s, ReportBuyersAboveAverage, s.store.BuyersAboveAverage)
}

func (s *ReportService) ProductsNeverRented(ctx context.Context) ([]models.ProductRef, error) {
	return runReport(ctx, s, ReportProductsNeverRented, s.store.ProductsNeverRented)
}

func (s *ReportService) AverageRentalDuration(ctx context.Context) ([]models.RentalDurationRow, error) {
	return runReport(ctx, s, ReportAverageRentalDuration, s.store.AverageRentalDuration)
}

// TopRevenueProducts returns the five highest grossing products; equal
// revenue is ordered by product id ascending.
func (s *ReportService) TopRevenueProducts(ctx context.Context) ([]models.ProductRevenueRow, error) {
	return runReport(ctx, s, ReportTopRevenue, func(ctx context.Context) ([]models.ProductRevenueRow, error) {
		return s.store.TopRevenueProducts(ctx, topRevenueLimit)
	})
}

func (s *ReportService) ProductsAboveCategoryAverage(ctx context.Context) ([]models.CategoryPriceRow, error) {
	return runReport(ctx, s, ReportAboveCategoryAverage, s.store.ProductsAboveCategoryAverage)
}

// SellersAndAdmins returns the deduplicated emails of owners and admins
func (s *ReportService) SellersAndAdmins(ctx context.Context) ([]models.EmailRow, error) {
	return runReport(ctx, s, ReportSellersAndAdmins, func(ctx context.Context) ([]models.EmailRow, error) {
		return s.store.EmailsForRoles(ctx, models.RoleOwner, models.RoleAdmin)
	})
}

// RoleLabels returns one row per user with its role display name
func (s *ReportService) RoleLabels(ctx context.Context) ([]models.RoleLabelRow, error) {
	return runReport(ctx, s, ReportRoleLabels, func(ctx context.Context) ([]models.RoleLabelRow, error) {
		rows, err := s.store.UserRoles(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].RoleLabel = rows[i].Role.Label()
		}
		return rows, nil
	})
}

func (s *ReportService) MensTuxedoUnder1500(ctx context.Context) ([]models.Product, error) {
	return runReport(ctx, s, ReportMensTuxedo, func(ctx context.Context) ([]models.Product, error) {
		return s.store.ProductsBySubCategoryUnder(ctx, models.CategoryMens, tuxedoSubCategory, tuxedoMaxPrice)
	})
}

// WomensTopRatedUnder1300 only sees reviewed products
func (s *ReportService) WomensTopRatedUnder1300(ctx context.Context) ([]models.RatedProductRow, error) {
	return runReport(ctx, s, ReportWomensTopRated, func(ctx context.Context) ([]models.RatedProductRow, error) {
		return s.store.RatedProductsUnder(ctx, models.CategoryWomens, womensMaxPrice, womensMinRating)
	})
}

// AccessoriesCleanedLastMonth derives the previous calendar month from
// the clock on every call.
func (s *ReportService) AccessoriesCleanedLastMonth(ctx context.Context) ([]models.CleanedProductRow, error) {
	return runReport(ctx, s, ReportAccessoriesCleanedLastMonth, func(ctx context.Context) ([]models.CleanedProductRow, error) {
		from, to := previousMonth(s.now())
		return s.store.ProductsCleanedBetween(ctx, models.CategoryAccessories, accessoriesMinQuantity, from, to)
	})
}

func (s *ReportService) SortedByRating(ctx context.Context) ([]models.CategoryRatingRow, error) {
	return runReport(ctx, s, ReportSortedByRating, func(ctx context.Context) ([]models.CategoryRatingRow, error) {
		return s.store.ProductsByAverageRating(ctx, ratingSortedCategories)
	})
}

// MultiFunctionalUsers returns users that list more than two products
// and have spent more than 700 on rentals.
func (s *ReportService) MultiFunctionalUsers(ctx context.Context) ([]models.MultiFunctionalUserRow, error) {
	return runReport(ctx, s, ReportMultiFunctionalUsers, func(ctx context.Context) ([]models.MultiFunctionalUserRow, error) {
		return s.store.MultiFunctionalUsers(ctx, multiFunctionalProducts, multiFunctionalSpent)
	})
}

// previousMonth returns the first day of the month before now and the
// first day of now's month, in now's location.
func previousMonth(now time.Time) (time.Time, time.Time) {
	year, month, _ := now.Date()
	end := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	return end.AddDate(0, -1, 0), end
}
