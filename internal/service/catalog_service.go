package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lendit/internal/models"
	"lendit/internal/store"
	"lendit/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService handles product listing
type CatalogService struct {
	store          *store.Store
	eventPublisher EventPublisher
	logger         *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store *store.Store, eventPublisher EventPublisher) *CatalogService {
	return &CatalogService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ListProductRequest is the raw listing form; numeric fields arrive as
// text and are coerced here.
type ListProductRequest struct {
	Name              string `json:"name" form:"name"`
	Category          string `json:"category" form:"category"`
	SubCategory       string `json:"sub_category" form:"sub_category"`
	RentalPrice       string `json:"rental_price" form:"rental_price"`
	AvailableQuantity string `json:"available_quantity" form:"available_quantity"`
}

// ListProduct stores a product owned by the session user. Category and
// the numeric ranges are left to the schema constraints.
func (s *CatalogService) ListProduct(ctx context.Context, userID int64, req *ListProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ListProduct")
	defer span.End()

	if userID <= 0 {
		return nil, ErrUnauthenticated
	}

	product, err := parseListing(req)
	if err != nil {
		return nil, err
	}
	product.OwnerID = userID

	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, util.SpanError(span, mapWriteErr(err))
	}

	util.ProductsListedTotal.Inc()
	s.logger.Info("Product listed",
		zap.Int64("product_id", product.ID),
		zap.Int64("owner_id", userID))

	event := &models.ProductListedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeProductListed,
			Timestamp: time.Now(),
		},
		ProductID:   product.ID,
		OwnerID:     product.OwnerID,
		Category:    product.Category,
		RentalPrice: product.RentalPrice,
	}

	if err := s.eventPublisher.PublishProductListed(ctx, event); err != nil {
		s.logger.Error("Failed to publish ProductListed event", zap.Error(err))
	}

	return product, nil
}

func parseListing(req *ListProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	priceText := strings.TrimSpace(req.RentalPrice)
	qtyText := strings.TrimSpace(req.AvailableQuantity)

	switch {
	case name == "":
		return nil, invalidInput("name is required")
	case category == "":
		return nil, invalidInput("category is required")
	case priceText == "":
		return nil, invalidInput("rental_price is required")
	case qtyText == "":
		return nil, invalidInput("available_quantity is required")
	}

	price, err := decimal.NewFromString(priceText)
	if err != nil {
		return nil, invalidInput("rental_price %q is not a number", priceText)
	}

	qty, err := strconv.Atoi(qtyText)
	if err != nil {
		return nil, invalidInput("available_quantity %q is not an integer", qtyText)
	}

	product := &models.Product{
		Name:              name,
		Category:          models.Category(category),
		RentalPrice:       price,
		AvailableQuantity: qty,
	}
	if sub := strings.TrimSpace(req.SubCategory); sub != "" {
		product.SubCategory = &sub
	}
	return product, nil
}

// ProductsByPrice lists the whole catalog, cheapest first
func (s *CatalogService) ProductsByPrice(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.ProductsByPrice")
	defer span.End()

	products, err := s.store.GetProductsByPrice(ctx)
	if err != nil {
		return nil, util.SpanError(span, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	return products, nil
}
