package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lendit/internal/models"
	"lendit/internal/service"
	"lendit/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Accounts is the account surface the handlers need
type Accounts interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *service.LoginRequest) (*service.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (int64, error)
}

// Catalog is the product surface the handlers need
type Catalog interface {
	ListProduct(ctx context.Context, userID int64, req *service.ListProductRequest) (*models.Product, error)
	ProductsByPrice(ctx context.Context) ([]models.Product, error)
}

// Reports runs named reports
type Reports interface {
	Run(ctx context.Context, name string) (interface{}, error)
}

// Pinger checks a backing store
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	accounts      Accounts
	catalog       Catalog
	reports       Reports
	db            Pinger
	sessionCookie string
	sessionTTL    time.Duration
	logger        *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(accounts Accounts, catalog Catalog, reports Reports, db Pinger, sessionCookie string, sessionTTL time.Duration) *Handler {
	return &Handler{
		accounts:      accounts,
		catalog:       catalog,
		reports:       reports,
		db:            db,
		sessionCookie: sessionCookie,
		sessionTTL:    sessionTTL,
		logger:        util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)

		v1.POST("/products", h.requireSession(), h.listProduct)
		v1.GET("/products/by-price", h.productsByPrice)

		v1.GET("/reports", h.listReports)
		v1.GET("/reports/:name", h.runReport)
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only while the database answers
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unavailable",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) register(c *gin.Context) {
	var req service.RegisterRequest

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessionCookie, resp.Token, int(h.sessionTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), h.sessionToken(c)); err != nil {
		h.writeError(c, err)
		return
	}

	c.SetCookie(h.sessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) listProduct(c *gin.Context) {
	var req service.ListProductRequest

	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalog.ListProduct(c.Request.Context(), c.GetInt64(userIDKey), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *Handler) productsByPrice(c *gin.Context) {
	products, err := h.catalog.ProductsByPrice(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *Handler) listReports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"reports": service.ReportNames()})
}

func (h *Handler) runReport(c *gin.Context) {
	rows, err := h.reports.Run(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUnknownReport):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, service.ErrConstraintViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": err.Error(),
	})
}
