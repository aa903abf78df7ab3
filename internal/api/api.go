package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hypernova-labs/fattura-service/docs"
)

// API holds the HTTP handlers
type API struct {
	customers     CustomerService
	products      ProductService
	invoices      InvoiceService
	documents     DocumentService
	delivery      DeliveryService
	asyncDelivery bool
	checks        map[string]HealthChecker
	logger        *logrus.Logger
}

// Option customises the API
type Option func(*API)

// WithAsyncDelivery enables POST /api/invoices/:id/send?async=true
func WithAsyncDelivery() Option {
	return func(api *API) { api.asyncDelivery = true }
}

// WithHealthCheck adds a dependency to /health
func WithHealthCheck(name string, check HealthChecker) Option {
	return func(api *API) { api.checks[name] = check }
}

// NewAPI creates the handlers
func NewAPI(
	customers CustomerService,
	products ProductService,
	invoices InvoiceService,
	documents DocumentService,
	delivery DeliveryService,
	logger *logrus.Logger,
	opts ...Option,
) *API {
	api := &API{
		customers: customers,
		products:  products,
		invoices:  invoices,
		documents: documents,
		delivery:  delivery,
		checks:    make(map[string]HealthChecker),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// Router builds the gin engine. inngest may be nil.
func (api *API) Router(inngest http.Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(api.recoverPanic))

	router.GET("/health", api.Health)
	router.GET("/api-docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api")
	{
		customers := v1.Group("/customers")
		customers.GET("", api.ListCustomers)
		customers.POST("", api.CreateCustomer)
		customers.GET("/:id", api.GetCustomer)
		customers.PUT("/:id", api.UpdateCustomer)
		customers.DELETE("/:id", api.DeleteCustomer)

		products := v1.Group("/products")
		products.GET("", api.ListProducts)
		products.POST("", api.CreateProduct)
		products.GET("/:id", api.GetProduct)
		products.PUT("/:id", api.UpdateProduct)
		products.DELETE("/:id", api.DeleteProduct)

		invoices := v1.Group("/invoices")
		invoices.GET("", api.ListInvoices)
		invoices.POST("", api.CreateInvoice)
		invoices.GET("/:id", api.GetInvoice)
		invoices.GET("/:id/pdf", api.GetInvoicePDF)
		invoices.POST("/:id/send", api.SendInvoice)
		invoices.PATCH("/:id/status", api.UpdateInvoiceStatus)

		if inngest != nil {
			v1.Any("/inngest", gin.WrapH(inngest))
		}
	}

	return router
}

// Health godoc
// @Summary Liveness and dependency check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (api *API) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range api.checks {
		if err := check.HealthCheck(ctx); err != nil {
			api.logger.WithFields(logrus.Fields{
				"dependency": name,
				"error":      err.Error(),
			}).Warn("Health check failed")
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"timestamp":    time.Now().UTC(),
		"service":      "fattura-service",
		"dependencies": deps,
	})
}

// parseID reads the :id path parameter, writing a 400 when it is malformed
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
