package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fattura-service/internal/models"
)

// ListCustomers godoc
// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {array} models.Customer
// @Router /api/customers [get]
func (api *API) ListCustomers(c *gin.Context) {
	customers, err := api.customers.List(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

// CreateCustomer godoc
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param customer body models.CustomerRequest true "Customer"
// @Success 201 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Router /api/customers [post]
func (api *API) CreateCustomer(c *gin.Context) {
	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	customer, err := api.customers.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomer godoc
// @Summary Get a customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [get]
func (api *API) GetCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	customer, err := api.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer godoc
// @Summary Update a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param customer body models.CustomerRequest true "Customer"
// @Success 200 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [put]
func (api *API) UpdateCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	customer, err := api.customers.Update(c.Request.Context(), id, &req)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer godoc
// @Summary Delete a customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [delete]
func (api *API) DeleteCustomer(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := api.customers.Delete(c.Request.Context(), id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "customer deleted"})
}
