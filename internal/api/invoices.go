package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/fattura-service/internal/email"
	"github.com/hypernova-labs/fattura-service/internal/models"
)

// ListInvoices godoc
// @Summary List invoices, newest first
// @Tags invoices
// @Produce json
// @Success 200 {array} models.Invoice
// @Router /api/invoices [get]
func (api *API) ListInvoices(c *gin.Context) {
	invoices, err := api.invoices.List(c.Request.Context())
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// CreateInvoice godoc
// @Summary Create an invoice from catalog products
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body models.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/invoices [post]
func (api *API) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	invoice, err := api.invoices.Create(c.Request.Context(), &req)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// GetInvoice godoc
// @Summary Get an invoice with customer and products
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} models.Invoice
// @Failure 404 {object} models.ErrorResponse
// @Router /api/invoices/{id} [get]
func (api *API) GetInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, err := api.invoices.Get(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoicePDF godoc
// @Summary Download the invoice PDF
// @Tags invoices
// @Produce application/pdf
// @Param id path string true "Invoice ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/invoices/{id}/pdf [get]
func (api *API) GetInvoicePDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	invoice, doc, err := api.documents.Get(c.Request.Context(), id)
	if err != nil {
		api.respondError(c, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = models.ContentTypePDF
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", email.AttachmentName(invoice.Number)))
	c.Header("Content-Length", strconv.Itoa(len(doc.Data)))
	c.Data(http.StatusOK, contentType, doc.Data)
}

// SendInvoice godoc
// @Summary Email the invoice PDF to the customer
// @Description With async=true the delivery is queued and 202 is returned.
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Param async query bool false "Queue the delivery"
// @Success 200 {object} models.MessageResponse
// @Success 202 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/invoices/{id}/send [post]
func (api *API) SendInvoice(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	async, _ := strconv.ParseBool(c.Query("async"))
	if async {
		if !api.asyncDelivery {
			badRequest(c, "asynchronous delivery is not enabled")
			return
		}
		if err := api.delivery.RequestSend(c.Request.Context(), id); err != nil {
			api.respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, models.MessageResponse{Message: "invoice delivery queued"})
		return
	}

	if _, err := api.delivery.Send(c.Request.Context(), id); err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "invoice sent by email"})
}

// UpdateInvoiceStatus godoc
// @Summary Change the invoice status
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param status body models.UpdateStatusRequest true "Status"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/invoices/{id}/status [patch]
func (api *API) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	invoice, err := api.invoices.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		api.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
