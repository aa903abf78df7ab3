package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

// CustomerService handles customer business rules
type CustomerService struct {
	customers CustomerStore
	clock     Clock
	logger    *logrus.Logger
}

// NewCustomerService creates the service
func NewCustomerService(customers CustomerStore, clock Clock, logger *logrus.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		clock:     clock,
		logger:    logger,
	}
}

// Create stores a new customer
func (s *CustomerService) Create(ctx context.Context, req *models.CustomerRequest) (*models.Customer, error) {
	if err := s.validateCustomerData(req); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	customer := &models.Customer{
		ID:        uuid.New(),
		CreatedAt: now,
	}
	applyCustomerRequest(customer, req, now)

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, translateStoreError(err, "customer not found", "creating customer")
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": customer.ID,
		"email":       customer.Email,
	}).Info("Customer created successfully")

	return customer, nil
}

// GetByID returns an active customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "customer not found", "getting customer")
	}
	return customer, nil
}

// List returns all active customers
func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing customers: %w", err)
	}
	return customers, nil
}

// Update replaces the editable fields of a customer
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *models.CustomerRequest) (*models.Customer, error) {
	if err := s.validateCustomerData(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "customer not found", "getting customer")
	}
	applyCustomerRequest(customer, req, s.clock.Now().UTC())

	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, translateStoreError(err, "customer not found", "updating customer")
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
	}).Info("Customer updated successfully")

	return customer, nil
}

// Delete deactivates a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customers.Delete(ctx, id); err != nil {
		return translateStoreError(err, "customer not found", "deleting customer")
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": id,
	}).Info("Customer deleted successfully")

	return nil
}

func applyCustomerRequest(customer *models.Customer, req *models.CustomerRequest, now time.Time) {
	customer.Name = strings.TrimSpace(req.Name)
	customer.Email = strings.TrimSpace(req.Email)
	customer.Phone = req.Phone
	customer.FiscalCode = req.FiscalCode
	customer.VATNumber = req.VATNumber
	customer.Address = nil
	if req.Address != nil {
		addr := *req.Address
		if strings.TrimSpace(addr.Country) == "" {
			addr.Country = models.DefaultCountry
		}
		customer.Address = &addr
	}
	customer.UpdatedAt = now
}

func (s *CustomerService) validateCustomerData(req *models.CustomerRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}

	if strings.TrimSpace(req.Email) == "" {
		return validationError("email is required")
	}

	if !isValidEmail(strings.TrimSpace(req.Email)) {
		return validationError("invalid email format")
	}

	if len(req.Name) > 255 {
		return validationError("name too long (max 255 characters)")
	}

	if len(req.Email) > 255 {
		return validationError("email too long (max 255 characters)")
	}

	if req.Phone != nil && len(*req.Phone) > 30 {
		return validationError("phone too long (max 30 characters)")
	}

	if req.FiscalCode != nil && len(*req.FiscalCode) > 32 {
		return validationError("fiscal code too long (max 32 characters)")
	}

	return nil
}

// isValidEmail is a basic local@domain.tld check
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}

	if len(parts[0]) == 0 || len(parts[1]) == 0 {
		return false
	}

	if strings.ContainsAny(email, " \t\r\n") {
		return false
	}

	return strings.Contains(parts[1], ".")
}
