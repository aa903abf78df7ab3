package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/fattura-service/internal/database"
	"github.com/hypernova-labs/fattura-service/internal/email"
	"github.com/hypernova-labs/fattura-service/internal/models"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(t time.Time) *fixedClock { return &fixedClock{now: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeCustomerStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]models.Customer
	deleted   map[uuid.UUID]bool
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{
		customers: make(map[uuid.UUID]models.Customer),
		deleted:   make(map[uuid.UUID]bool),
	}
}

func (s *fakeCustomerStore) Create(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers[customer.ID] = *customer
	return nil
}

func (s *fakeCustomerStore) GetByID(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	if !ok || s.deleted[id] {
		return nil, fmt.Errorf("customer %s: %w", id, database.ErrNotFound)
	}
	return &c, nil
}

func (s *fakeCustomerStore) List(context.Context) ([]models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Customer{}
	for id, c := range s.customers {
		if !s.deleted[id] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeCustomerStore) Update(_ context.Context, customer *models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[customer.ID]; !ok || s.deleted[customer.ID] {
		return fmt.Errorf("customer %s: %w", customer.ID, database.ErrNotFound)
	}
	s.customers[customer.ID] = *customer
	return nil
}

func (s *fakeCustomerStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok || s.deleted[id] {
		return fmt.Errorf("customer %s: %w", id, database.ErrNotFound)
	}
	s.deleted[id] = true
	return nil
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]models.Product
	deleted  map[uuid.UUID]bool
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{
		products: make(map[uuid.UUID]models.Product),
		deleted:  make(map[uuid.UUID]bool),
	}
}

func (s *fakeProductStore) Create(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = *product
	return nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok || s.deleted[id] {
		return nil, fmt.Errorf("product %s: %w", id, database.ErrNotFound)
	}
	return &p, nil
}

func (s *fakeProductStore) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]models.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok && !s.deleted[id] {
			out[id] = p
		}
	}
	return out, nil
}

func (s *fakeProductStore) List(context.Context) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Product{}
	for id, p := range s.products {
		if !s.deleted[id] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) Update(_ context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[product.ID]; !ok || s.deleted[product.ID] {
		return fmt.Errorf("product %s: %w", product.ID, database.ErrNotFound)
	}
	s.products[product.ID] = *product
	return nil
}

func (s *fakeProductStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok || s.deleted[id] {
		return fmt.Errorf("product %s: %w", id, database.ErrNotFound)
	}
	s.deleted[id] = true
	return nil
}

// fakeInvoiceStore keeps invoices by value so callers cannot alias stored state
type fakeInvoiceStore struct {
	mu        sync.Mutex
	invoices  map[uuid.UUID]models.Invoice
	numbers   map[string]bool
	customers *fakeCustomerStore

	createErr    error
	saveDocCalls int
	markSentErr  error
}

func newFakeInvoiceStore(customers *fakeCustomerStore) *fakeInvoiceStore {
	return &fakeInvoiceStore{
		invoices:  make(map[uuid.UUID]models.Invoice),
		numbers:   make(map[string]bool),
		customers: customers,
	}
}

func (s *fakeInvoiceStore) Create(_ context.Context, invoice *models.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.numbers[invoice.Number] {
		return fmt.Errorf("invoice number %s: %w", invoice.Number, database.ErrDuplicate)
	}
	stored := *invoice
	stored.Customer = nil
	stored.Items = append([]models.InvoiceItem(nil), invoice.Items...)
	s.invoices[invoice.ID] = stored
	s.numbers[invoice.Number] = true
	return nil
}

func (s *fakeInvoiceStore) put(invoice models.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[invoice.ID] = invoice
	s.numbers[invoice.Number] = true
}

func (s *fakeInvoiceStore) get(id uuid.UUID) models.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invoices[id]
}

func (s *fakeInvoiceStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	s.mu.Lock()
	invoice, ok := s.invoices[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}

	if s.customers != nil {
		s.customers.mu.Lock()
		if c, ok := s.customers.customers[invoice.CustomerID]; ok {
			invoice.Customer = &c
		}
		s.customers.mu.Unlock()
	}
	if invoice.Document != nil {
		doc := *invoice.Document
		doc.Data = append([]byte(nil), doc.Data...)
		invoice.Document = &doc
	}
	invoice.Items = append([]models.InvoiceItem(nil), invoice.Items...)
	return &invoice, nil
}

func (s *fakeInvoiceStore) List(context.Context) ([]models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Invoice{}
	for _, invoice := range s.invoices {
		out = append(out, invoice)
	}
	return out, nil
}

func (s *fakeInvoiceStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	invoice.Status = status
	s.invoices[id] = invoice
	return nil
}

func (s *fakeInvoiceStore) SaveDocument(_ context.Context, id uuid.UUID, doc *models.RenderedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	stored := *doc
	stored.Data = append([]byte(nil), doc.Data...)
	invoice.Document = &stored
	s.invoices[id] = invoice
	s.saveDocCalls++
	return nil
}

func (s *fakeInvoiceStore) MarkSent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markSentErr != nil {
		return s.markSentErr
	}
	invoice, ok := s.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %s: %w", id, database.ErrNotFound)
	}
	invoice.EmailSent = true
	invoice.Status = models.InvoiceStatusSent
	s.invoices[id] = invoice
	return nil
}

type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
	delay time.Duration
}

func (r *fakeRenderer) Render(invoice *models.Invoice) ([]byte, error) {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return []byte(fmt.Sprintf("%%PDF-fake %s #%d", invoice.Number, r.calls)), nil
}

func (r *fakeRenderer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *fakeStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []email.InvoiceEmail
	err  error
}

func (m *fakeMailer) SendInvoice(_ context.Context, msg email.InvoiceEmail) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	if m.err != nil {
		return "", m.err
	}
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

func (m *fakeMailer) Sent() []email.InvoiceEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]email.InvoiceEmail(nil), m.sent...)
}

type publishedEvent struct {
	name string
	data map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, name string, data map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{name: name, data: data})
	return nil
}

func (p *fakePublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.name
	}
	return names
}
