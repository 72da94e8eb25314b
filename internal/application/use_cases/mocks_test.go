package use_cases

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

func discardLogger() *logger.Logger {
	return logger.NewLoggerWithOutput(io.Discard)
}

// fakeLedger is an in-memory ledger with the same idempotency contract as
// the real one: invoices keyed on reference, sale lines replaced wholesale,
// stock decremented at most once per (invoice, product).
type fakeLedger struct {
	mu sync.Mutex

	products      map[string]*pos.Product
	invoices      map[string]int64
	lines         map[int64][]ports.SaleLineInput
	movements     map[string]int
	nextInvoiceID int64

	createErrByRef  map[string]error
	insertLinesErr  error
	decrementErrFor map[string]error
	pingErr         error

	createCalls     int
	insertCalls     int
	decrementCalls  int
	getProductCalls int
}

func newFakeLedger(products ...*pos.Product) *fakeLedger {
	l := &fakeLedger{
		products:        make(map[string]*pos.Product),
		invoices:        make(map[string]int64),
		lines:           make(map[int64][]ports.SaleLineInput),
		movements:       make(map[string]int),
		createErrByRef:  make(map[string]error),
		decrementErrFor: make(map[string]error),
	}
	for _, p := range products {
		l.products[p.ID] = p
	}
	return l
}

func movementKey(invoiceID int64, productID string) string {
	return fmt.Sprintf("%d/%s", invoiceID, productID)
}

func (l *fakeLedger) CreateInvoice(_ context.Context, in ports.InvoiceInput) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.createCalls++
	if err := l.createErrByRef[in.Reference]; err != nil {
		return 0, err
	}
	if id, ok := l.invoices[in.Reference]; ok {
		return id, nil
	}
	l.nextInvoiceID++
	l.invoices[in.Reference] = l.nextInvoiceID
	return l.nextInvoiceID, nil
}

func (l *fakeLedger) InsertSaleLines(_ context.Context, invoiceID int64, lines []ports.SaleLineInput) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.insertCalls++
	if l.insertLinesErr != nil {
		return l.insertLinesErr
	}
	l.lines[invoiceID] = append([]ports.SaleLineInput(nil), lines...)
	return nil
}

func (l *fakeLedger) DecrementStock(_ context.Context, productID string, baseUnits int, invoiceID int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.decrementCalls++
	if err := l.decrementErrFor[productID]; err != nil {
		return 0, err
	}

	p, ok := l.products[productID]
	if !ok {
		return 0, domainErrors.ErrProductNotFound
	}
	if _, applied := l.movements[movementKey(invoiceID, productID)]; applied {
		return p.Stock, nil
	}
	if p.Stock < baseUnits {
		return 0, domainErrors.NewStockRejection(productID, p.Name, baseUnits, p.Stock)
	}
	p.Stock -= baseUnits
	l.movements[movementKey(invoiceID, productID)] = baseUnits
	return p.Stock, nil
}

func (l *fakeLedger) GetProduct(_ context.Context, productID string) (*pos.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.getProductCalls++
	p, ok := l.products[productID]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (l *fakeLedger) Ping(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pingErr
}

func (l *fakeLedger) stockOf(productID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.products[productID].Stock
}

type fakeQueue struct {
	mu sync.Mutex

	nextID  int64
	entries []ports.PendingTransaction

	enqueueErr error
	listErr    error
	removeErr  map[int64]error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{removeErr: make(map[int64]error)}
}

func (q *fakeQueue) Enqueue(_ context.Context, payload *pos.CheckoutPayload) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.enqueueErr != nil {
		return 0, q.enqueueErr
	}
	q.nextID++
	q.entries = append(q.entries, ports.PendingTransaction{
		OfflineID:  q.nextID,
		Payload:    payload,
		CapturedAt: time.Now().UTC(),
		OrgScope:   payload.OrgScope,
	})
	return q.nextID, nil
}

func (q *fakeQueue) enqueueCorrupt(cause error) int64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	q.entries = append(q.entries, ports.PendingTransaction{
		OfflineID:  q.nextID,
		CapturedAt: time.Now().UTC(),
		Corrupt:    cause,
	})
	return q.nextID
}

func (q *fakeQueue) List(_ context.Context) ([]ports.PendingTransaction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.listErr != nil {
		return nil, q.listErr
	}
	return append([]ports.PendingTransaction(nil), q.entries...), nil
}

func (q *fakeQueue) Remove(_ context.Context, offlineID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.removeErr[offlineID]; err != nil {
		return err
	}
	for i, e := range q.entries {
		if e.OfflineID == offlineID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *fakeQueue) Clear(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries = nil
	return nil
}

func (q *fakeQueue) Depth(_ context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), nil
}

func (q *fakeQueue) ids() []int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]int64, 0, len(q.entries))
	for _, e := range q.entries {
		out = append(out, e.OfflineID)
	}
	return out
}

type fakeCache struct {
	mu sync.Mutex

	products    map[string]*pos.Product
	invalidated []string

	getErr error
	setErr error

	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{products: make(map[string]*pos.Product)}
}

func (c *fakeCache) GetProduct(_ context.Context, productID string) (*pos.Product, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.getCalls++
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.products[productID]
	return p, ok, nil
}

func (c *fakeCache) SetProduct(_ context.Context, p *pos.Product, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.products[p.ID] = p
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.products, productID)
	c.invalidated = append(c.invalidated, productID)
	return nil
}
