package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	domainErrors "github.com/pharmaterm/pos-core/internal/domain/errors"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/infrastructure/monitoring"
)

// LedgerClient implements the ledger contract against the backing store.
// Every call is bounded by its own timeout; an expired call is reported as
// transport failure, never as ambiguous success.
type LedgerClient struct {
	db      *sql.DB
	timeout time.Duration
}

func NewLedgerClient(conn *Connection, timeout time.Duration) *LedgerClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LedgerClient{
		db:      conn.GetDB(),
		timeout: timeout,
	}
}

// CreateInvoice is idempotent on the reference: a replayed payload gets the
// invoice id created by the earlier attempt.
func (c *LedgerClient) CreateInvoice(ctx context.Context, in ports.InvoiceInput) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	insertQuery := `
		INSERT INTO invoices (reference, org_scope, customer_id, total_cents, discount_cents, payment_method, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (reference) DO NOTHING
		RETURNING id
	`

	customer := sql.NullString{String: in.CustomerID, Valid: in.CustomerID != ""}

	var id int64
	row := monitoring.InstrumentQueryRow(ctx, c.db, "INSERT", "invoices", insertQuery,
		in.Reference, in.OrgScope, customer, in.TotalCents, in.DiscountCents, in.PaymentMethod, in.SaleDate,
	)
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, c.wrap("create invoice", err)
	}

	selectQuery := `SELECT id FROM invoices WHERE reference = $1`
	row = monitoring.InstrumentQueryRow(ctx, c.db, "SELECT", "invoices", selectQuery, in.Reference)
	if err := row.Scan(&id); err != nil {
		return 0, c.wrap("create invoice", err)
	}
	return id, nil
}

// InsertSaleLines replaces the invoice's full line set, making a replay
// after a half-written insert converge instead of duplicating lines.
func (c *LedgerClient) InsertSaleLines(ctx context.Context, invoiceID int64, lines []ports.SaleLineInput) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return c.wrap("insert sale lines", err)
	}
	defer tx.Rollback()

	deleteQuery := `DELETE FROM invoice_lines WHERE invoice_id = $1`
	if _, err := monitoring.InstrumentTxExec(ctx, tx, "DELETE", "invoice_lines", deleteQuery, invoiceID); err != nil {
		return c.wrap("insert sale lines", err)
	}

	insertQuery := `
		INSERT INTO invoice_lines (invoice_id, product_id, quantity, unit, unit_price_cents, items_per_box, base_units)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, line := range lines {
		if _, err := monitoring.InstrumentTxExec(ctx, tx, "INSERT", "invoice_lines", insertQuery,
			invoiceID, line.ProductID, line.Quantity, string(line.Unit), line.UnitPriceCents, line.ItemsPerBox, line.BaseUnits,
		); err != nil {
			return c.wrap("insert sale lines", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return c.wrap("insert sale lines", err)
	}
	return nil
}

// DecrementStock applies at most once per (invoice, product): a movement
// row is claimed first, and the decrement only runs when the claim is new.
// The stock floor is enforced here, in the same statement as the decrement,
// not by the terminal's cached snapshot.
func (c *LedgerClient) DecrementStock(ctx context.Context, productID string, baseUnits int, invoiceID int64) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, c.wrap("decrement stock", err)
	}
	defer tx.Rollback()

	claimQuery := `
		INSERT INTO stock_movements (invoice_id, product_id, base_units)
		VALUES ($1, $2, $3)
		ON CONFLICT (invoice_id, product_id) DO NOTHING
	`
	result, err := monitoring.InstrumentTxExec(ctx, tx, "INSERT", "stock_movements", claimQuery,
		invoiceID, productID, baseUnits,
	)
	if err != nil {
		return 0, c.wrap("decrement stock", err)
	}

	claimed, err := result.RowsAffected()
	if err != nil {
		return 0, c.wrap("decrement stock", err)
	}

	if claimed == 0 {
		// Already applied by an earlier attempt; report current stock.
		var stock int
		row := monitoring.InstrumentTxQueryRow(ctx, tx, "SELECT", "products",
			`SELECT stock FROM products WHERE id = $1`, productID)
		if err := row.Scan(&stock); err != nil {
			return 0, c.wrap("decrement stock", err)
		}
		if err := tx.Commit(); err != nil {
			return 0, c.wrap("decrement stock", err)
		}
		return stock, nil
	}

	decrementQuery := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2
	`
	result, err = monitoring.InstrumentTxExec(ctx, tx, "UPDATE", "products", decrementQuery, productID, baseUnits)
	if err != nil {
		return 0, c.wrap("decrement stock", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, c.wrap("decrement stock", err)
	}

	if rows == 0 {
		if err := tx.Rollback(); err != nil {
			return 0, c.wrap("decrement stock", err)
		}

		var name string
		var available int
		row := monitoring.InstrumentQueryRow(ctx, c.db, "SELECT", "products",
			`SELECT name, stock FROM products WHERE id = $1`, productID)
		if err := row.Scan(&name, &available); err != nil {
			if err == sql.ErrNoRows {
				return 0, fmt.Errorf("decrement stock: %w: %s", domainErrors.ErrProductNotFound, productID)
			}
			return 0, c.wrap("decrement stock", err)
		}
		return 0, domainErrors.NewStockRejection(productID, name, baseUnits, available)
	}

	var stock int
	row := monitoring.InstrumentTxQueryRow(ctx, tx, "SELECT", "products",
		`SELECT stock FROM products WHERE id = $1`, productID)
	if err := row.Scan(&stock); err != nil {
		return 0, c.wrap("decrement stock", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, c.wrap("decrement stock", err)
	}
	return stock, nil
}

func (c *LedgerClient) GetProduct(ctx context.Context, productID string) (*pos.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := `
		SELECT id, name, stock, items_per_box, unit_price_cents, box_price_cents, selling_mode
		FROM products
		WHERE id = $1
	`

	var p pos.Product
	var mode string
	row := monitoring.InstrumentQueryRow(ctx, c.db, "SELECT", "products", query, productID)
	err := row.Scan(&p.ID, &p.Name, &p.Stock, &p.ItemsPerBox, &p.UnitPriceCents, &p.BoxPriceCents, &mode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("get product: %w: %s", domainErrors.ErrProductNotFound, productID)
		}
		return nil, c.wrap("get product", err)
	}

	p.Mode = pos.SellingMode(mode)
	return &p, nil
}

func (c *LedgerClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return domainErrors.NewTransport("ping", err)
	}
	return nil
}

// wrap classifies a driver error: connection-level failures become
// transport errors (routing the checkout to the offline queue), everything
// else is a ledger rejection and surfaces as-is.
func (c *LedgerClient) wrap(op string, err error) error {
	if isTransport(err) {
		return domainErrors.NewTransport(op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
