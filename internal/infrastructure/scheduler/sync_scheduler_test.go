package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmaterm/pos-core/internal/application/ports"
	"github.com/pharmaterm/pos-core/internal/application/use_cases"
	"github.com/pharmaterm/pos-core/internal/domain/pos"
	"github.com/pharmaterm/pos-core/internal/pkg/logger"
)

type stubDrainer struct {
	mu    sync.Mutex
	calls int
}

func (d *stubDrainer) Handle(context.Context) (*use_cases.SyncReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return &use_cases.SyncReport{}, nil
}

func (d *stubDrainer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// stubLedger only answers pings; the scheduler never touches the rest.
type stubLedger struct {
	mu      sync.Mutex
	pingErr error
}

func (l *stubLedger) setPingErr(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pingErr = err
}

func (l *stubLedger) Ping(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pingErr
}

func (l *stubLedger) CreateInvoice(context.Context, ports.InvoiceInput) (int64, error) {
	return 0, errors.New("not implemented")
}

func (l *stubLedger) InsertSaleLines(context.Context, int64, []ports.SaleLineInput) error {
	return errors.New("not implemented")
}

func (l *stubLedger) DecrementStock(context.Context, string, int, int64) (int, error) {
	return 0, errors.New("not implemented")
}

func (l *stubLedger) GetProduct(context.Context, string) (*pos.Product, error) {
	return nil, errors.New("not implemented")
}

func startScheduler(t *testing.T, drainer *stubDrainer, ledger *stubLedger) *SyncScheduler {
	t.Helper()
	s := NewSyncScheduler(drainer, ledger, logger.NewLoggerWithOutput(io.Discard), time.Hour)
	go s.Start(context.Background())
	t.Cleanup(s.Stop)
	return s
}

func TestSyncScheduler_DrainsOnStartWhenOnline(t *testing.T) {
	drainer := &stubDrainer{}
	startScheduler(t, drainer, &stubLedger{})

	require.Eventually(t, func() bool { return drainer.count() == 1 },
		time.Second, 5*time.Millisecond)
}

func TestSyncScheduler_TriggerRunsExtraPass(t *testing.T) {
	drainer := &stubDrainer{}
	s := startScheduler(t, drainer, &stubLedger{})

	require.Eventually(t, func() bool { return drainer.count() == 1 },
		time.Second, 5*time.Millisecond)

	s.TriggerSync()

	require.Eventually(t, func() bool { return drainer.count() == 2 },
		time.Second, 5*time.Millisecond)
}

func TestSyncScheduler_OfflineSkipsDrain(t *testing.T) {
	drainer := &stubDrainer{}
	ledger := &stubLedger{pingErr: errors.New("connection refused")}
	s := startScheduler(t, drainer, ledger)

	s.TriggerSync()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 0, drainer.count())
}

func TestSyncScheduler_DrainsOnReconnect(t *testing.T) {
	drainer := &stubDrainer{}
	ledger := &stubLedger{pingErr: errors.New("connection refused")}
	s := startScheduler(t, drainer, ledger)

	s.TriggerSync()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, drainer.count())

	ledger.setPingErr(nil)
	s.TriggerSync()

	require.Eventually(t, func() bool { return drainer.count() == 1 },
		time.Second, 5*time.Millisecond)
}
