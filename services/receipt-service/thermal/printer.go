package thermal

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
)

// Result acknowledges a completed print.
type Result struct {
	BytesSent int
	Duration  time.Duration
}

// Printer composes receipts and writes them to the configured interface.
type Printer struct {
	dial DialFunc
}

func NewPrinter() *Printer {
	return &Printer{dial: Dial}
}

// NewPrinterWithDialer is used by tests to capture the output stream.
func NewPrinterWithDialer(dial DialFunc) *Printer {
	return &Printer{dial: dial}
}

// Print sends r to the printer described by cfg, which must carry defaults.
// Errors are *apperrors.Error of kind ErrValidation, ErrRender or ErrDevice.
func (p *Printer) Print(ctx context.Context, r *models.ReceiptData, cfg models.PrinterConfig) (Result, error) {
	start := time.Now()

	data, err := Compose(r, cfg)
	if err != nil {
		return Result{}, classify(err, apperrors.ErrRender)
	}

	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = time.Duration(models.DefaultPrinterTimeout) * time.Millisecond
	}

	done := make(chan sendResult, 1)
	go func() {
		n, err := p.send(ctx, cfg.Interface, timeout, data)
		done <- sendResult{n: n, err: err}
	}()

	// connect and write each get the timeout
	guard := time.NewTimer(2 * timeout)
	defer guard.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return Result{BytesSent: res.n}, res.err
		}
		return Result{BytesSent: res.n, Duration: time.Since(start)}, nil
	case <-ctx.Done():
		return Result{}, apperrors.Wrap(apperrors.ErrDevice, fmt.Errorf("printer %s: %w", cfg.Interface, ctx.Err()))
	case <-guard.C:
		return Result{}, apperrors.Wrap(apperrors.ErrDevice, fmt.Errorf("printer %s did not respond within %s", cfg.Interface, 2*timeout))
	}
}

type sendResult struct {
	n   int
	err error
}

// send dials the interface and writes data. A write that never returns is
// left to the guard in Print.
func (p *Printer) send(ctx context.Context, iface string, timeout time.Duration, data []byte) (int, error) {
	conn, err := p.dial(ctx, iface, timeout)
	if err != nil {
		return 0, classify(err, apperrors.ErrDevice)
	}

	n, err := conn.Write(data)
	closeErr := conn.Close()
	if err == nil && n < len(data) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(data))
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return n, apperrors.Wrap(apperrors.ErrDevice, fmt.Errorf("write to printer: %w", err))
	}
	return n, nil
}

func classify(err error, fallback *apperrors.Error) error {
	if errors.Is(err, ErrInvalidConfig) {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	return apperrors.Wrap(fallback, err)
}
