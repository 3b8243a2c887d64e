package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/render"

	"go.uber.org/zap"
)

// ReceiptService renders downloadable receipts.
type ReceiptService interface {
	RenderImage(ctx context.Context, r *models.ReceiptData, opts models.ImageOptions) (*models.RenderedReceipt, error)
	RenderPDF(ctx context.Context, r *models.ReceiptData, opts models.PDFOptions) (*models.RenderedReceipt, error)
}

type receiptServiceImpl struct {
	archiver awspkg.ObjectArchiver
	metrics  recorder
	logger   *zap.Logger
}

// NewReceiptService creates a ReceiptService. archiver may be nil, in which
// case nothing is archived.
func NewReceiptService(archiver awspkg.ObjectArchiver, metrics middleware.MetricsRecorder, logger *zap.Logger) ReceiptService {
	return &receiptServiceImpl{
		archiver: archiver,
		metrics:  recorder{metrics: metrics},
		logger:   logger,
	}
}

func (s *receiptServiceImpl) RenderImage(ctx context.Context, r *models.ReceiptData, opts models.ImageOptions) (*models.RenderedReceipt, error) {
	if err := validateReceipt(r); err != nil {
		return nil, err
	}

	start := time.Now()
	body, format, err := render.RenderImage(r, opts)
	if err != nil {
		return nil, s.renderFailed(ctx, "image", r, err)
	}

	out := &models.RenderedReceipt{
		Body:        body,
		ContentType: format.ContentType,
		Filename:    r.FileBase() + "." + format.Extension,
	}
	s.finish(ctx, "image", r, out, time.Since(start))
	return out, nil
}

func (s *receiptServiceImpl) RenderPDF(ctx context.Context, r *models.ReceiptData, opts models.PDFOptions) (*models.RenderedReceipt, error) {
	if err := validateReceipt(r); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := render.RenderPDF(r, opts)
	if err != nil {
		return nil, s.renderFailed(ctx, "pdf", r, err)
	}

	out := &models.RenderedReceipt{
		Body:        body,
		ContentType: "application/pdf",
		Filename:    r.FileBase() + ".pdf",
	}
	s.finish(ctx, "pdf", r, out, time.Since(start))
	return out, nil
}

func validateReceipt(r *models.ReceiptData) error {
	if r == nil {
		return apperrors.Wrap(apperrors.ErrValidation, errors.New("receiptData is required"))
	}
	if err := r.Validate(); err != nil {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	return nil
}

func (s *receiptServiceImpl) renderFailed(ctx context.Context, format string, r *models.ReceiptData, err error) error {
	if errors.Is(err, render.ErrInvalidOptions) {
		return apperrors.Wrap(apperrors.ErrValidation, err)
	}
	s.logger.Error("Receipt rendering failed",
		zap.String("format", format),
		zap.String("receipt_number", r.ReceiptNumber),
		zap.Error(err),
	)
	s.metrics.count(ctx, awspkg.MetricRenderFailed, map[string]string{"Format": format})
	return apperrors.Wrap(apperrors.ErrRender, err)
}

func (s *receiptServiceImpl) finish(ctx context.Context, format string, r *models.ReceiptData, out *models.RenderedReceipt, took time.Duration) {
	dims := map[string]string{"Format": format}
	s.metrics.count(ctx, awspkg.MetricReceiptsRendered, dims)
	s.metrics.latency(ctx, awspkg.MetricRenderLatency, took, dims)

	s.logger.Info("Receipt rendered",
		zap.String("format", format),
		zap.String("receipt_number", r.ReceiptNumber),
		zap.Int("bytes", len(out.Body)),
		zap.Duration("took", took),
	)

	if s.archiver == nil {
		return
	}
	key := ArchiveKey(r, out.Filename)
	if _, err := s.archiver.Archive(ctx, key, out.ContentType, out.Body); err != nil {
		s.logger.Warn("Failed to archive receipt", zap.String("key", key), zap.Error(err))
		return
	}
	out.ArchiveKey = key
	s.metrics.count(ctx, awspkg.MetricReceiptsArchived, dims)
}

// ArchiveKey groups archived receipts by transaction month.
func ArchiveKey(r *models.ReceiptData, filename string) string {
	return fmt.Sprintf("receipts/%s/%s", r.TransactionDate.UTC().Format("2006/01"), filename)
}
