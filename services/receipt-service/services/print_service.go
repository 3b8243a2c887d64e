package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	awspkg "github.com/kadekedwin/billforge/pkg/aws"
	apperrors "github.com/kadekedwin/billforge/services/common/errors"
	"github.com/kadekedwin/billforge/services/common/middleware"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/repository"
	"github.com/kadekedwin/billforge/services/receipt-service/thermal"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ThermalPrinter is implemented by *thermal.Printer.
type ThermalPrinter interface {
	Print(ctx context.Context, r *models.ReceiptData, cfg models.PrinterConfig) (thermal.Result, error)
}

// PrintService dispatches receipts to thermal printers and keeps their history.
type PrintService interface {
	Print(ctx context.Context, r *models.ReceiptData, cfg *models.PrinterConfig) (*models.PrintJob, error)
	ListJobs(ctx context.Context, page, limit int) ([]models.PrintJob, int64, error)
	GetJob(ctx context.Context, id uuid.UUID) (*models.PrintJob, error)
}

type printServiceImpl struct {
	printer     ThermalPrinter
	repo        repository.PrintJobRepository
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	defaults    models.PrinterConfig
	metrics     recorder
	logger      *zap.Logger
}

// NewPrintService creates a PrintService. repo and snsClient are optional.
func NewPrintService(
	printer ThermalPrinter,
	repo repository.PrintJobRepository,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	defaults models.PrinterConfig,
	metrics middleware.MetricsRecorder,
	logger *zap.Logger,
) PrintService {
	return &printServiceImpl{
		printer:     printer,
		repo:        repo,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		defaults:    defaults,
		metrics:     recorder{metrics: metrics},
		logger:      logger,
	}
}

// Print validates r, sends it once and records the attempt. A failed attempt
// is returned to the caller as is; nothing is retried.
func (s *printServiceImpl) Print(ctx context.Context, r *models.ReceiptData, cfg *models.PrinterConfig) (*models.PrintJob, error) {
	if err := validateReceipt(r); err != nil {
		return nil, err
	}
	resolved := cfg.WithDefaults(s.defaults)

	job := &models.PrintJob{
		ID:            uuid.New(),
		ReceiptNumber: r.ReceiptNumber,
		PrinterType:   string(resolved.Type),
		Interface:     resolved.Interface,
		CharacterSet:  resolved.CharacterSet,
	}

	start := time.Now()
	res, err := s.printer.Print(ctx, r, resolved)
	job.BytesSent = res.BytesSent
	job.DurationMs = time.Since(start).Milliseconds()

	dims := map[string]string{"PrinterType": job.PrinterType}
	if err != nil {
		job.Status = models.PrintJobStatusFailed
		job.Error = err.Error()
		s.logger.Error("Thermal print failed",
			zap.String("job_id", job.ID.String()),
			zap.String("receipt_number", job.ReceiptNumber),
			zap.String("interface", job.Interface),
			zap.Error(err),
		)
		s.metrics.count(ctx, awspkg.MetricPrintFailed, dims)
		s.record(ctx, job)
		return job, err
	}

	job.Status = models.PrintJobStatusPrinted
	s.logger.Info("Receipt printed",
		zap.String("job_id", job.ID.String()),
		zap.String("receipt_number", job.ReceiptNumber),
		zap.String("printer_type", job.PrinterType),
		zap.Int("bytes", job.BytesSent),
	)
	s.metrics.count(ctx, awspkg.MetricPrintSucceeded, dims)
	s.metrics.latency(ctx, awspkg.MetricPrintLatency, res.Duration, dims)
	s.record(ctx, job)

	s.publishEvent(ctx, models.ReceiptPrintedEvent{
		EventType:     models.ReceiptPrintedEventType,
		JobID:         job.ID.String(),
		ReceiptNumber: job.ReceiptNumber,
		PrinterType:   job.PrinterType,
		Total:         r.Total.String(),
		Currency:      r.CurrencyCode(),
		Timestamp:     time.Now().UTC(),
	})

	return job, nil
}

func (s *printServiceImpl) ListJobs(ctx context.Context, page, limit int) ([]models.PrintJob, int64, error) {
	if s.repo == nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, errors.New("print history is not configured"))
	}
	jobs, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		s.logger.Error("Failed to list print jobs", zap.Error(err))
		return nil, 0, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	return jobs, total, nil
}

func (s *printServiceImpl) GetJob(ctx context.Context, id uuid.UUID) (*models.PrintJob, error) {
	if s.repo == nil {
		return nil, apperrors.Wrap(apperrors.ErrServiceUnavailable, errors.New("print history is not configured"))
	}
	job, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, errors.New("print job not found"))
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}
	return job, nil
}

// record stores the job; history is best effort and never fails a print.
func (s *printServiceImpl) record(ctx context.Context, job *models.PrintJob) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(ctx, job); err != nil {
		s.logger.Warn("Failed to record print job", zap.String("job_id", job.ID.String()), zap.Error(err))
	}
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *printServiceImpl) publishEvent(ctx context.Context, event interface{}) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
		return
	}
	s.logger.Info("Published SNS event", zap.String("topic", s.snsTopicArn))
}
