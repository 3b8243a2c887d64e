package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"gorm.io/gorm"
)

// PrintJobRepository defines data-access operations for print jobs.
type PrintJobRepository interface {
	Create(ctx context.Context, job *models.PrintJob) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.PrintJob, error)
	FindAll(ctx context.Context, page, limit int) ([]models.PrintJob, int64, error)
}

// GormPrintJobRepository implements PrintJobRepository using GORM.
type GormPrintJobRepository struct {
	db *gorm.DB
}

func NewGormPrintJobRepository(db *gorm.DB) PrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

func (r *GormPrintJobRepository) Create(ctx context.Context, job *models.PrintJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PrintJob, error) {
	var job models.PrintJob
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindAll returns one page of jobs, newest first, and the total count.
func (r *GormPrintJobRepository) FindAll(ctx context.Context, page, limit int) ([]models.PrintJob, int64, error) {
	var jobs []models.PrintJob
	var total int64

	query := r.db.WithContext(ctx).Model(&models.PrintJob{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}
