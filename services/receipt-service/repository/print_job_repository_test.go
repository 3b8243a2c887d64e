package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/kadekedwin/billforge/services/receipt-service/models"
	"github.com/kadekedwin/billforge/services/receipt-service/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var jobColumns = []string{"id", "receipt_number", "printer_type", "interface", "character_set", "status", "error", "bytes_sent", "duration_ms", "created_at"}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestCreate_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	job := &models.PrintJob{
		ID:            uuid.New(),
		ReceiptNumber: "INV-1",
		PrinterType:   "epson",
		Interface:     "tcp://10.0.0.9:9100",
		Status:        models.PrintJobStatusPrinted,
		BytesSent:     512,
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "print_jobs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(job.ID))
	mock.ExpectCommit()

	assert.NoError(t, repo.Create(context.Background(), job))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Error(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "print_jobs"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.PrintJob{ID: uuid.New(), Status: models.PrintJobStatusFailed})
	assert.Error(t, err)
}

func TestFindByID_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	id := uuid.New()
	rows := sqlmock.NewRows(jobColumns).
		AddRow(id, "INV-2", "star", "/dev/usb/lp0", "PC437_USA", models.PrintJobStatusFailed, "printer offline", 0, 12, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "print_jobs"`)).
		WillReturnRows(rows)

	job, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "INV-2", job.ReceiptNumber)
	assert.Equal(t, "printer offline", job.Error)
}

func TestFindByID_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "print_jobs"`)).
		WillReturnRows(sqlmock.NewRows(jobColumns))

	job, err := repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Nil(t, job)
}

func TestFindAll_Success(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "print_jobs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "print_jobs" ORDER BY created_at DESC`)).
		WillReturnRows(sqlmock.NewRows(jobColumns).
			AddRow(uuid.New(), "INV-3", "epson", "tcp://a:9100", "PC437_USA", models.PrintJobStatusPrinted, "", 300, 40, now).
			AddRow(uuid.New(), "INV-2", "epson", "tcp://a:9100", "PC437_USA", models.PrintJobStatusPrinted, "", 280, 35, now.Add(-time.Minute)))

	jobs, total, err := repo.FindAll(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "INV-3", jobs[0].ReceiptNumber)
}

func TestFindAll_CountError(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormPrintJobRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "print_jobs"`)).
		WillReturnError(errors.New("db down"))

	_, _, err := repo.FindAll(context.Background(), 1, 10)
	assert.Error(t, err)
}
