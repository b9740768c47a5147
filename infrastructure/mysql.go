package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"talentscout/domain"
)

// MySQLStore implements domain.Store on top of gorm.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore connects using DB_DSN and migrates the schema.
func NewMySQLStore() (*MySQLStore, error) {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		return nil, errors.New("DB_DSN is not set in environment")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Job{}, &domain.Application{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("connected to MySQL and migrated schema")
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) GetJobs(ctx context.Context) ([]domain.Job, error) {
	var jobs []domain.Job
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *MySQLStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *MySQLStore) SaveJob(ctx context.Context, job *domain.Job) error {
	return s.db.WithContext(ctx).Save(job).Error
}

func (s *MySQLStore) GetApplications(ctx context.Context, jobID string) ([]domain.Application, error) {
	var apps []domain.Application
	if err := s.db.WithContext(ctx).Where("job_id = ?", jobID).Order("submitted_at ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *MySQLStore) GetApplication(ctx context.Context, id string) (*domain.Application, error) {
	var app domain.Application
	err := s.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (s *MySQLStore) SaveApplication(ctx context.Context, app *domain.Application) error {
	return s.db.WithContext(ctx).Create(app).Error
}

func (s *MySQLStore) UpdateApplication(ctx context.Context, app *domain.Application) error {
	return s.db.WithContext(ctx).Save(app).Error
}
