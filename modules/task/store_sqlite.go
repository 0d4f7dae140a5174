package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model behind SQLiteStore. The composite index
// serves the status/priority filters with the common sort columns.
type taskRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false"`
	Title       string    `gorm:"not null"`
	Description string    `gorm:"not null;default:''"`
	Status      string    `gorm:"not null;index:idx_tasks_filter,priority:1"`
	Priority    string    `gorm:"not null;index:idx_tasks_filter,priority:2"`
	DueDate     time.Time `gorm:"not null;index:idx_tasks_filter,priority:3;index:idx_tasks_due_date"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index:idx_tasks_filter,priority:4;index:idx_tasks_created_at,sort:desc"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func newTaskRecord(t domain.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r taskRecord) toDomain() domain.Task {
	return domain.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      domain.Status(r.Status),
		Priority:    domain.Priority(r.Priority),
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// SQLiteStore persists tasks through GORM.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

var (
	_ Store  = (*SQLiteStore)(nil)
	_ Pinger = (*SQLiteStore)(nil)
	_ Closer = (*SQLiteStore)(nil)
)

// OpenSQLiteStore opens (creating if needed) the database at path and
// migrates the tasks table. Use ":memory:" for a throwaway database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection serialises writers and keeps ":memory:" databases
	// from splitting across the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Task, error) {
	var records []taskRecord
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(records))
	for _, r := range records {
		tasks = append(tasks, r.toDomain())
	}
	return tasks, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (domain.Task, error) {
	var record taskRecord
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, domain.ErrNotFound
		}
		return domain.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return record.toDomain(), nil
}

func (s *SQLiteStore) Insert(ctx context.Context, t domain.Task) (domain.Task, error) {
	record := newTaskRecord(t)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID int64
		if err := tx.Model(&taskRecord{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		record.ID = maxID + 1
		return tx.Create(&record).Error
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return record.toDomain(), nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, mutate func(*domain.Task) error) (domain.Task, error) {
	var (
		updated   domain.Task
		rejectErr error
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record taskRecord
		if err := tx.First(&record, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				rejectErr = domain.ErrNotFound
			}
			return err
		}

		updated = record.toDomain()
		if err := mutate(&updated); err != nil {
			rejectErr = err
			return err
		}
		updated.ID = id

		next := newTaskRecord(updated)
		return tx.Save(&next).Error
	})
	if rejectErr != nil {
		return domain.Task{}, rejectErr
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).Delete(&taskRecord{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&taskRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return int(n), nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
