package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"dvrflow/internal/model"
	"dvrflow/internal/telemetry"

	"go.uber.org/zap"
)

type recordedRow struct {
	ChanID       int       `gorm:"column:chanid;primaryKey"`
	StartTime    time.Time `gorm:"column:starttime;primaryKey"`
	Title        string    `gorm:"column:title"`
	Subtitle     string    `gorm:"column:subtitle"`
	Basename     string    `gorm:"column:basename"`
	StorageGroup string    `gorm:"column:storagegroup"`
	RecGroup     string    `gorm:"column:recgroup"`
	Cutlist      int       `gorm:"column:cutlist"`
	Transcoded   int       `gorm:"column:transcoded"`
	FileSize     int64     `gorm:"column:filesize"`
	Bookmark     int64     `gorm:"column:bookmark"`
}

func (recordedRow) TableName() string { return "recorded" }

type jobRow struct {
	ID        int       `gorm:"column:id;primaryKey"`
	ChanID    int       `gorm:"column:chanid"`
	StartTime time.Time `gorm:"column:starttime"`
	Status    int       `gorm:"column:status"`
	Comment   string    `gorm:"column:comment"`
}

func (jobRow) TableName() string { return "jobqueue" }

type markupRow struct {
	ChanID    int       `gorm:"column:chanid;primaryKey"`
	StartTime time.Time `gorm:"column:starttime;primaryKey"`
	Mark      int64     `gorm:"column:mark;primaryKey"`
	Type      int       `gorm:"column:type;primaryKey"`
}

func (markupRow) TableName() string { return "recordedmarkup" }

type seekRow struct {
	ChanID    int       `gorm:"column:chanid;primaryKey"`
	StartTime time.Time `gorm:"column:starttime;primaryKey"`
	Mark      int64     `gorm:"column:mark;primaryKey"`
	Offset    int64     `gorm:"column:offset"`
	Type      int       `gorm:"column:type;primaryKey"`
}

func (seekRow) TableName() string { return "recordedseek" }

type storageGroupRow struct {
	ID        int    `gorm:"column:id;primaryKey;autoIncrement"`
	GroupName string `gorm:"column:groupname"`
	DirName   string `gorm:"column:dirname"`
}

func (storageGroupRow) TableName() string { return "storagegroup" }

// GormStore is the gorm-backed Store implementation. Every method wraps its
// query in RetryOnce so a stale connection is survived exactly once.
type GormStore struct {
	db   *gorm.DB
	open func() (*gorm.DB, error)
}

// NewDefaultStore connects using environment configuration: DATABASE_TYPE
// selects "sqlite" (default, SQLITE_PATH) or "postgres" (POSTGRES_DSN).
func NewDefaultStore() (*GormStore, error) {
	switch dbType := os.Getenv("DATABASE_TYPE"); dbType {
	case "", "sqlite":
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "dvrflow.db"
		}
		return NewSQLiteStore(path)
	case "postgres":
		return NewPostgresStore(os.Getenv("POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
}

// NewSQLiteStore opens (or creates) a sqlite-backed store.
func NewSQLiteStore(path string) (*GormStore, error) {
	open := func() (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(path), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
	}
	return newGormStore(open)
}

// NewPostgresStore opens a postgres-backed store.
func NewPostgresStore(dsn string) (*GormStore, error) {
	open := func() (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
	}
	return newGormStore(open)
}

func newGormStore(open func() (*gorm.DB, error)) (*GormStore, error) {
	db, err := open()
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if err := db.AutoMigrate(&recordedRow{}, &jobRow{}, &markupRow{}, &seekRow{}, &storageGroupRow{}); err != nil {
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	telemetry.Logger.Info("Connected to metadata store")
	return &GormStore{db: db, open: open}, nil
}

func (s *GormStore) reconnect() error {
	db, err := s.open()
	if err != nil {
		return err
	}
	if old, err := s.db.DB(); err == nil {
		old.Close()
	}
	s.db = db
	return nil
}

func (s *GormStore) withRetry(op func(db *gorm.DB) error) error {
	return RetryOnce(func() error { return op(s.db) }, IsStaleConnection, s.reconnect)
}

func (s *GormStore) Recording(ctx context.Context, key model.RecordingKey) (*model.Recording, error) {
	var row recordedRow
	err := s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("chanid = ? AND starttime = ?", key.ChanID, key.StartTime).
			First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recording %s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	rec := recordingFromRow(row)
	return &rec, nil
}

func (s *GormStore) RecordingPath(ctx context.Context, rec *model.Recording) (string, error) {
	var rows []storageGroupRow
	err := s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("groupname = ?", rec.StorageGroup).
			Find(&rows).Error
	})
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		path := filepath.Join(row.DirName, rec.Basename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("recording file %s not in storage group %q: %w",
		rec.Basename, rec.StorageGroup, ErrNotFound)
}

func (s *GormStore) UpdateRecording(ctx context.Context, rec *model.Recording) error {
	updates := map[string]interface{}{
		"cutlist":    boolToInt(rec.Cutlist),
		"transcoded": boolToInt(rec.Transcoded),
		"filesize":   rec.FileSize,
		"basename":   rec.Basename,
		"bookmark":   rec.Bookmark,
	}
	return s.withRetry(func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&recordedRow{}).
			Where("chanid = ? AND starttime = ?", rec.ChanID, rec.StartTime).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recording %s: %w", rec.Key(), ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore) ClearSeek(ctx context.Context, key model.RecordingKey) error {
	return s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("chanid = ? AND starttime = ?", key.ChanID, key.StartTime).
			Delete(&seekRow{}).Error
	})
}

func (s *GormStore) Markup(ctx context.Context, key model.RecordingKey) ([]model.Marker, error) {
	var rows []markupRow
	err := s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("chanid = ? AND starttime = ?", key.ChanID, key.StartTime).
			Order("mark").
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	markers := make([]model.Marker, 0, len(rows))
	for _, row := range rows {
		markers = append(markers, model.Marker{Type: row.Type, Frame: row.Mark})
	}
	return markers, nil
}

func (s *GormStore) ReplaceMarkup(ctx context.Context, key model.RecordingKey, markers []model.Marker) error {
	return s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("chanid = ? AND starttime = ?", key.ChanID, key.StartTime).
				Delete(&markupRow{}).Error; err != nil {
				return err
			}
			for _, m := range markers {
				row := markupRow{
					ChanID:    key.ChanID,
					StartTime: key.StartTime,
					Mark:      m.Frame,
					Type:      m.Type,
				}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func (s *GormStore) Job(ctx context.Context, id int) (*model.Job, error) {
	var row jobRow
	err := s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &model.Job{
		ID:        row.ID,
		ChanID:    row.ChanID,
		StartTime: row.StartTime,
		Status:    model.JobStatus(row.Status),
		Comment:   row.Comment,
	}, nil
}

func (s *GormStore) UpdateJob(ctx context.Context, id int, status model.JobStatus, comment string) error {
	return s.withRetry(func(db *gorm.DB) error {
		res := db.WithContext(ctx).Model(&jobRow{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"status": int(status), "comment": comment})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil
	})
}

func (s *GormStore) DeletedRecordings(ctx context.Context) ([]model.Recording, error) {
	var rows []recordedRow
	err := s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).
			Where("recgroup = ?", model.RecGroupDeleted).
			Order("starttime").
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	recs := make([]model.Recording, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, recordingFromRow(row))
	}
	return recs, nil
}

func (s *GormStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := db.Close(); err != nil {
		telemetry.Logger.Error("Failed to close store", zap.Error(err))
		return err
	}
	return nil
}

// SeedRecording inserts a recording row. Intended for provisioning and tests;
// normal operation never creates recordings.
func (s *GormStore) SeedRecording(ctx context.Context, rec *model.Recording) error {
	row := recordedRow{
		ChanID:       rec.ChanID,
		StartTime:    rec.StartTime,
		Title:        rec.Title,
		Subtitle:     rec.Subtitle,
		Basename:     rec.Basename,
		StorageGroup: rec.StorageGroup,
		RecGroup:     rec.RecGroup,
		Cutlist:      boolToInt(rec.Cutlist),
		Transcoded:   boolToInt(rec.Transcoded),
		FileSize:     rec.FileSize,
		Bookmark:     rec.Bookmark,
	}
	return s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).Create(&row).Error
	})
}

// SeedJob inserts a job row. Intended for provisioning and tests.
func (s *GormStore) SeedJob(ctx context.Context, job *model.Job) error {
	row := jobRow{
		ID:        job.ID,
		ChanID:    job.ChanID,
		StartTime: job.StartTime,
		Status:    int(job.Status),
		Comment:   job.Comment,
	}
	return s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).Create(&row).Error
	})
}

// AddStorageDir maps a storage group name to a physical directory.
func (s *GormStore) AddStorageDir(ctx context.Context, group, dir string) error {
	row := storageGroupRow{GroupName: group, DirName: dir}
	return s.withRetry(func(db *gorm.DB) error {
		return db.WithContext(ctx).Create(&row).Error
	})
}

func recordingFromRow(row recordedRow) model.Recording {
	return model.Recording{
		ChanID:       row.ChanID,
		StartTime:    row.StartTime,
		Title:        row.Title,
		Subtitle:     row.Subtitle,
		Basename:     row.Basename,
		StorageGroup: row.StorageGroup,
		RecGroup:     row.RecGroup,
		Cutlist:      row.Cutlist != 0,
		Transcoded:   row.Transcoded != 0,
		FileSize:     row.FileSize,
		Bookmark:     row.Bookmark,
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
