package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TableName is the table holding usage records.
const TableName = "ai_usage_records"

// recordRow is the persisted form of Record.
type recordRow struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"size:128;index"`
	CourseID       string    `gorm:"size:128;not null;index"`
	BlockType      string    `gorm:"size:64;not null"`
	GenerationType string    `gorm:"size:16;not null"`
	PromptLength   int       `gorm:"not null"`
	ResponseLength int       `gorm:"not null"`
	TokensUsed     *int      `gorm:"column:tokens_used"`
	Cached         bool      `gorm:"not null;default:false"`
	Timestamp      time.Time `gorm:"column:recorded_at;not null;index"`
}

func (recordRow) TableName() string { return TableName }

func rowFromRecord(r Record) recordRow {
	return recordRow{
		ID:             r.ID.String(),
		UserID:         r.UserID,
		CourseID:       r.CourseID,
		BlockType:      r.BlockType,
		GenerationType: string(r.GenerationType),
		PromptLength:   r.PromptLength,
		ResponseLength: r.ResponseLength,
		TokensUsed:     r.TokensUsed,
		Cached:         r.Cached,
		Timestamp:      r.Timestamp,
	}
}

func (row recordRow) toRecord() Record {
	id, _ := uuid.Parse(row.ID)
	return Record{
		ID:             id,
		UserID:         row.UserID,
		CourseID:       row.CourseID,
		BlockType:      row.BlockType,
		GenerationType: GenerationType(row.GenerationType),
		PromptLength:   row.PromptLength,
		ResponseLength: row.ResponseLength,
		TokensUsed:     row.TokensUsed,
		Cached:         row.Cached,
		Timestamp:      row.Timestamp.UTC(),
	}
}

// OpenDB opens a gorm connection for the named driver.
// Supported drivers: sqlite, postgres.
func OpenDB(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s (supported: sqlite, postgres)", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("usage: failed to connect database: %w", err)
	}
	return db, nil
}

// GormLedger persists records through gorm.
type GormLedger struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormLedger creates a ledger on db and migrates its table.
func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("usage: failed to auto migrate: %w", err)
	}
	return &GormLedger{db: db, now: time.Now}, nil
}

// Record inserts rec after validation.
func (l *GormLedger) Record(ctx context.Context, rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	row := rowFromRecord(rec.withDefaults(l.now))

	if err := l.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("usage: failed to insert record: %w", err)
	}
	return nil
}

// Query loads the matching rows and aggregates them.
func (l *GormLedger) Query(ctx context.Context, filter Filter) (Stats, error) {
	q := l.db.WithContext(ctx).Model(&recordRow{})
	if filter.CourseID != "" {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if !filter.Start.IsZero() {
		q = q.Where("recorded_at >= ?", filter.Start.UTC())
	}
	if !filter.End.IsZero() {
		q = q.Where("recorded_at <= ?", filter.End.UTC())
	}

	var rows []recordRow
	if err := q.Order("recorded_at").Find(&rows).Error; err != nil {
		return Stats{}, fmt.Errorf("usage: failed to query records: %w", err)
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return Aggregate(records), nil
}

// Ping checks the underlying connection.
func (l *GormLedger) Ping(ctx context.Context) error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return fmt.Errorf("usage: failed to get sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (l *GormLedger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure GormLedger implements Ledger
var _ Ledger = (*GormLedger)(nil)
