package subscriber

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"exchange_go/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// QuoteRecord is one received quote as stored in the local journal.
// Quote history is client-held by design; the server keeps none.
type QuoteRecord struct {
	ID         uint   `gorm:"primaryKey"`
	BestBid    float64
	BestAsk    float64
	OriginTime string
	ObservedAt string
	ReceivedAt time.Time `gorm:"index"`
	LatencyMS  int64
}

// Journal persists every quote a subscriber receives to a local SQLite
// file, with the propagation latency measured at receipt.
type Journal struct {
	db *gorm.DB
}

// OpenJournal opens (or creates) the journal database at path.
func OpenJournal(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.AutoMigrate(&QuoteRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one received quote.
func (j *Journal) Record(quote domain.Quote, receivedAt time.Time, latency time.Duration) error {
	rec := QuoteRecord{
		BestBid:    quote.BestBid,
		BestAsk:    quote.BestAsk,
		OriginTime: quote.OriginTime,
		ObservedAt: quote.ObservedAt,
		ReceivedAt: receivedAt,
		LatencyMS:  latency.Milliseconds(),
	}
	return j.db.Create(&rec).Error
}

// Recent returns the most recently received quotes, newest first.
func (j *Journal) Recent(limit int) ([]QuoteRecord, error) {
	var records []QuoteRecord
	err := j.db.Order("received_at desc").Limit(limit).Find(&records).Error
	return records, err
}

// Count returns the total number of journaled quotes.
func (j *Journal) Count() (int64, error) {
	var count int64
	err := j.db.Model(&QuoteRecord{}).Count(&count).Error
	return count, err
}

// Close releases the underlying database handle.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
