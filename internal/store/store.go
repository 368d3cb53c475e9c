/*
Package store persists raw filings and their sentiment verdicts in a single
SQLite database. Both tables are keyed naturally (accession numbers are
globally unique per filing event), so re-inserting the same row is always a
no-op and re-runs never duplicate work.
*/
package store

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store wraps the SQLite database holding the filings archive and the
// sentiment ledger.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&Filing{}, &Verdict{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertFiling inserts a filing if its (ticker, form_type, accession) key is
// absent. A duplicate key is a silent no-op, never an error. The write is
// committed before this returns.
func (s *Store) UpsertFiling(f Filing) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&f).Error
}

// ForEachUnclassified invokes fn for every filing of the given form type
// that has no verdict in the ledger, in insertion order. The candidate set
// is snapshotted up front so verdicts written by fn do not disturb the scan.
// A non-nil error from fn stops the scan and is returned.
func (s *Store) ForEachUnclassified(formType string, fn func(Filing) error) error {
	var pending []Filing
	err := s.db.
		Where(`form_type = ? AND NOT EXISTS (
			SELECT 1 FROM form4_sentiment v
			WHERE v.ticker = filings.ticker AND v.accession = filings.accession
		)`, formType).
		Order("rowid").
		Find(&pending).Error
	if err != nil {
		return fmt.Errorf("failed to list unclassified filings: %w", err)
	}

	for _, f := range pending {
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

// HasVerdict reports whether any verdict exists for the accession, regardless
// of ticker. Accession numbers are unique per filing event, so a match means
// the filing has already been classified.
func (s *Store) HasVerdict(accession string) (bool, error) {
	var count int64
	err := s.db.Model(&Verdict{}).Where("accession = ?", accession).Count(&count).Error
	return count > 0, err
}

// InsertVerdict records a verdict. An existing (ticker, accession) row is
// left untouched: verdicts are written once and never refreshed.
func (s *Store) InsertVerdict(v Verdict) error {
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&v).Error
}

// GetFiling returns one stored filing of the given form type, or a not-found
// error if the archive holds none.
func (s *Store) GetFiling(formType string) (Filing, error) {
	var f Filing
	err := s.db.Where("form_type = ?", formType).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Filing{}, fmt.Errorf("no %s filing in store", formType)
	}
	return f, err
}

// CountFilings returns the number of archived filings.
func (s *Store) CountFilings() (int64, error) {
	var count int64
	err := s.db.Model(&Filing{}).Count(&count).Error
	return count, err
}

// CountVerdicts returns the number of ledger rows.
func (s *Store) CountVerdicts() (int64, error) {
	var count int64
	err := s.db.Model(&Verdict{}).Count(&count).Error
	return count, err
}
