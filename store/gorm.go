package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// documentRow is the relational shape of a document: path-keyed rows with
// the field data in a JSON column. Queries filter on the collection column
// and evaluate field predicates in Go, so Postgres (production) and SQLite
// (tests) behave identically.
type documentRow struct {
	Path       string `gorm:"primaryKey"`
	Collection string `gorm:"index;not null"`
	Data       datatypes.JSON
	UpdatedAt  time.Time
}

func (documentRow) TableName() string { return "documents" }

// AutoMigrate creates the documents table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&documentRow{})
}

// GormStore is the durable Store, backed by a GORM database. Batch
// atomicity comes from a single transaction per BatchWrite.
type GormStore struct {
	db       *gorm.DB
	listener Listener
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OnCommit registers the listener invoked after each committed batch.
// Must be called before the store is used.
func (s *GormStore) OnCommit(l Listener) {
	s.listener = l
}

func (s *GormStore) Get(ctx context.Context, path string) (Document, error) {
	if err := validateDocPath(path); err != nil {
		return Document{}, err
	}
	var row documentRow
	err := s.db.WithContext(ctx).Where("path = ?", path).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, err
	}
	return rowToDocument(row)
}

func (s *GormStore) Documents(ctx context.Context, collection string, opts ...QueryOption) ([]Document, error) {
	q := buildQuery(opts)

	var rows []documentRow
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, err
	}

	var docs []Document
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		if q.matches(doc.Data) {
			docs = append(docs, doc)
		}
	}
	q.sortDocs(docs)
	return docs, nil
}

func (s *GormStore) BatchWrite(ctx context.Context, writes []Write) error {
	if err := validateWrites(writes); err != nil {
		return err
	}

	var changes []Change
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			var existing documentRow
			err := tx.Where("path = ?", w.Path).First(&existing).Error
			existed := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			var before map[string]any
			if existed {
				if before, err = decodeData(existing.Data); err != nil {
					return err
				}
			}

			if w.Delete {
				if !existed {
					continue
				}
				if err := tx.Where("path = ?", w.Path).Delete(&documentRow{}).Error; err != nil {
					return err
				}
				changes = append(changes, Change{Kind: ChangeDeleted, Path: w.Path, Before: before})
				continue
			}

			after := w.Data
			if w.Merge && existed {
				merged := cloneData(before)
				for k, v := range w.Data {
					merged[k] = v
				}
				after = merged
			}
			raw, err := json.Marshal(after)
			if err != nil {
				return fmt.Errorf("encode %q: %w", w.Path, err)
			}

			if existed {
				updates := map[string]any{"data": datatypes.JSON(raw), "updated_at": time.Now()}
				if err := tx.Model(&documentRow{}).Where("path = ?", w.Path).Updates(updates).Error; err != nil {
					return err
				}
			} else {
				row := documentRow{Path: w.Path, Collection: collectionOf(w.Path), Data: datatypes.JSON(raw)}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}

			// Snapshots go through JSON so listeners see the same value
			// types a later read would.
			normalized, err := decodeData(raw)
			if err != nil {
				return err
			}
			kind := ChangeCreated
			if existed {
				kind = ChangeUpdated
			}
			changes = append(changes, Change{Kind: kind, Path: w.Path, Before: before, After: normalized})
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.listener != nil && len(changes) > 0 {
		s.listener(ctx, changes)
	}
	return nil
}

func rowToDocument(row documentRow) (Document, error) {
	data, err := decodeData(row.Data)
	if err != nil {
		return Document{}, fmt.Errorf("decode %q: %w", row.Path, err)
	}
	return Document{Path: row.Path, Data: data}, nil
}

func decodeData(raw []byte) (map[string]any, error) {
	var data map[string]any
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
