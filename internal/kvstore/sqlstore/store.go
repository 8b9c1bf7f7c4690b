// Package sqlstore implements kvstore.Client on top of a gorm database.
//
// Every logical table lives in the shared kv_items table; items of one
// partition are read back in sort-key order. BatchWrite runs each call in a
// single transaction, which is stronger than the contract requires but never
// spans more than one call.
package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/linebook/internal/entities"
	"github.com/mrlokans/linebook/internal/kvstore"
)

// Store is a kvstore.Client backed by the kv_items table.
type Store struct {
	db *gorm.DB
}

// New creates a store over db. The kv_items table must already be migrated
// (database.NewDatabase does this).
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ kvstore.Client = (*Store)(nil)

var keyColumns = []clause.Column{{Name: "table_name"}, {Name: "partition_key"}, {Name: "sort_key"}}

func whereKey(tx *gorm.DB, table string, key kvstore.Key) *gorm.DB {
	return tx.Where("table_name = ? AND partition_key = ? AND sort_key = ?", table, key.Partition, key.Sort)
}

func (s *Store) Get(ctx context.Context, table string, key kvstore.Key) (kvstore.Item, error) {
	var row entities.KVItem
	err := whereKey(s.db.WithContext(ctx), table, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return kvstore.Item{}, kvstore.ErrNotFound
	}
	if err != nil {
		return kvstore.Item{}, fmt.Errorf("get %s item: %w", table, err)
	}
	return toItem(row), nil
}

func (s *Store) Put(ctx context.Context, table string, item kvstore.Item) error {
	if err := put(s.db.WithContext(ctx), table, item); err != nil {
		return fmt.Errorf("put %s item: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, key kvstore.Key) error {
	if err := whereKey(s.db.WithContext(ctx), table, key).Delete(&entities.KVItem{}).Error; err != nil {
		return fmt.Errorf("delete %s item: %w", table, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, table, partition string, opts kvstore.QueryOptions) ([]kvstore.Item, error) {
	order := "sort_key ASC"
	if opts.Descending {
		order = "sort_key DESC"
	}

	query := s.db.WithContext(ctx).
		Where("table_name = ? AND partition_key = ?", table, partition).
		Order(order)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var rows []entities.KVItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s partition %q: %w", table, partition, err)
	}

	items := make([]kvstore.Item, 0, len(rows))
	for _, row := range rows {
		item := toItem(row)
		projected, err := kvstore.Project(item.Attributes, opts.Projection)
		if err != nil {
			return nil, err
		}
		item.Attributes = projected
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) BatchWrite(ctx context.Context, table string, reqs []kvstore.WriteRequest) error {
	if err := kvstore.Validate(reqs); err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range reqs {
			if r.Put != nil {
				if err := put(tx, table, *r.Put); err != nil {
					return fmt.Errorf("batch put %s item: %w", table, err)
				}
				continue
			}
			if err := whereKey(tx, table, *r.Delete).Delete(&entities.KVItem{}).Error; err != nil {
				return fmt.Errorf("batch delete %s item: %w", table, err)
			}
		}
		return nil
	})
}

func (s *Store) Increment(ctx context.Context, table string, key kvstore.Key, field string, delta int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row entities.KVItem
		err := whereKey(tx.Clauses(clause.Locking{Strength: "UPDATE"}), table, key).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kvstore.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("increment %s item: %w", table, err)
		}

		updated, err := kvstore.AddToField(json.RawMessage(row.Attributes), field, delta)
		if err != nil {
			return err
		}

		return whereKey(tx.Model(&entities.KVItem{}), table, key).
			Updates(map[string]any{
				"attributes": datatypes.JSON(updated),
				"updated_at": time.Now(),
			}).Error
	})
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close is a no-op: the connection belongs to the database.Database that
// created the gorm handle.
func (s *Store) Close() error {
	return nil
}

func put(tx *gorm.DB, table string, item kvstore.Item) error {
	row := entities.KVItem{
		Table:      table,
		Partition:  item.Key.Partition,
		Sort:       item.Key.Sort,
		Attributes: datatypes.JSON(item.Attributes),
		UpdatedAt:  time.Now(),
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   keyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"attributes", "updated_at"}),
	}).Create(&row).Error
}

func toItem(row entities.KVItem) kvstore.Item {
	return kvstore.Item{
		Key:        kvstore.Key{Partition: row.Partition, Sort: row.Sort},
		Attributes: json.RawMessage(row.Attributes),
	}
}
