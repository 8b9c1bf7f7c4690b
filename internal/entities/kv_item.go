package entities

import (
	"time"

	"gorm.io/datatypes"
)

// KVItem is one row of the relational key-value backend. Every logical
// table shares the physical kv_items table, keyed by (TableName, Partition, Sort).
type KVItem struct {
	Table      string         `gorm:"column:table_name;primaryKey;size:64"`
	Partition  string         `gorm:"column:partition_key;primaryKey;size:255"`
	Sort       string         `gorm:"column:sort_key;primaryKey;size:512"`
	Attributes datatypes.JSON `gorm:"column:attributes"`
	UpdatedAt  time.Time
}

func (KVItem) TableName() string {
	return "kv_items"
}
