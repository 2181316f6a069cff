package models

import (
	"time"

	"avrexpense/internal/uuid"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. Rows are never hard-deleted;
// history is preserved by flagging records inactive instead.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}

// ContainsID reports whether id is a member of the set.
func ContainsID(set []string, id string) bool {
	if id == "" {
		return false
	}
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// AddID returns set with id appended if it was not already present.
func AddID(set []string, id string) []string {
	if id == "" || ContainsID(set, id) {
		return set
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, id)
}

// RemoveID returns a copy of set without id.
func RemoveID(set []string, id string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
