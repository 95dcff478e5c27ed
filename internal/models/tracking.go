package models

import (
	"reflect"
	"time"
)

// ChangeTrackable is implemented by rows that carry creation and update timestamps.
// The persistence layer stamps them explicitly before writing.
type ChangeTrackable interface {
	SetCreateDate(time.Time)
	SetUpdateDate(time.Time)
}

// Timestamps holds the change tracking columns shared by most tables.
type Timestamps struct {
	CreateDate time.Time `gorm:"not null" json:"createDate"`
	UpdateDate time.Time `gorm:"not null" json:"updateDate"`
}

// SetCreateDate sets the creation timestamp
func (t *Timestamps) SetCreateDate(at time.Time) {
	t.CreateDate = at
}

// SetUpdateDate sets the update timestamp
func (t *Timestamps) SetUpdateDate(at time.Time) {
	t.UpdateDate = at
}

// Stamp sets the update timestamp on every row, and the creation timestamp
// as well when the rows are being inserted. Nil rows, including typed nil
// pointers, are skipped.
func Stamp(now time.Time, inserted bool, rows ...ChangeTrackable) {
	now = now.UTC()
	for _, row := range rows {
		if isNilRow(row) {
			continue
		}
		if inserted {
			row.SetCreateDate(now)
		}
		row.SetUpdateDate(now)
	}
}

func isNilRow(row ChangeTrackable) bool {
	if row == nil {
		return true
	}
	v := reflect.ValueOf(row)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
