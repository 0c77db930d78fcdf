package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate takes row locks so concurrent writers on the same slot
// serialize. SQLite (tests) has no FOR UPDATE; its single-writer
// transactions give the same guarantee.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
