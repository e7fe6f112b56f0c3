package db

import (
	"gorm.io/gorm"
)

// Paginate is a GORM scope applying LIMIT/OFFSET for 1-based pages.
// A non-positive pageSize disables pagination.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if pageSize <= 0 {
			return db
		}
		if page < 1 {
			page = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

// InScope filters rows of a subscriber-scoped table by kind and tenant.
//
//	tx.Model(&models.SubscriptionModel{}).Scopes(db.InScope("member", 7)).Find(&rows)
func InScope(kind string, tenantID uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("subscriber_kind = ? AND tenant_id = ?", kind, tenantID)
	}
}
