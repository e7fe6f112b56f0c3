package models

import (
	"time"

	"github.com/boxdesk/boxdesk/internal/shared/constants"
)

// AcademyModel is the slice of the academy registry billing reads and the
// billing fields it caches there.
type AcademyModel struct {
	ID               uint   `gorm:"primarykey"`
	Name             string `gorm:"not null;size:150"`
	Email            string `gorm:"size:255"`
	CurrentPlanID    *uint
	BillingStatus    string     `gorm:"size:20"`
	BillingExpiresOn *time.Time `gorm:"type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (AcademyModel) TableName() string {
	return constants.TableAcademies
}

// MemberModel is the slice of the member registry billing reads and the
// billing fields it caches there.
type MemberModel struct {
	ID               uint   `gorm:"primarykey"`
	AcademyID        uint   `gorm:"not null;index:idx_member_academy"`
	Name             string `gorm:"not null;size:150"`
	Email            string `gorm:"size:255"`
	CurrentPlanID    *uint
	BillingStatus    string     `gorm:"size:20"`
	BillingExpiresOn *time.Time `gorm:"type:date"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName specifies the table name for GORM
func (MemberModel) TableName() string {
	return constants.TableMembers
}
