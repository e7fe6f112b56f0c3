package migration

import (
	"github.com/boxdesk/boxdesk/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every table the billing engine reads or writes.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.PaymentMethodModel{},
		&models.SubscriptionModel{},
		&models.InstallmentModel{},
		&models.SubscriptionHistoryModel{},
		&models.AcademyModel{},
		&models.MemberModel{},
	}
}
