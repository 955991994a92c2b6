package services

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"spendlog/internal/logger"
	"spendlog/internal/models"
	"spendlog/internal/store"
)

// Audit actions.
const (
	ActionRegister      = "REGISTER"
	ActionDeleteAccount = "DELETE_ACCOUNT"
	ActionUpdateBudget  = "UPDATE_MONTHLY_BUDGET"
	ActionCreateExpense = "CREATE_EXPENSE"
	ActionUpdateExpense = "UPDATE_EXPENSE"
	ActionDeleteExpense = "DELETE_EXPENSE"
)

type auditService struct {
	logs *store.Store[models.AuditLog]
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{logs: store.New[models.AuditLog](db)}
}

// Log records an audit event. The write outlives request cancellation, and
// failures are logged rather than returned so the audited operation is never
// rolled back or reported as failed because of its audit trail.
func (s *auditService) Log(ctx context.Context, userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	log := logger.Named("audit").With("user_id", userID, "action", action)

	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
	}
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			log.Warnw("audit changes not serializable", "error", err)
			data = []byte("{}")
		}
		entry.Changes = string(data)
	}

	if err := s.logs.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Errorw("failed to create audit log entry",
			"error", err,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}
