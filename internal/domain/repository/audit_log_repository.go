package repository

import (
	"context"

	"clinic-booking-api/internal/domain/entity"
)

// AuditLogFilter narrows audit log listings. Zero values mean no constraint.
type AuditLogFilter struct {
	Action string
	Limit  int
	Offset int
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindAll(ctx context.Context, filter AuditLogFilter) ([]entity.AuditLog, int64, error)
	FindByID(ctx context.Context, id int64) (*entity.AuditLog, error)
}
