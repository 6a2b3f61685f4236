package service

import (
	"context"

	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditService writes the audit trail. Failures are logged and returned;
// callers decide whether the trail is allowed to fail their operation.
type AuditService interface {
	LogCreate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, newValue any) error
	LogUpdate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue any) error
	LogDelete(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue any) error
	LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.Metadata) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogCreate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, newValue any) error {
	return s.write(ctx, userID, action, entityID, entity.Metadata{
		"entity":    entityName,
		"new_value": newValue,
	})
}

func (s *auditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue any) error {
	return s.write(ctx, userID, action, entityID, entity.Metadata{
		"entity":    entityName,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

func (s *auditService) LogDelete(ctx context.Context, userID *uuid.UUID, action, entityName, entityID string, oldValue any) error {
	return s.write(ctx, userID, action, entityID, entity.Metadata{
		"entity":    entityName,
		"old_value": oldValue,
	})
}

// LogEvent records an action that is not tied to a single resource, such as a login.
func (s *auditService) LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.Metadata) error {
	return s.write(ctx, userID, action, "", metadata)
}

func (s *auditService) write(ctx context.Context, userID *uuid.UUID, action, resourceID string, metadata entity.Metadata) error {
	auditLog := &entity.AuditLog{
		UserID:     userID,
		Action:     action,
		ResourceID: resourceID,
		Metadata:   metadata,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log %s: %+v", action, err)
		return err
	}
	return nil
}
