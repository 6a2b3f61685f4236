package dto

import (
	"time"

	"clinic-booking-api/internal/domain/entity"
)

type AuditLogQuery struct {
	Action string `validate:"omitempty,max=100"`
	Limit  int    `validate:"gte=0,lte=200"`
	Offset int    `validate:"gte=0"`
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64           `json:"id"`
	User       *UserResponse   `json:"user,omitempty"`
	Action     string          `json:"action"`
	ResourceID string          `json:"resource_id,omitempty"`
	Metadata   entity.Metadata `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int64              `json:"total"`
}
