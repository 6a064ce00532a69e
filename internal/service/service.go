package service

import (
	"context"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/repository"
)

// Status exposes the persisted controller snapshot.
type Status interface {
	GetStatus(ctx context.Context) (models.StatusSnapshot, error)
	Update(ctx context.Context, s models.StatusSnapshot) error
}

// AuditLog exposes the append-only event trail with filtering access.
type AuditLog interface {
	Record(ctx context.Context, typ, description string, meta any) error
	List(ctx context.Context, f LogFilter) ([]models.AuditEvent, error)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time
	To   time.Time
	Type string
}

// Service aggregates all sub-services.
type Service struct {
	Status
	AuditLog
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository) *Service {
	return &Service{
		Status:   NewStatusService(repos.StatusRepo),
		AuditLog: NewAuditLogService(repos.AuditRepo),
	}
}
