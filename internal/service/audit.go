package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/models"
	"github.com/rhony-martinez/proyecto-ac/internal/repository"
)

type AuditLogService struct {
	auditRepo repository.AuditRepo
}

func NewAuditLogService(auditRepo repository.AuditRepo) *AuditLogService {
	return &AuditLogService{auditRepo: auditRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errEmptyEventType   = errors.New("event type must not be empty")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	eventType := normalizeEventType(f.Type)
	return from, to, eventType, nil
}

// Record appends one audit event. The type is normalized; the repository
// stamps id and time.
func (s *AuditLogService) Record(ctx context.Context, typ, description string, meta any) error {
	typ = normalizeEventType(typ)
	if typ == "" {
		return errEmptyEventType
	}
	return s.auditRepo.Append(ctx, models.AuditEvent{
		Type:        typ,
		Description: description,
		Metadata:    meta,
	})
}

func (s *AuditLogService) List(ctx context.Context, f LogFilter) ([]models.AuditEvent, error) {
	from, to, typ, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.auditRepo.List(ctx, from, to, typ)
}
