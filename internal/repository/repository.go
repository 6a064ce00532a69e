package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rhony-martinez/proyecto-ac/internal/models"
)

type StatusRepo interface {
	Save(ctx context.Context, s models.StatusSnapshot) error
	Load(ctx context.Context) (models.StatusSnapshot, error)
}

type AuditRepo interface {
	Append(ctx context.Context, e models.AuditEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AuditEvent, error)
}

type Repository struct {
	StatusRepo StatusRepo
	AuditRepo  AuditRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StatusRepo: NewStatusSQLite(db),
		AuditRepo:  NewAuditSQLite(db),
	}
}
