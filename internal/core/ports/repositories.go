package ports

import (
	"context"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
)

// FieldRepository persists saved fields.
type FieldRepository interface {
	Create(ctx context.Context, field *domain.Field) error
	GetByID(ctx context.Context, id string) (*domain.Field, error)
	List(ctx context.Context, offset, limit int) ([]domain.Field, int, error)
	Delete(ctx context.Context, id string) error
}
