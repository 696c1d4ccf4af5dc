package ports

import (
	"context"

	"github.com/bnema/tgsession/internal/domain"
)

type ProfileRepository interface {
	GetByName(ctx context.Context, name string) (domain.HostProfile, error)
	List(ctx context.Context) ([]domain.HostProfile, error)
	Save(ctx context.Context, profile domain.HostProfile) error
}
