package settings

import (
	"context"

	"github.com/ZubairAhmed90/multipos-sub002/internal/authz"
)

// Repository loads and stores scope feature flags.
type Repository interface {
	GetFlags(ctx context.Context, kind authz.ScopeKind, scopeID int64) (map[authz.Flag]bool, error)
	SetFlag(ctx context.Context, kind authz.ScopeKind, scopeID int64, name authz.Flag, enabled bool) error
}
