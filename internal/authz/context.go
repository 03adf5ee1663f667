package authz

import "context"

type snapshotContextKey struct{}

type effectiveContextKey struct{}

// ContextWithSnapshot stores the session snapshot for downstream guards.
func ContextWithSnapshot(ctx context.Context, snap SessionSnapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// SnapshotFromContext extracts the session snapshot. A missing snapshot
// reads as AuthUnknown, which the guard treats as "do not render".
func SnapshotFromContext(ctx context.Context) SessionSnapshot {
	snap, _ := ctx.Value(snapshotContextKey{}).(SessionSnapshot)
	return snap
}

// ContextWithEffective stores the effective principal after a guard allows
// the request.
func ContextWithEffective(ctx context.Context, e EffectivePrincipal) context.Context {
	return context.WithValue(ctx, effectiveContextKey{}, e)
}

// EffectiveFromContext extracts the effective principal placed by the
// guard. ok is false on unguarded routes.
func EffectiveFromContext(ctx context.Context) (EffectivePrincipal, bool) {
	e, ok := ctx.Value(effectiveContextKey{}).(EffectivePrincipal)
	return e, ok
}
