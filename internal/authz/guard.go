package authz

import "net/url"

// AuthState is the session store's view of the current request.
type AuthState int

const (
	// AuthUnknown means the session backend could not yet determine who is
	// calling. Protected content must not render and no redirect may fire.
	AuthUnknown AuthState = iota
	AuthAnonymous
	AuthAuthenticated
)

// SessionSnapshot is the immutable input the guard reads from the session
// layer. The guard never writes it back.
type SessionSnapshot struct {
	State     AuthState
	Principal Principal
}

// Outcome is the guard's terminal state for one request. Exactly one
// outcome is produced per evaluation.
type Outcome int

const (
	OutcomeLoading Outcome = iota
	OutcomeRedirect
	OutcomeDeniedPath
	OutcomeDeniedRole
	OutcomeDeniedPermission
	OutcomeAllowed
)

// Reason returns the human-readable denial category for the outcome.
func (o Outcome) Reason() string {
	switch o {
	case OutcomeLoading:
		return "session state not yet determined"
	case OutcomeRedirect:
		return "unauthenticated"
	case OutcomeDeniedPath:
		return "this page is not available for your role"
	case OutcomeDeniedRole:
		return "wrong role"
	case OutcomeDeniedPermission:
		return "missing permission"
	default:
		return ""
	}
}

// GuardOpts carry per-route requirements beyond the path map.
type GuardOpts struct {
	// AllowedRoles, when non-empty, must be satisfied hierarchically (or
	// exactly, when StrictRoles is set).
	AllowedRoles []Role
	StrictRoles  bool

	// RequiredFlag, when non-empty, must resolve true through the loaded
	// scope settings.
	RequiredFlag Flag
}

// SettingsLookup returns the already-loaded settings for the effective
// principal's scope, or nil when nothing is loaded. The guard never waits
// on it.
type SettingsLookup func(e EffectivePrincipal) *ScopeSettings

// Decide runs the guard state machine for one request. Checks run in fixed
// order and the first failing one is terminal: loading, authentication,
// path accessibility, role requirement, flag requirement. The returned
// effective principal is meaningful only for OutcomeAllowed and the denied
// outcomes (for audit); it is the zero value while loading or redirecting.
func Decide(snap SessionSnapshot, path string, query url.Values, paths *PathMap, opts GuardOpts, settings SettingsLookup) (Outcome, EffectivePrincipal) {
	switch snap.State {
	case AuthUnknown:
		return OutcomeLoading, EffectivePrincipal{}
	case AuthAnonymous:
		return OutcomeRedirect, EffectivePrincipal{}
	}

	effective := Resolve(snap.Principal, query)

	if paths != nil && !paths.IsAccessible(path, effective.Role) {
		return OutcomeDeniedPath, effective
	}

	if len(opts.AllowedRoles) > 0 {
		ok := false
		if opts.StrictRoles {
			ok = SatisfiesRolesStrict(effective, opts.AllowedRoles...)
		} else {
			ok = SatisfiesRoles(effective, opts.AllowedRoles...)
		}
		if !ok {
			return OutcomeDeniedRole, effective
		}
	}

	if opts.RequiredFlag != "" {
		var loaded *ScopeSettings
		if settings != nil {
			loaded = settings(effective)
		}
		if !HasPermission(effective, opts.RequiredFlag, loaded) {
			return OutcomeDeniedPermission, effective
		}
	}

	return OutcomeAllowed, effective
}
