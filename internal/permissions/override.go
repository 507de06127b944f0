package permissions

import "errors"

// Overrides are grant/deny deltas layered over a base mask. Each bit is in
// one of three states: granted (set in Allow), denied (set in Deny), or
// inherited (set in neither).

var (
	// ErrConflictingOverride is returned when an override grants and denies
	// the same bit. The write must be rejected, never silently resolved.
	ErrConflictingOverride = errors.New("override allows and denies the same permission")

	// ErrUnknownPermission is returned when a mask carries a bit outside the
	// defined vocabulary.
	ErrUnknownPermission = errors.New("permission outside the defined set")
)

// Override is an allow/deny delta applied to a base permission mask.
type Override struct {
	Allow Permission
	Deny  Permission
}

// Validate checks the override invariants: allow and deny must be disjoint,
// and both masks must stay within the defined vocabulary.
func (o Override) Validate() error {
	if !Valid(o.Allow) || !Valid(o.Deny) {
		return ErrUnknownPermission
	}
	if o.Allow&o.Deny != 0 {
		return ErrConflictingOverride
	}
	return nil
}

// Apply layers the override onto base: denied bits are cleared first, then
// allowed bits are set. Applying the same override twice yields the same
// result as applying it once.
func (o Override) Apply(base Permission) Permission {
	return base.Remove(o.Deny).Add(o.Allow)
}

// IsZero reports whether the override has no opinion on any bit.
func (o Override) IsZero() bool {
	return o.Allow == 0 && o.Deny == 0
}
