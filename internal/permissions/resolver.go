package permissions

import (
	"sort"

	"github.com/zachbakerdev/open-natter-server/internal/models"
)

// Resolution layers, earliest to latest:
//
//  1. the channel's own default permissions mask
//  2. OR of the default masks of every role the member holds (additive; a
//     role never removes what another role grants)
//  3. each role's channel override, applied in ascending role id order
//     (snowflake ids are creation-ordered), last-applied-wins per bit
//  4. the member's own channel override, applied last
//
// Server owners never reach this path; the checker short-circuits them to
// PermAllBits. ADMIN is carried as an ordinary bit so a later layer can
// still deny it; its bypass happens in Check, not here.

// ComputeBasePermissions combines the channel baseline with the member's
// role defaults.
func ComputeBasePermissions(channelDefault Permission, memberRoles []models.Role) Permission {
	perms := channelDefault
	for _, role := range memberRoles {
		perms = perms.Add(Permission(role.DefaultPermissions))
	}
	return perms
}

// ApplyRoleOverrides folds the member's role channel overrides into base.
// Overrides are applied one at a time in ascending role id order, so when
// two roles disagree on a bit the later-created role wins.
func ApplyRoleOverrides(base Permission, overrides []models.ChannelRoleOverride) Permission {
	if len(overrides) == 0 {
		return base
	}

	sorted := make([]models.ChannelRoleOverride, len(overrides))
	copy(sorted, overrides)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RoleID < sorted[j].RoleID })

	perms := base
	for _, o := range sorted {
		perms = Override{Allow: Permission(o.Allow), Deny: Permission(o.Deny)}.Apply(perms)
	}
	return perms
}

// ApplyUserOverride applies the member's personal channel override, if any.
// It runs after every role-derived layer and wins all conflicts.
func ApplyUserOverride(base Permission, override *models.UserChannelOverride) Permission {
	if override == nil {
		return base
	}
	return Override{Allow: Permission(override.Allow), Deny: Permission(override.Deny)}.Apply(base)
}

// Resolve computes the effective mask for a member in a channel from
// already-loaded state. roleOverrides must contain only overrides for roles
// the member actually holds on this channel.
func Resolve(
	channelDefault Permission,
	memberRoles []models.Role,
	roleOverrides []models.ChannelRoleOverride,
	userOverride *models.UserChannelOverride,
) Permission {
	perms := ComputeBasePermissions(channelDefault, memberRoles)
	perms = ApplyRoleOverrides(perms, roleOverrides)
	return ApplyUserOverride(perms, userOverride)
}
