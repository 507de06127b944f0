package permissions

import "strings"

// Permission is a bitfield representing a set of capabilities. Bit positions
// are part of the storage format and must never be reassigned; retired bits
// stay reserved.
type Permission int64

const (
	PermNone Permission = 0

	// Management
	PermAdmin Permission = 1 << 1 // satisfies every capability check

	// Channel
	PermConnect       Permission = 1 << 2
	PermVoice         Permission = 1 << 3
	PermVideo         Permission = 1 << 4
	PermChat          Permission = 1 << 5
	PermManageChannel Permission = 1 << 6

	// Server
	PermManageServer    Permission = 1 << 7
	PermViewAuditLog    Permission = 1 << 8
	PermCreateInvite    Permission = 1 << 9
	PermChangeNickname  Permission = 1 << 10
	PermManageNicknames Permission = 1 << 11
	PermKickMember      Permission = 1 << 12
	PermBanMember       Permission = 1 << 13
	PermAddFiles        Permission = 1 << 14
	PermManageMessages  Permission = 1 << 15
	PermMuteMembers     Permission = 1 << 16
	PermDeafenMembers   Permission = 1 << 17
	PermMoveMembers     Permission = 1 << 18

	// Convenience sets
	PermAllVoice = PermConnect | PermVoice | PermVideo | PermMuteMembers | PermDeafenMembers | PermMoveMembers

	// PermAllBits is every defined bit, including ADMIN. It is the mask the
	// resolver returns for server owners.
	PermAllBits = PermAdmin | PermConnect | PermVoice | PermVideo | PermChat | PermManageChannel |
		PermManageServer | PermViewAuditLog | PermCreateInvite | PermChangeNickname |
		PermManageNicknames | PermKickMember | PermBanMember | PermAddFiles |
		PermManageMessages | PermMuteMembers | PermDeafenMembers | PermMoveMembers
)

// CheckMode selects how Check combines multiple required bits.
type CheckMode int

const (
	// CheckAny passes when at least one required bit is present.
	CheckAny CheckMode = iota
	// CheckAll passes only when every required bit is present.
	CheckAll
)

// Has returns true if p contains all bits in perm. It is a raw bit test with
// no ADMIN special case; use Check for authorization decisions.
func (p Permission) Has(perm Permission) bool { return p&perm == perm }

// HasAny returns true if p contains at least one bit of perm.
func (p Permission) HasAny(perm Permission) bool { return p&perm != 0 }

// Add returns p with the bits from perm set.
func (p Permission) Add(perm Permission) Permission { return p | perm }

// Remove returns p with the bits from perm cleared.
func (p Permission) Remove(perm Permission) Permission { return p &^ perm }

// Check reports whether mask p satisfies the required capabilities.
// PermNone is always satisfied, and a mask carrying PermAdmin satisfies
// everything. Otherwise the required bits are combined per mode.
func (p Permission) Check(required Permission, mode CheckMode) bool {
	if required == PermNone {
		return true
	}
	if p.Has(PermAdmin) {
		return true
	}
	switch mode {
	case CheckAll:
		return p.Has(required)
	default:
		return p.HasAny(required)
	}
}

// Valid reports whether mask uses only defined permission bits. Masks are
// validated at write boundaries so resolution never sees an unknown bit.
func Valid(mask Permission) bool {
	return mask >= 0 && mask&^PermAllBits == 0
}

// DefaultChannelPerms is the baseline mask given to newly created channels.
var DefaultChannelPerms = PermConnect | PermChat | PermCreateInvite | PermChangeNickname | PermAddFiles

// permNames maps individual permission bits to their string names.
var permNames = map[Permission]string{
	PermAdmin:           "ADMIN",
	PermConnect:         "CONNECT",
	PermVoice:           "VOICE",
	PermVideo:           "VIDEO",
	PermChat:            "CHAT",
	PermManageChannel:   "MANAGE_CHANNEL",
	PermManageServer:    "MANAGE_SERVER",
	PermViewAuditLog:    "VIEW_AUDIT_LOG",
	PermCreateInvite:    "CREATE_INVITE",
	PermChangeNickname:  "CHANGE_NICKNAME",
	PermManageNicknames: "MANAGE_NICKNAMES",
	PermKickMember:      "KICK_MEMBER",
	PermBanMember:       "BAN_MEMBER",
	PermAddFiles:        "ADD_FILES",
	PermManageMessages:  "MANAGE_MESSAGES",
	PermMuteMembers:     "MUTE_MEMBERS",
	PermDeafenMembers:   "DEAFEN_MEMBERS",
	PermMoveMembers:     "MOVE_MEMBERS",
}

// String returns a human-readable representation of the permission set,
// listing all set permission names separated by " | ".
func (p Permission) String() string {
	if p == 0 {
		return "NONE"
	}

	var names []string
	for shift := 0; shift < 63; shift++ {
		bit := Permission(1) << shift
		if name, ok := permNames[bit]; ok && p.Has(bit) {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, " | ")
}
