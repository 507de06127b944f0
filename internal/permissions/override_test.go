package permissions

import (
	"errors"
	"testing"
)

func TestOverrideValidate_Disjoint(t *testing.T) {
	o := Override{Allow: PermChat, Deny: PermVoice}
	if err := o.Validate(); err != nil {
		t.Errorf("disjoint override should validate, got %v", err)
	}
}

func TestOverrideValidate_Conflict(t *testing.T) {
	o := Override{Allow: PermChat | PermConnect, Deny: PermChat}
	err := o.Validate()
	if !errors.Is(err, ErrConflictingOverride) {
		t.Errorf("expected ErrConflictingOverride, got %v", err)
	}
}

func TestOverrideValidate_UnknownBit(t *testing.T) {
	o := Override{Allow: 1 << 40}
	if !errors.Is(o.Validate(), ErrUnknownPermission) {
		t.Error("expected ErrUnknownPermission for allow mask outside the vocabulary")
	}
	o = Override{Deny: 1 << 0}
	if !errors.Is(o.Validate(), ErrUnknownPermission) {
		t.Error("expected ErrUnknownPermission for unassigned bit 0")
	}
}

func TestOverrideValidate_Empty(t *testing.T) {
	if err := (Override{}).Validate(); err != nil {
		t.Errorf("empty override should validate, got %v", err)
	}
}

func TestOverrideApply(t *testing.T) {
	base := PermConnect | PermChat | PermVoice
	o := Override{Allow: PermManageMessages, Deny: PermVoice}

	got := o.Apply(base)
	if got.Has(PermVoice) {
		t.Error("denied bit should be cleared")
	}
	if !got.Has(PermManageMessages) {
		t.Error("allowed bit should be set")
	}
	if !got.Has(PermConnect | PermChat) {
		t.Error("unopinionated bits should be inherited")
	}
}

func TestOverrideApply_Idempotent(t *testing.T) {
	base := PermConnect | PermChat | PermVoice
	o := Override{Allow: PermManageMessages, Deny: PermVoice}

	once := o.Apply(base)
	twice := o.Apply(once)
	if once != twice {
		t.Errorf("applying the same override twice changed the mask: %v != %v", once, twice)
	}
}

func TestOverrideApply_DenyAdmin(t *testing.T) {
	base := PermAdmin | PermChat
	o := Override{Deny: PermAdmin}

	got := o.Apply(base)
	if got.Has(PermAdmin) {
		t.Error("an explicit deny must be able to remove ADMIN")
	}
	if !got.Has(PermChat) {
		t.Error("other bits should survive an ADMIN deny")
	}
}

func TestOverrideIsZero(t *testing.T) {
	if !(Override{}).IsZero() {
		t.Error("empty override should be zero")
	}
	if (Override{Allow: PermChat}).IsZero() {
		t.Error("override with an allow bit is not zero")
	}
	if (Override{Deny: PermChat}).IsZero() {
		t.Error("override with a deny bit is not zero")
	}
}
