package permissions

import (
	"strings"
	"testing"
)

func TestHas(t *testing.T) {
	p := PermConnect | PermChat
	if !p.Has(PermConnect) {
		t.Error("expected Has(PermConnect) to be true")
	}
	if !p.Has(PermChat) {
		t.Error("expected Has(PermChat) to be true")
	}
	if p.Has(PermManageChannel) {
		t.Error("expected Has(PermManageChannel) to be false")
	}
}

func TestHasMultiple(t *testing.T) {
	p := PermConnect | PermChat | PermManageMessages
	if !p.Has(PermConnect | PermChat) {
		t.Error("expected Has(Connect|Chat) to be true")
	}
	if p.Has(PermConnect | PermManageServer) {
		t.Error("expected Has(Connect|ManageServer) to be false when ManageServer is missing")
	}
}

func TestHasAny(t *testing.T) {
	p := PermConnect | PermChat
	if !p.HasAny(PermChat | PermManageServer) {
		t.Error("expected HasAny to pass with one matching bit")
	}
	if p.HasAny(PermVoice | PermVideo) {
		t.Error("expected HasAny to fail with no matching bits")
	}
}

func TestAddRemove(t *testing.T) {
	p := PermConnect
	p = p.Add(PermChat)
	if !p.Has(PermConnect | PermChat) {
		t.Error("expected Add to keep existing bits and set new ones")
	}
	p = p.Remove(PermConnect)
	if p.Has(PermConnect) {
		t.Error("expected Remove to clear the bit")
	}
	if !p.Has(PermChat) {
		t.Error("expected Remove to leave other bits alone")
	}
}

func TestCheck_NoneAlwaysPasses(t *testing.T) {
	masks := []Permission{0, PermConnect, PermAllBits, PermAdmin}
	for _, m := range masks {
		if !m.Check(PermNone, CheckAll) {
			t.Errorf("Check(NONE) should pass for mask %v", m)
		}
		if !m.Check(PermNone, CheckAny) {
			t.Errorf("Check(NONE, any) should pass for mask %v", m)
		}
	}
}

func TestCheck_AdminBypass(t *testing.T) {
	m := PermAdmin
	for bit := range permNames {
		if !m.Check(bit, CheckAll) {
			t.Errorf("ADMIN mask should satisfy %s", bit)
		}
	}
	if !m.Check(PermChat|PermVoice|PermManageServer, CheckAll) {
		t.Error("ADMIN mask should satisfy combined requirements")
	}
}

func TestCheck_Modes(t *testing.T) {
	m := PermConnect | PermChat

	tests := []struct {
		name     string
		required Permission
		mode     CheckMode
		want     bool
	}{
		{"any with one match", PermChat | PermVoice, CheckAny, true},
		{"any with no match", PermVoice | PermVideo, CheckAny, false},
		{"all with all present", PermConnect | PermChat, CheckAll, true},
		{"all with one missing", PermConnect | PermVoice, CheckAll, false},
		{"single bit present", PermChat, CheckAny, true},
		{"single bit missing", PermVoice, CheckAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Check(tt.required, tt.mode); got != tt.want {
				t.Errorf("Check(%v, %d) = %v, want %v", tt.required, tt.mode, got, tt.want)
			}
		})
	}
}

func TestCheck_EmptyMask(t *testing.T) {
	m := PermNone
	if m.Check(PermChat, CheckAny) {
		t.Error("empty mask should not satisfy CHAT")
	}
	if !m.Check(PermNone, CheckAll) {
		t.Error("empty mask should still satisfy NONE")
	}
}

func TestValid(t *testing.T) {
	if !Valid(PermAllBits) {
		t.Error("PermAllBits should be valid")
	}
	if !Valid(PermNone) {
		t.Error("NONE should be valid")
	}
	if Valid(1 << 0) {
		t.Error("bit 0 is unassigned and should be invalid")
	}
	if Valid(1 << 40) {
		t.Error("bits above the vocabulary should be invalid")
	}
	if Valid(-1) {
		t.Error("negative masks should be invalid")
	}
}

func TestAllBitsContainsEverything(t *testing.T) {
	for bit, name := range permNames {
		if !PermAllBits.Has(bit) {
			t.Errorf("PermAllBits should include %s", name)
		}
	}
	if !PermAllBits.Has(PermAllVoice) {
		t.Error("PermAllBits should include the voice set")
	}
}

func TestVoiceSet(t *testing.T) {
	if !PermAllVoice.Has(PermConnect | PermVoice | PermVideo) {
		t.Error("voice set should include Connect, Voice, Video")
	}
	if PermAllVoice.Has(PermChat) {
		t.Error("voice set should not include Chat")
	}
	if PermAllVoice.Has(PermAdmin) {
		t.Error("voice set should not include Admin")
	}
}

func TestString_None(t *testing.T) {
	if got := Permission(0).String(); got != "NONE" {
		t.Errorf("expected NONE, got %s", got)
	}
}

func TestString_Single(t *testing.T) {
	if got := PermChat.String(); got != "CHAT" {
		t.Errorf("expected CHAT, got %s", got)
	}
}

func TestString_Multiple(t *testing.T) {
	s := (PermConnect | PermChat).String()
	if !strings.Contains(s, "CONNECT") {
		t.Error("expected String to contain CONNECT")
	}
	if !strings.Contains(s, "CHAT") {
		t.Error("expected String to contain CHAT")
	}
}

func TestString_UnknownBits(t *testing.T) {
	if got := Permission(1 << 40).String(); got != "UNKNOWN" {
		t.Errorf("expected UNKNOWN, got %s", got)
	}
}
