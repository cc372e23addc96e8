package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateNickname(t *testing.T) {
	for i := 0; i < 50; i++ {
		nick := GenerateNickname()
		parts := strings.SplitN(nick, " ", 2)
		if len(parts) != 2 {
			t.Fatalf("nickname %q is not an adjective + character pair", nick)
		}
	}
}

func TestNormalizeNickname(t *testing.T) {
	if got := NormalizeNickname("  수줍은 콘  "); got != "수줍은 콘" {
		t.Errorf("NormalizeNickname kept whitespace: %q", got)
	}
	if got := NormalizeNickname("   "); got == "" {
		t.Error("blank nickname should fall back to a generated one")
	}
}

func TestNewDeviceUID(t *testing.T) {
	pattern := regexp.MustCompile(`^device_[0-9]+_[a-z0-9]+$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		uid := NewDeviceUID()
		if !pattern.MatchString(uid) {
			t.Fatalf("uid %q does not match device_<millis>_<rand>", uid)
		}
		if seen[uid] {
			t.Fatalf("duplicate uid %q", uid)
		}
		seen[uid] = true
	}
}
