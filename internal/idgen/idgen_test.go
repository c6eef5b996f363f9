package idgen

import (
	"net"
	"regexp"
	"testing"
	"time"
)

func TestPrefixFormat(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	prefix := Prefix(now)

	re := regexp.MustCompile(`^20250601-[0-9A-FX]{4}$`)
	if !re.MatchString(prefix) {
		t.Errorf("prefix %q does not match expected format", prefix)
	}
}

func TestNextEmptySet(t *testing.T) {
	got := Next("20250601-AB12", nil)
	want := "20250601-AB12-001"
	if got != want {
		t.Errorf("Next = %q, want %q", got, want)
	}
}

func TestNextCountsOnlyMatchingPrefix(t *testing.T) {
	existing := []string{
		"20250601-AB12-001",
		"20250601-AB12-002",
		"20250531-AB12-001", // different day
		"20250601-CD34-001", // different device
	}
	got := Next("20250601-AB12", existing)
	want := "20250601-AB12-003"
	if got != want {
		t.Errorf("Next = %q, want %q", got, want)
	}
	for _, id := range existing {
		if got == id {
			t.Errorf("Next returned an id already in the set: %q", got)
		}
	}
}

func TestNextZeroPadding(t *testing.T) {
	var existing []string
	for i := 0; i < 99; i++ {
		existing = append(existing, Next("20250601-AB12", existing))
	}
	if got := Next("20250601-AB12", existing); got != "20250601-AB12-100" {
		t.Errorf("Next = %q, want 20250601-AB12-100", got)
	}
}

// Consecutive calls without mutating the id set collide. That is the
// documented contract: the caller adds each generated id before asking
// for another.
func TestNextIsPure(t *testing.T) {
	existing := []string{"20250601-AB12-001"}
	a := Next("20250601-AB12", existing)
	b := Next("20250601-AB12", existing)
	if a != b {
		t.Errorf("Next is not pure: %q != %q", a, b)
	}
}

func TestHwSuffix(t *testing.T) {
	tests := []struct {
		name string
		addr net.HardwareAddr
		want string
		ok   bool
	}{
		{"empty", nil, "", false},
		{"all zero", net.HardwareAddr{0, 0, 0, 0, 0, 0}, "", false},
		{"normal", net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0xab, 0x12}, "AB12", true},
		{"short", net.HardwareAddr{0xab}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := hwSuffix(tt.addr)
			if ok != tt.ok || got != tt.want {
				t.Errorf("hwSuffix(%v) = %q, %v; want %q, %v", tt.addr, got, ok, tt.want, tt.ok)
			}
		})
	}
}
