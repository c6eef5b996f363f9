// Package idgen derives per-day, per-device event identifiers.
//
// An id has the form {YYYYMMDD}-{MAC4}-{NNN}: the current date, the last
// four hex characters of a stable hardware address, and a running counter
// scoped to that prefix. The counter is computed from the caller-supplied
// id set, so generation is a pure function over supplied state.
package idgen

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"
)

// FallbackSuffix is used when no usable hardware address is found.
const FallbackSuffix = "XXXX"

// Prefix returns the date/device prefix for ids generated at the given
// time, e.g. "20250601-AB12".
func Prefix(now time.Time) string {
	return now.Format("20060102") + "-" + deviceSuffix()
}

// deviceSuffix returns the last 4 hex characters of the first
// non-loopback, non-zero hardware address, uppercased.
func deviceSuffix() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return FallbackSuffix
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if suffix, ok := hwSuffix(iface.HardwareAddr); ok {
			return suffix
		}
	}
	return FallbackSuffix
}

func hwSuffix(addr net.HardwareAddr) (string, bool) {
	if len(addr) == 0 {
		return "", false
	}
	zero := true
	for _, b := range addr {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		return "", false
	}
	s := strings.ToUpper(hex.EncodeToString(addr))
	if len(s) < 4 {
		return "", false
	}
	return s[len(s)-4:], true
}

// Next returns the next id for the prefix given the existing id set:
// the count of existing ids sharing the prefix plus one, zero-padded to
// three digits.
//
// Two calls with the same inputs return the same id; callers must add
// the generated id to their collection before generating another.
func Next(prefix string, existing []string) string {
	count := 1
	for _, id := range existing {
		if strings.HasPrefix(id, prefix) {
			count++
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, count)
}
