package version

import (
	"runtime/debug"
	"strings"
)

// Override is set with -ldflags "-X github.com/brandonbloom/bootimage/internal/version.Override=v1.2.3"
// for release builds.
var Override = ""

// String reports the bootimage version: the ldflags override if present,
// else the module version from build info, else "(devel)".
func String() string {
	if Override != "" {
		return Override
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	return fromModuleVersion(info.Main.Version)
}

func fromModuleVersion(version string) string {
	if version == "" || version == "(devel)" {
		return "(devel)"
	}
	if strings.Contains(version, "+dirty") || isPseudoVersion(version) {
		return "(devel)"
	}
	return strings.TrimPrefix(version, "v")
}

// isPseudoVersion matches vX.Y.Z-yyyymmddhhmmss-abcdefabcdef.
func isPseudoVersion(version string) bool {
	version, _, _ = strings.Cut(version, "+")

	parts := strings.Split(version, "-")
	if len(parts) < 3 {
		return false
	}

	ts := parts[len(parts)-2]
	hash := parts[len(parts)-1]
	if len(ts) != 14 || !allDigits(ts) {
		return false
	}
	if len(hash) < 12 || !allHex(hash) {
		return false
	}
	return true
}

func allDigits(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) < 0
}

func allHex(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !strings.ContainsRune("0123456789abcdefABCDEF", r)
	}) < 0
}
