// Package version provides build information for the soundboard binary.
package version

// Name is the binary name shown in version output.
const Name = "soundboard"

// Version is overridden at build time with -ldflags "-X .../version.Version=...".
var Version = "development"

// Commit is the git commit hash, set the same way as Version.
var Commit = "unknown"

// String returns the version, suffixed with the commit when known.
func String() string {
	if Commit != "unknown" && Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}

// Format renders v the way `soundboard version` prints it.
func Format(v string) string {
	return Name + " version " + v
}

// Full is Format applied to the current build.
func Full() string {
	return Format(String())
}
