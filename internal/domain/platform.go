package domain

import "strings"

// Platform names the app a task targets. Values other than the constants are
// tolerated on load, but the system only ever produces these three.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformBoth    Platform = "both"
)

// String returns the string representation
func (p Platform) String() string {
	return string(p)
}

// Label returns the upper-case tag used in standup lines, e.g. "IOS"
func (p Platform) Label() string {
	return strings.ToUpper(string(p))
}

// IsKnown reports whether p is one of the produced values
func (p Platform) IsKnown() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformBoth:
		return true
	default:
		return false
	}
}

// Includes reports whether a task on p counts toward target.
// A task on "both" counts toward ios and android.
func (p Platform) Includes(target Platform) bool {
	return p == target || p == PlatformBoth
}
