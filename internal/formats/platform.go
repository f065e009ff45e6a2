// Package formats ranks the encodings offered for a media item against the
// container preferences of a target platform.
package formats

import (
	"regexp"
	"runtime"
	"strings"
)

// Platform identifies a target device family.
type Platform string

const (
	Mac     Platform = "mac"
	Windows Platform = "windows"
	IOS     Platform = "ios"
	Android Platform = "android"
	Linux   Platform = "linux"
	Other   Platform = "other"
)

// preferences lists each platform's containers, most preferred first.
var preferences = map[Platform][]string{
	Mac:     {"mp4", "mov", "m4v"},
	Windows: {"mp4", "avi", "wmv"},
	IOS:     {"mp4", "mov", "m4v"},
	Android: {"mp4", "3gp", "webm"},
	Linux:   {"mp4", "webm", "mkv"},
	Other:   {"mp4", "webm", "mkv"},
}

var displayNames = map[Platform]string{
	Windows: "Windows",
	Mac:     "macOS",
	IOS:     "iOS",
	Android: "Android",
	Linux:   "Linux",
	Other:   "your device",
}

// Preferred returns the platform's extensions in preference order. Unknown
// platforms use the Other list.
func (p Platform) Preferred() []string {
	if prefs, ok := preferences[p]; ok {
		return prefs
	}
	return preferences[Other]
}

// DisplayName returns the human name used in "Best for ..." labels.
func (p Platform) DisplayName() string {
	if name, ok := displayNames[p]; ok {
		return name
	}
	return displayNames[Other]
}

// ParsePlatform maps a config or flag value to a Platform. Empty input
// detects the host, a browser user-agent string is passed to Detect, and
// anything else unrecognised yields Other.
func ParsePlatform(s string) Platform {
	if strings.Contains(s, "/") {
		return Detect(s)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DetectHost()
	case "mac", "macos", "darwin", "osx":
		return Mac
	case "windows", "win", "win32":
		return Windows
	case "ios", "iphone", "ipad":
		return IOS
	case "android":
		return Android
	case "linux":
		return Linux
	default:
		return Other
	}
}

var (
	reWindowsPhone = regexp.MustCompile(`(?i)windows phone`)
	reAndroid      = regexp.MustCompile(`(?i)android`)
	reIOS          = regexp.MustCompile(`iPad|iPhone|iPod`)
	reMac          = regexp.MustCompile(`(?i)mac`)
	reWin          = regexp.MustCompile(`(?i)win`)
	reLinux        = regexp.MustCompile(`(?i)linux`)
)

// Detect infers the platform from a browser user-agent string. The checks run
// in order because several agents mention more than one system.
func Detect(userAgent string) Platform {
	switch {
	case reWindowsPhone.MatchString(userAgent):
		return Windows
	case reAndroid.MatchString(userAgent):
		return Android
	case reIOS.MatchString(userAgent):
		return IOS
	case reMac.MatchString(userAgent):
		return Mac
	case reWin.MatchString(userAgent):
		return Windows
	case reLinux.MatchString(userAgent):
		return Linux
	default:
		return Other
	}
}

// DetectHost returns the platform of the running binary.
func DetectHost() Platform {
	switch runtime.GOOS {
	case "darwin":
		return Mac
	case "windows":
		return Windows
	case "ios":
		return IOS
	case "android":
		return Android
	case "linux":
		return Linux
	default:
		return Other
	}
}
