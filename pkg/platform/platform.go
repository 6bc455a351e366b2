package platform

// Platform identifies the client platform a device token or notification
// capability belongs to.
type Platform string

const (
	Web     Platform = "web"
	Android Platform = "android"
	IOS     Platform = "ios"
	MacOS   Platform = "macos"
	Windows Platform = "windows"
	Linux   Platform = "linux"
)

// Parse maps a platform string to a known Platform, defaulting to Web for
// anything unrecognized (browsers are the least capable target, so it is the
// safe fallback).
func Parse(s string) Platform {
	switch Platform(s) {
	case Web, Android, IOS, MacOS, Windows, Linux:
		return Platform(s)
	default:
		return Web
	}
}

// SupportsVoIP reports whether the platform issues dedicated VoIP push tokens.
// Only iOS has a PushKit-style VoIP token.
func (p Platform) SupportsVoIP() bool {
	return p == IOS
}

// SupportsNativeCallUI reports whether the platform can show an OS-provided
// full-screen incoming-call interface.
func (p Platform) SupportsNativeCallUI() bool {
	return p == IOS || p == Android
}

// HasPermissionSurface reports whether the platform exposes a notification
// permission dialog at all. Desktop targets deliver without asking.
func (p Platform) HasPermissionSurface() bool {
	switch p {
	case Web, Android, IOS, MacOS:
		return true
	default:
		return false
	}
}
