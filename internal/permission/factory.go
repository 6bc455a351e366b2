package permission

import "classnest-backend/pkg/platform"

// NewBackend selects the permission flow for the runtime platform.
// This is the factory function - switch flows by changing the platform flag.
func NewBackend(p platform.Platform, prompter Prompter) Backend {
	if !p.HasPermissionSurface() {
		return NewGrantedBackend()
	}
	if p == platform.Web {
		return NewWebBackend(prompter)
	}
	return NewMobileBackend(prompter)
}
