package permission

import "context"

// State is the ternary permission result the platform reports. It is never
// persisted; the platform is re-queried on every operation.
type State string

const (
	StateNotDetermined State = "not-determined"
	StateGranted       State = "granted"
	StateDenied        State = "denied"
)

// Prompter is the raw platform dialog surface: query the current state and
// show the system prompt. Implemented by the platform bridge in production
// and by mocks in tests.
type Prompter interface {
	Current(ctx context.Context) (State, error)
	Request(ctx context.Context) (State, error)
}

// Backend is the per-platform permission flow. Implementations differ in how
// much branching sits between the caller and the prompter.
type Backend interface {
	// Request drives the permission flow once and returns whether
	// notifications are allowed, plus user-facing guidance for terminal
	// states ("" when nothing needs to be shown).
	Request(ctx context.Context) (granted bool, guidance string)
}
