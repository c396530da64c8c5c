package store

import (
	"buyzo/internal/domain"
	"buyzo/internal/identity"
)

// SessionState mirrors the current identity as reported by the provider.
// Loading is true only while an identity resolution or credential operation
// is in flight.
type SessionState struct {
	Identity *identity.Identity
	Role     domain.Role
	Loading  bool
	Err      string
}

// SetIdentity publishes the current identity (nil clears it)
type SetIdentity struct {
	Identity *identity.Identity
}

// SetRole publishes the derived role
type SetRole struct {
	Role domain.Role
}

// SetSessionLoading toggles the in-flight flag
type SetSessionLoading struct {
	Loading bool
}

// SetSessionError records a failed credential operation
type SetSessionError struct {
	Err string
}

// ClearSession tears the session down
type ClearSession struct{}

func (SetIdentity) action()       {}
func (SetRole) action()           {}
func (SetSessionLoading) action() {}
func (SetSessionError) action()   {}
func (ClearSession) action()      {}

func initialSessionState() SessionState {
	return SessionState{Role: domain.RoleUser, Loading: true}
}

func reduceSession(state SessionState, a Action) SessionState {
	switch a := a.(type) {
	case SetIdentity:
		state.Identity = a.Identity
		state.Loading = false
		state.Err = ""
		if a.Identity == nil {
			state.Role = domain.RoleUser
		}
	case SetRole:
		state.Role = a.Role
	case SetSessionLoading:
		state.Loading = a.Loading
	case SetSessionError:
		state.Err = a.Err
		state.Loading = false
	case ClearSession:
		state = SessionState{Role: domain.RoleUser}
	}
	return state
}
