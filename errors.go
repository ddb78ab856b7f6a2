package goGuard

import "errors"

var (
	// ErrGuardNotReady is an exported constant or variable used by the route guard engine.
	ErrGuardNotReady = errors.New("guard not initialized")
	// ErrRedirectFailed is an exported constant or variable used by the route guard engine.
	ErrRedirectFailed = errors.New("redirect failed")
	// ErrLogoutFailed is an exported constant or variable used by the route guard engine.
	ErrLogoutFailed = errors.New("forced logout failed")
)
