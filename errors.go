package chatgate

import "errors"

var (
	// ErrSessionIDRequired is an exported constant or variable used by the gateway engine.
	ErrSessionIDRequired = errors.New("session id required")
	// ErrRecipientRequired is an exported constant or variable used by the gateway engine.
	ErrRecipientRequired = errors.New("recipient number required")
	// ErrMessageRequired is an exported constant or variable used by the gateway engine.
	ErrMessageRequired = errors.New("message body required")
	// ErrSessionExists is an exported constant or variable used by the gateway engine.
	ErrSessionExists = errors.New("session already exists")
	// ErrSessionNotFound is an exported constant or variable used by the gateway engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionNotReady is an exported constant or variable used by the gateway engine.
	ErrSessionNotReady = errors.New("session not ready")
	// ErrQRNotAvailable is an exported constant or variable used by the gateway engine.
	ErrQRNotAvailable = errors.New("qr code not available")
	// ErrSendFailed is an exported constant or variable used by the gateway engine.
	ErrSendFailed = errors.New("failed to send message")
	// ErrLogoutFailed is an exported constant or variable used by the gateway engine.
	ErrLogoutFailed = errors.New("failed to logout session")
	// ErrDestroyFailed is an exported constant or variable used by the gateway engine.
	ErrDestroyFailed = errors.New("failed to destroy client")
	// ErrRateLimited is an exported constant or variable used by the gateway engine.
	ErrRateLimited = errors.New("rate limited")
	// ErrEngineClosed is an exported constant or variable used by the gateway engine.
	ErrEngineClosed = errors.New("engine closed")
)
