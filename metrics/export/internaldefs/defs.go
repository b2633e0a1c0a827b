package internaldefs

import (
	chatgate "github.com/chatgate-io/chatgate"
)

// CounterDef defines a public type used by chatgate APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   chatgate.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the gateway engine.
var CounterDefs = []CounterDef{
	{ID: chatgate.MetricSessionCreated, Name: "chatgate_session_created_total", Help: "Created sessions."},
	{ID: chatgate.MetricSessionDuplicate, Name: "chatgate_session_duplicate_total", Help: "Session creation attempts rejected as duplicate."},
	{ID: chatgate.MetricSessionAuthenticated, Name: "chatgate_session_authenticated_total", Help: "Sessions that completed authentication."},
	{ID: chatgate.MetricQRIssued, Name: "chatgate_qr_issued_total", Help: "Scan codes issued to pending sessions."},
	{ID: chatgate.MetricSessionDisconnected, Name: "chatgate_session_disconnected_total", Help: "Sessions removed after an upstream disconnect."},
	{ID: chatgate.MetricSessionExpired, Name: "chatgate_session_expired_total", Help: "Pending sessions removed by the expiry sweeper."},
	{ID: chatgate.MetricStaleEventIgnored, Name: "chatgate_stale_event_ignored_total", Help: "Client events dropped as stale or unknown."},
	{ID: chatgate.MetricMessageSent, Name: "chatgate_message_sent_total", Help: "Successfully dispatched messages."},
	{ID: chatgate.MetricMessageFailed, Name: "chatgate_message_failed_total", Help: "Message dispatches that failed upstream."},
	{ID: chatgate.MetricLogoutSuccess, Name: "chatgate_logout_success_total", Help: "Successful logout operations."},
	{ID: chatgate.MetricLogoutFailure, Name: "chatgate_logout_failure_total", Help: "Failed logout operations."},
	{ID: chatgate.MetricRateLimited, Name: "chatgate_rate_limited_total", Help: "Requests denied by the rate limiter."},
}

// AuditDroppedName is an exported constant or variable used by the gateway engine.
const AuditDroppedName = "chatgate_audit_dropped_total"

// AuditDroppedHelp is an exported constant or variable used by the gateway engine.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."
