package chatgate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatgate-io/chatgate/client"
	"github.com/chatgate-io/chatgate/internal/lifecycle"
	"github.com/chatgate-io/chatgate/internal/rate"
	"github.com/chatgate-io/chatgate/registry"
)

// Engine defines a public type used by chatgate APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	store      *registry.Store
	controller *lifecycle.Controller
	factory    client.Factory
	limiter    *rate.Limiter
	audit      *auditDispatcher
	metrics    *Metrics

	startedAt time.Time

	sweepDone chan struct{}
	sweepWG   sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		close(e.closed)
		if e.sweepDone != nil {
			close(e.sweepDone)
			e.sweepWG.Wait()
		}
		if e.audit != nil {
			e.audit.Close()
		}
	})
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// Uptime describes the uptime operation and its observable behavior.
//
// Uptime may return an error when input validation, dependency calls, or security checks fail.
// Uptime does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Uptime() time.Duration {
	return time.Since(e.startedAt)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) auditEmit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	event.Timestamp = time.Now()
	if event.IP == "" {
		event.IP = ClientIPFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}

// CreateSession describes the createsession operation and its observable behavior.
//
// CreateSession registers a new session and schedules client initialization.
// It returns before authentication begins; callers observe progress by
// polling [Engine.Status]. A synchronous client construction or
// initialization failure is audited and intentionally NOT returned: the
// session stays pending forever, matching the upstream gateway's observed
// contract, and can be cleaned up by logout or the expiry sweeper.
//
// CreateSession may return an error when input validation, dependency calls, or security checks fail.
// CreateSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CreateSession(ctx context.Context, id string) error {
	if id == "" {
		return ErrSessionIDRequired
	}

	select {
	case <-e.closed:
		return ErrEngineClosed
	default:
	}

	if err := e.allowCreate(ctx); err != nil {
		return err
	}

	instance := uuid.NewString()

	if _, err := e.store.Create(id, instance, time.Now()); err != nil {
		if errors.Is(err, registry.ErrExists) {
			e.metricInc(MetricSessionDuplicate)
			e.auditEmit(ctx, AuditEvent{
				EventType: AuditSessionDuplicate,
				SessionID: id,
				Success:   false,
				Error:     ErrSessionExists.Error(),
			})
			return ErrSessionExists
		}
		return err
	}

	e.metricInc(MetricSessionCreated)

	sink := e.controller.Bind(id, instance)
	cl, err := e.factory.New(ctx, id, sink)
	if err != nil {
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditSessionInitFailed,
			SessionID: id,
			Instance:  instance,
			Success:   false,
			Error:     err.Error(),
		})
		return nil
	}
	e.store.Attach(id, instance, cl)

	if err := cl.Initialize(ctx); err != nil {
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditSessionInitFailed,
			SessionID: id,
			Instance:  instance,
			Success:   false,
			Error:     err.Error(),
		})
		return nil
	}

	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionCreate,
		SessionID: id,
		Instance:  instance,
		Success:   true,
	})
	return nil
}

// Status describes the status operation and its observable behavior.
//
// Status may return an error when input validation, dependency calls, or security checks fail.
// Status does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Status(ctx context.Context, id string) (SessionInfo, error) {
	sess, ok := e.store.Get(id)
	if !ok {
		return SessionInfo{}, ErrSessionNotFound
	}
	return sessionInfo(sess), nil
}

// QR describes the qr operation and its observable behavior.
//
// QR may return an error when input validation, dependency calls, or security checks fail.
// QR does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) QR(ctx context.Context, id string) (string, error) {
	sess, ok := e.store.Get(id)
	if !ok {
		return "", ErrSessionNotFound
	}
	if sess.QR == "" {
		return "", ErrQRNotAvailable
	}
	return sess.QR, nil
}

// Sessions describes the sessions operation and its observable behavior.
//
// Sessions may return an error when input validation, dependency calls, or security checks fail.
// Sessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Sessions(ctx context.Context) []SessionInfo {
	snaps := e.store.Snapshot()
	out := make([]SessionInfo, 0, len(snaps))
	for _, sess := range snaps {
		out = append(out, sessionInfo(sess))
	}
	return out
}

// SendMessage describes the sendmessage operation and its observable behavior.
//
// SendMessage may return an error when input validation, dependency calls, or security checks fail.
// SendMessage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SendMessage(ctx context.Context, id, number, text string) error {
	if id == "" {
		return ErrSessionIDRequired
	}
	if number == "" {
		return ErrRecipientRequired
	}
	if text == "" {
		return ErrMessageRequired
	}

	if err := e.allowSend(ctx); err != nil {
		return err
	}

	sess, ok := e.store.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	if sess.Status != registry.StatusAuthenticated {
		return ErrSessionNotReady
	}

	cl, ok := e.store.Client(id)
	if !ok || cl == nil {
		// Removed (or never attached) between the status check and here.
		return ErrSessionNotFound
	}

	recipient := normalizeRecipient(number, e.config.Messaging.AddressSuffix)

	if err := cl.SendMessage(ctx, recipient, text); err != nil {
		e.metricInc(MetricMessageFailed)
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditMessageSend,
			SessionID: id,
			Success:   false,
			Error:     err.Error(),
			Metadata:  map[string]string{"recipient": recipient},
		})
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	e.metricInc(MetricMessageSent)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditMessageSend,
		SessionID: id,
		Success:   true,
		Metadata:  map[string]string{"recipient": recipient},
	})
	return nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout releases the session with the messaging network and removes it from
// the registry. Removal is the unconditional final step once the client
// confirms logout: a failure during the subsequent resource teardown is
// reported but never resurrects the registry entry.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, id string) error {
	if id == "" {
		return ErrSessionIDRequired
	}

	cl, ok := e.store.Client(id)
	if !ok {
		return ErrSessionNotFound
	}

	if cl != nil {
		if err := cl.Logout(ctx); err != nil {
			e.metricInc(MetricLogoutFailure)
			e.auditEmit(ctx, AuditEvent{
				EventType: AuditLogout,
				SessionID: id,
				Success:   false,
				Error:     err.Error(),
			})
			return fmt.Errorf("%w: %v", ErrLogoutFailed, err)
		}
	}

	e.store.Remove(id)
	e.metricInc(MetricLogoutSuccess)

	if cl != nil {
		if err := cl.Destroy(ctx); err != nil {
			e.auditEmit(ctx, AuditEvent{
				EventType: AuditLogout,
				SessionID: id,
				Success:   false,
				Error:     err.Error(),
				Metadata:  map[string]string{"stage": "destroy"},
			})
			return fmt.Errorf("%w: %v", ErrDestroyFailed, err)
		}
	}

	e.auditEmit(ctx, AuditEvent{
		EventType: AuditLogout,
		SessionID: id,
		Success:   true,
	})
	return nil
}

func (e *Engine) allowCreate(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.mapLimiterErr(ctx, e.limiter.AllowCreate(ctx, ClientIPFromContext(ctx)))
}

func (e *Engine) allowSend(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	return e.mapLimiterErr(ctx, e.limiter.AllowSend(ctx, ClientIPFromContext(ctx)))
}

func (e *Engine) mapLimiterErr(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, rate.ErrRateLimited):
		e.metricInc(MetricRateLimited)
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditRateLimited,
			Success:   false,
			Error:     err.Error(),
		})
		return ErrRateLimited
	default:
		// Redis outage: fail open. Limiting is protective, not load-bearing.
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditRateUnavailable,
			Success:   false,
			Error:     err.Error(),
		})
		return nil
	}
}

// normalizeRecipient appends the network address suffix unless the number
// already contains it. The containment check (not a suffix check) mirrors
// the messaging network's accepted format exactly; malformed addresses fail
// delivery silently, so this rule must never drift.
func normalizeRecipient(number, suffix string) string {
	if strings.Contains(number, suffix) {
		return number
	}
	return number + suffix
}

// ---------------------------------------------------------------------------
// Lifecycle callbacks
// ---------------------------------------------------------------------------

func (e *Engine) onQR(ctx context.Context, id string) {
	e.metricInc(MetricQRIssued)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionQR,
		SessionID: id,
		Success:   true,
	})
}

func (e *Engine) onAuthenticated(ctx context.Context, id string) {
	e.metricInc(MetricSessionAuthenticated)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionAuthenticated,
		SessionID: id,
		Success:   true,
	})
}

func (e *Engine) onDisconnected(ctx context.Context, id, reason string) {
	e.metricInc(MetricSessionDisconnected)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionDisconnected,
		SessionID: id,
		Success:   true,
		Metadata:  map[string]string{"reason": reason},
	})
}

func (e *Engine) onIgnored(ctx context.Context, id string, ev client.Event) {
	e.metricInc(MetricStaleEventIgnored)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionEventIgnored,
		SessionID: id,
		Success:   false,
		Metadata:  map[string]string{"event": ev.Kind.String()},
	})
}

func (e *Engine) onRenderError(ctx context.Context, id string, err error) {
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditSessionQR,
		SessionID: id,
		Success:   false,
		Error:     err.Error(),
	})
}

func (e *Engine) destroyAsync(ctx context.Context, cl client.Client) {
	go func() {
		_ = cl.Destroy(context.Background())
	}()
}

// ---------------------------------------------------------------------------
// Expiry sweep
// ---------------------------------------------------------------------------

func (e *Engine) startSweeper() {
	e.sweepDone = make(chan struct{})
	e.sweepWG.Add(1)
	go func() {
		defer e.sweepWG.Done()
		ticker := time.NewTicker(e.config.Session.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.sweep()
			case <-e.sweepDone:
				return
			}
		}
	}()
}

func (e *Engine) sweep() {
	cutoff := time.Now().Add(-e.config.Session.PendingTTL)

	for _, sess := range e.store.Snapshot() {
		if sess.Status == registry.StatusAuthenticated || !sess.CreatedAt.Before(cutoff) {
			continue
		}
		instance := sess.Instance
		cl, ok := e.store.RemoveIf(sess.ID, func(cur registry.Session) bool {
			// Re-checked under the store lock: the session may have
			// authenticated or been replaced since the snapshot.
			return cur.Instance == instance && cur.Status != registry.StatusAuthenticated
		})
		if !ok {
			continue
		}
		e.metricInc(MetricSessionExpired)
		e.auditEmit(context.Background(), AuditEvent{
			EventType: AuditSessionExpired,
			SessionID: sess.ID,
			Instance:  instance,
			Success:   true,
		})
		if cl != nil {
			e.destroyAsync(context.Background(), cl)
		}
	}
}
