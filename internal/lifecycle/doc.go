// Package lifecycle bridges messaging-client events to registry transitions.
// It owns the per-session state machine:
//
//	Pending       --qr-->                  AwaitingScan (payload rendered)
//	AwaitingScan  --authenticated/ready--> Authenticated (payload cleared)
//	any           --disconnected-->        removed from the registry
//
// Transitions carry the client instance id, so an event from a destroyed
// client never touches a successor session that reused the id; such events
// are reported through the Ignored callback and otherwise dropped.
//
// # What this package must NOT do
//
//   - Emit audit events or count metrics directly; the engine supplies
//     callbacks for that.
//   - Expose raw scan codes; rendering happens before anything is stored.
package lifecycle
