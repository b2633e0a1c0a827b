// Package clienttest provides a scripted in-memory messaging client for
// tests. The fake records every call, exposes the bound event sink so tests
// can simulate qr/ready/authenticated/disconnected events, and can be primed
// to fail construction, initialization, send, logout, or destroy.
package clienttest
