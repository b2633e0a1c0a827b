// Package qr turns raw scan codes into renderable payloads for generic HTTP
// callers. The raw code never leaves the gateway; callers receive either a
// hosted QR image URL or an inline base64 PNG data URI, and must treat the
// value as an opaque displayable reference.
package qr
