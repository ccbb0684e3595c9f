// Package httpx adapts net/http to resicord's error classification.
//
// GetString fetches a URL's body as a string; Classifier maps HTTP status
// codes to resicord.Transient/resicord.Permanent errors so callers can
// feed a GetString-wrapping Task[string] into Try[string].Retry.
package httpx
