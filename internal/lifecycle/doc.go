// Package lifecycle enforces the legal state transitions of a delivery.
//
// The engine holds no state between calls: callers pass the persisted delivery
// (nil when it does not exist) plus whatever lookups a guard needs, and get back
// either the updated delivery or an apperr-typed rejection. Persisting the result
// is the caller's job.
//
//	created ──withdraw──▶ withdrawn ──conclude──▶ concluded
//	   │
//	   └──────cancel────▶ canceled
package lifecycle
