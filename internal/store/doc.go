// Package store implements the S3-backed state store used as the audit and
// coordination log between invocations.
//
// State documents are plain JSON objects at environment-scoped keys. The
// layout, built by Paths, distinguishes the immutable per-build history from
// the two overwritten pointer locations:
//
//	<cluster>/<customer>/<env>/history/<build>/pre-state.json
//	<cluster>/<customer>/<env>/history/<build>/post-state.json
//	<cluster>/<customer>/<env>/history/<build>/actions.json
//	<cluster>/<customer>/<env>/pre-state.json   (current pointer, overwritten)
//	<cluster>/<customer>/<env>/actions.json     (latest action, overwritten)
//
// A missing document is reported as ErrNotFound so callers can distinguish
// "first run" from real access failures.
package store
