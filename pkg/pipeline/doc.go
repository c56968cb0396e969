// Package pipeline runs the request security pipeline.
//
// A Selector maps the request path to one Chain (first match wins, then the
// fallback). Execute runs the chain's stages strictly in order over a
// per-request Exchange. Each stage either lets the next one run, mutates the
// exchange (attaching a principal), or ends the chain by forwarding,
// redirecting or denying. Stages implementing Boundary translate errors
// raised by the stages after them; this replaces nested wrapping so that
// short-circuiting and error translation can be tested in isolation.
package pipeline
