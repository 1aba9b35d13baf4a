// Package services provides shared plumbing for slidecast service clients:
// sentinel errors with a uniform wrapping helper, and context annotations
// that carry job, step, and correlation identifiers into structured logs.
package services
