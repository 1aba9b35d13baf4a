// Package daemon hosts the background processing service: it owns the
// single-instance lock, starts and stops the pipeline manager, and exposes
// the HTTP API that accepts jobs and reports on them.
package daemon
