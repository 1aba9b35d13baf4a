// Package pipeline drives a job through the processing state machine:
// prepare, metadata, download, subtitles, keyframes, optional translation,
// frame capture, optional outline, finalize.
//
// A Runner executes one job's ordered step table; the step weights drive the
// monotone progress percentage and every transition lands in the job's
// append-only history. A Manager polls the job store and feeds queued jobs to
// a bounded pool of workers. Cancellation is observed at step boundaries; a
// cancelled job stops before its next step and never issues further external
// calls.
package pipeline
