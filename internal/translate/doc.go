// Package translate batches subtitle cue text through a text-generation
// provider and reconciles the responses back onto the cues.
//
// The engine guarantees one output translation per input cue in input order,
// regardless of how badly a provider response is malformed: unparsable
// entries are backfilled with the source text and failed batches degrade to
// passthrough after bounded retries.
package translate
