// Package subtitle parses, optimizes, and serializes SRT subtitle tracks.
//
// Parsing is tolerant: malformed blocks are skipped and reported as warnings
// instead of failing the whole track. Serialization round-trips timecodes at
// millisecond precision. The package also provides script-aware line
// rewrapping and a sentence-merge optimizer that collapses fragmented cues.
package subtitle
