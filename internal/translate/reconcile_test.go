package translate

import "testing"

func TestReconcileStrict(t *testing.T) {
	response := "[0] first\n[1] second\n[2] third"
	got, strategy := reconcile(response, 3)
	if strategy != "strict" {
		t.Fatalf("strategy = %q", strategy)
	}
	if got[0] != "first" || got[1] != "second" || got[2] != "third" {
		t.Fatalf("result = %v", got)
	}
}

func TestReconcileLenientMultilineBlocks(t *testing.T) {
	response := "[0] a translation that the provider\nwrapped across two lines\n[1] second one"
	got, strategy := reconcile(response, 2)
	if strategy != "lenient" {
		t.Fatalf("strategy = %q (result %v)", strategy, got)
	}
	if got[0] != "a translation that the provider wrapped across two lines" {
		t.Fatalf("block 0 = %q", got[0])
	}
	if got[1] != "second one" {
		t.Fatalf("block 1 = %q", got[1])
	}
}

func TestReconcilePositionalFallback(t *testing.T) {
	response := "1. première ligne\n2) deuxième ligne\n- troisième ligne"
	got, strategy := reconcile(response, 3)
	if strategy != "positional" {
		t.Fatalf("strategy = %q (result %v)", strategy, got)
	}
	if got[0] != "première ligne" || got[1] != "deuxième ligne" || got[2] != "troisième ligne" {
		t.Fatalf("result = %v", got)
	}
}

func TestReconcilePartialCoverage(t *testing.T) {
	// Index 1 missing entirely; no strategy reaches full coverage.
	response := "[0] zero\n[2] two"
	got, strategy := reconcile(response, 3)
	if strategy != "merged" {
		t.Fatalf("strategy = %q", strategy)
	}
	if got[0] != "zero" || got[2] != "two" {
		t.Fatalf("result = %v", got)
	}
	if _, ok := got[1]; ok {
		t.Fatalf("index 1 should be unresolved: %v", got)
	}
}

func TestReconcileIgnoresOutOfRangeIndices(t *testing.T) {
	response := "[0] valid\n[7] out of range\n[1] also valid"
	got, strategy := reconcile(response, 2)
	if strategy != "strict" {
		t.Fatalf("strategy = %q", strategy)
	}
	if len(got) != 2 {
		t.Fatalf("result = %v", got)
	}
}

func TestReconcileStripsCodeFence(t *testing.T) {
	response := "```\n[0] inside fence\n[1] also inside\n```"
	got, _ := reconcile(response, 2)
	if got[0] != "inside fence" || got[1] != "also inside" {
		t.Fatalf("result = %v", got)
	}
}

func TestReconcilePositionalSkipsWhenMarkersPresent(t *testing.T) {
	// With markers in the response, positional must not misassign lines.
	if got := parsePositional("[0] text", 1); got != nil {
		t.Fatalf("positional should decline marker input: %v", got)
	}
}

func TestReconcileExtraLinesIgnored(t *testing.T) {
	response := "Here are the translations:\n\nuno\ndos"
	got, strategy := reconcile(response, 2)
	if strategy != "positional" {
		t.Fatalf("strategy = %q", strategy)
	}
	// The preamble line lands on index 0; positional is a last resort and
	// only has line order to go on.
	if len(got) != 2 {
		t.Fatalf("result = %v", got)
	}
}
