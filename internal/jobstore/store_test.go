package jobstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"slidecast/internal/services"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job, err := store.Create(ctx, Request{URL: "https://example.com/v", TranslateTo: "fr"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" || job.Status != StatusQueued {
		t.Fatalf("job = %+v", job)
	}
	if job.Request.URL != "https://example.com/v" || job.Request.TranslateTo != "fr" {
		t.Fatalf("request round-trip failed: %+v", job.Request)
	}

	history, err := store.History(ctx, job.ID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 || history[0].Step != "queued" {
		t.Fatalf("history = %+v", history)
	}
}

func TestGetUnknownJob(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v", err)
	}
}

func TestNextQueuedClaimsOldest(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.Create(ctx, Request{URL: "first"})
	store.Create(ctx, Request{URL: "second"})

	claimed, err := store.NextQueued(ctx)
	if err != nil {
		t.Fatalf("NextQueued: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("claimed = %+v, want %s", claimed, first.ID)
	}
	if claimed.Status != StatusRunning {
		t.Fatalf("claimed status = %s", claimed.Status)
	}

	// First is no longer claimable.
	second, err := store.NextQueued(ctx)
	if err != nil {
		t.Fatalf("NextQueued: %v", err)
	}
	if second == nil || second.Request.URL != "second" {
		t.Fatalf("second claim = %+v", second)
	}

	empty, err := store.NextQueued(ctx)
	if err != nil || empty != nil {
		t.Fatalf("empty queue: job=%v err=%v", empty, err)
	}
}

func TestUpdateProgressAppendsHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})

	steps := []string{"prepare", "metadata", "download_video"}
	for i, step := range steps {
		if err := store.UpdateProgress(ctx, job.ID, step, float64(10*(i+1)), "working on "+step); err != nil {
			t.Fatalf("UpdateProgress(%s): %v", step, err)
		}
	}

	got, _ := store.GetByID(ctx, job.ID)
	if got.CurrentStep != "download_video" || got.Progress != 30 {
		t.Fatalf("job = %+v", got)
	}

	history, _ := store.History(ctx, job.ID)
	if len(history) != 1+len(steps) {
		t.Fatalf("history length = %d", len(history))
	}
	for i, step := range steps {
		if history[i+1].Step != step {
			t.Fatalf("history[%d] = %+v", i+1, history[i+1])
		}
	}
}

func TestMarkCompletedStoresResult(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})

	result := &Result{Title: "My Video", SlideCount: 42, FramesDir: "/tmp/frames"}
	if err := store.MarkCompleted(ctx, job.ID, result); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != StatusCompleted || got.Progress != 100 {
		t.Fatalf("job = %+v", got)
	}
	if got.Result == nil || got.Result.SlideCount != 42 || got.Result.Title != "My Video" {
		t.Fatalf("result = %+v", got.Result)
	}
}

func TestMarkFailedRecordsError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})

	if err := store.MarkFailed(ctx, job.ID, "download_video", "fetch failed: 403"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != StatusFailed || got.ErrorMessage != "fetch failed: 403" {
		t.Fatalf("job = %+v", got)
	}
}

func TestRequestCancelQueuedJob(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})

	if err := store.RequestCancel(ctx, job.ID); err != nil {
		t.Fatalf("RequestCancel: %v", err)
	}
	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != StatusCancelled {
		t.Fatalf("queued job should cancel immediately: %+v", got)
	}
}

func TestRequestCancelRunningJobSetsFlag(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})
	if _, err := store.NextQueued(ctx); err != nil {
		t.Fatal(err)
	}

	if err := store.RequestCancel(ctx, job.ID); err != nil {
		t.Fatalf("RequestCancel: %v", err)
	}
	flagged, err := store.CancelRequested(ctx, job.ID)
	if err != nil || !flagged {
		t.Fatalf("CancelRequested = %v, %v", flagged, err)
	}
	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != StatusRunning {
		t.Fatalf("running job should keep running until boundary: %s", got.Status)
	}

	if err := store.MarkCancelled(ctx, job.ID, "frame_capture"); err != nil {
		t.Fatalf("MarkCancelled: %v", err)
	}
	got, _ = store.GetByID(ctx, job.ID)
	if got.Status != StatusCancelled {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestRequestCancelTerminalJobRejected(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})
	store.MarkCompleted(ctx, job.ID, &Result{})

	if err := store.RequestCancel(ctx, job.ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error = %v", err)
	}
}

func TestDeleteOnlyTerminalJobs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})

	if err := store.Delete(ctx, job.ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("deleting active job should fail: %v", err)
	}

	store.MarkFailed(ctx, job.ID, "prepare", "boom")
	if err := store.Delete(ctx, job.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, job.ID); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("job should be gone: %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	done, _ := store.Create(ctx, Request{URL: "done"})
	store.MarkCompleted(ctx, done.ID, &Result{SlideCount: 1})
	store.Create(ctx, Request{URL: "waiting"})

	completed, err := store.List(ctx, StatusCompleted)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != done.ID {
		t.Fatalf("completed = %+v", completed)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d jobs", len(all))
	}
}

func TestResetRunning(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	job, _ := store.Create(ctx, Request{URL: "u"})
	store.NextQueued(ctx)

	n, err := store.ResetRunning(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ResetRunning = %d, %v", n, err)
	}
	got, _ := store.GetByID(ctx, job.ID)
	if got.Status != StatusQueued {
		t.Fatalf("status = %s", got.Status)
	}
}
