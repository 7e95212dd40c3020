package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/assignexpert/assignexpert/internal/common/cache"
	"github.com/assignexpert/assignexpert/internal/execution/model"
	"github.com/assignexpert/assignexpert/internal/execution/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c, err := cache.NewRedisCacheWithClient(client)
	if err != nil {
		t.Fatalf("create cache failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResultRoundTrip(t *testing.T) {
	repo := repository.NewResultRepository(newTestCache(t), time.Hour)
	ctx := context.Background()

	timeTaken := int64(250)
	memUsed := int64(1024)
	saved := model.ExecutionResult{
		Status:       model.VerdictWA,
		Message:      "--- expected\n+++ actual\n",
		TimeTaken:    &timeTaken,
		MemoryUsedKB: &memUsed,
	}
	if err := repo.Save(ctx, "job-rt", saved); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := repo.Get(ctx, "job-rt")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Status != model.VerdictWA || got.Message != saved.Message {
		t.Fatalf("result mismatch: %+v", got)
	}
	if got.TimeTaken == nil || *got.TimeTaken != 250 {
		t.Fatalf("time mismatch: %v", got.TimeTaken)
	}
	if got.MemoryUsedKB == nil || *got.MemoryUsedKB != 1024 {
		t.Fatalf("memory mismatch: %v", got.MemoryUsedKB)
	}
}

func TestResultAbsentMeansNotFinished(t *testing.T) {
	repo := repository.NewResultRepository(newTestCache(t), time.Hour)
	got, err := repo.Get(context.Background(), "job-unknown")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for an in-flight job, got %+v", got)
	}
}

func TestResultSaveOverwritesPreviousRecord(t *testing.T) {
	repo := repository.NewResultRepository(newTestCache(t), time.Hour)
	ctx := context.Background()

	if err := repo.Save(ctx, "job-dup", model.ExecutionResult{Status: model.VerdictCE, Message: "boom"}); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if err := repo.Save(ctx, "job-dup", model.ExecutionResult{Status: model.VerdictAC}); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	got, err := repo.Get(ctx, "job-dup")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Status != model.VerdictAC {
		t.Fatalf("expected latest record to win, got %+v", got)
	}
}

func TestResultDeleteEvictsRecord(t *testing.T) {
	repo := repository.NewResultRepository(newTestCache(t), time.Hour)
	ctx := context.Background()

	if err := repo.Save(ctx, "job-evict", model.ExecutionResult{Status: model.VerdictAC}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := repo.Delete(ctx, "job-evict"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := repo.Get(ctx, "job-evict")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected absent result after eviction, got %+v", got)
	}

	if err := repo.Delete(ctx, "job-evict"); err != nil {
		t.Fatalf("deleting an absent key should not fail: %v", err)
	}
}

func TestProgressRoundTrip(t *testing.T) {
	repo := repository.NewProgressRepository(newTestCache(t), time.Hour)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "job-p"); err != nil || ok {
		t.Fatalf("expected no marker yet, ok=%v err=%v", ok, err)
	}

	for _, p := range []model.Progress{model.ProgressStarted, model.ProgressSandboxRan, model.ProgressCleaned} {
		if err := repo.Set(ctx, "job-p", p); err != nil {
			t.Fatalf("set %s failed: %v", p, err)
		}
		got, ok, err := repo.Get(ctx, "job-p")
		if err != nil || !ok {
			t.Fatalf("get after set %s failed, ok=%v err=%v", p, ok, err)
		}
		if got != p {
			t.Fatalf("expected %s, got %s", p, got)
		}
	}
}
