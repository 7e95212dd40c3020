package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/assignexpert/assignexpert/internal/common/cache"
	"github.com/assignexpert/assignexpert/internal/common/mq"
	"github.com/assignexpert/assignexpert/internal/execution/repository"
	"github.com/assignexpert/assignexpert/internal/execution/sandbox"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeProducer struct {
	mu        sync.Mutex
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic string
	msg   *mq.Message
}

func (f *fakeProducer) Publish(_ context.Context, topic string, msg *mq.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{topic: topic, msg: msg})
	return nil
}

func (f *fakeProducer) messages() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.published))
	copy(out, f.published)
	return out
}

// fakeEngine stands in for the isolation backend. On Start it drops the
// configured artifact files into the workspace of the last created sandbox,
// mimicking what a real execution image does through the shared mount.
type fakeEngine struct {
	mu        sync.Mutex
	created   []sandbox.CreateSpec
	destroyed []string

	createErr  error
	startErr   error
	startRes   sandbox.StartResult
	destroyErr error
	artifacts  map[string]string
}

func (f *fakeEngine) Create(_ context.Context, spec sandbox.CreateSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, spec)
	return nil
}

func (f *fakeEngine) Start(_ context.Context, name string) (sandbox.StartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return sandbox.StartResult{}, f.startErr
	}
	if len(f.created) > 0 {
		dir := f.created[len(f.created)-1].WorkspacePath
		for file, content := range f.artifacts {
			if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0644); err != nil {
				return sandbox.StartResult{}, err
			}
		}
	}
	return f.startRes, nil
}

func (f *fakeEngine) Destroy(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, name)
	return nil
}

func (f *fakeEngine) lastCreated(t *testing.T) sandbox.CreateSpec {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.created) == 0 {
		t.Fatal("no sandbox was created")
	}
	return f.created[len(f.created)-1]
}

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

func newTestRepos(t *testing.T) (*repository.ResultRepository, *repository.ProgressRepository) {
	t.Helper()
	c := newTestCache(t)
	return repository.NewResultRepository(c, time.Hour), repository.NewProgressRepository(c, time.Hour)
}

// brokenSetCache fails every write, standing in for a cache outage.
type brokenSetCache struct {
	cache.Cache
	setErr error
}

func (b *brokenSetCache) Set(context.Context, string, interface{}, time.Duration) error {
	return b.setErr
}
