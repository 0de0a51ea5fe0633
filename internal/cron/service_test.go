package cron

import (
	"context"
	"errors"
	"testing"
)

type stubJob struct {
	name string
	spec string
	runs int
	err  error
}

func (j *stubJob) Name() string { return j.name }

func (j *stubJob) Spec() string { return j.spec }

func (j *stubJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	return l.acquired, l.acquireErr
}

func (l *stubLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func newTestCronService(t *testing.T, lock Lock, jobs ...Job) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(jobs...),
		NewLock:  func(string) (Lock, error) { return lock, nil },
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func TestRunJob_ExecutesUnderLock(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "0 0 * * *"}
	lock := &stubLock{acquired: true}
	service := newTestCronService(t, lock, job)

	service.RunJob(context.Background(), job)

	if job.runs != 1 {
		t.Fatalf("expected one run, got %d", job.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released, got %d releases", lock.releases)
	}
}

func TestRunJob_SkipsWhenLockHeldElsewhere(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "0 0 * * *"}
	lock := &stubLock{acquired: false}
	service := newTestCronService(t, lock, job)

	service.RunJob(context.Background(), job)

	if job.runs != 0 {
		t.Fatalf("expected skip, got %d runs", job.runs)
	}
	if lock.releases != 0 {
		t.Fatalf("lock must not be released when never acquired")
	}
}

func TestRunJob_LockErrorPreventsRun(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "0 0 * * *"}
	lock := &stubLock{acquireErr: errors.New("redis down")}
	service := newTestCronService(t, lock, job)

	service.RunJob(context.Background(), job)

	if job.runs != 0 {
		t.Fatalf("expected no run on lock error, got %d", job.runs)
	}
}

func TestRunJob_ReleasesLockAfterFailure(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "0 0 * * *", err: errors.New("boom")}
	lock := &stubLock{acquired: true}
	service := newTestCronService(t, lock, job)

	service.RunJob(context.Background(), job)

	if job.runs != 1 {
		t.Fatalf("expected job run, got %d", job.runs)
	}
	if lock.releases != 1 {
		t.Fatalf("expected lock released after failure")
	}
}

func TestNewService_RejectsBadLockFactory(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "0 0 * * *"}
	_, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		NewLock:  func(string) (Lock, error) { return nil, errors.New("no redis") },
	})
	if err == nil {
		t.Fatalf("expected lock factory error to surface")
	}
}

func TestRun_RejectsInvalidSpec(t *testing.T) {
	job := &stubJob{name: "sweep", spec: "not a cron spec"}
	lock := &stubLock{acquired: true}
	service := newTestCronService(t, lock, job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); err == nil {
		t.Fatalf("expected scheduling error for invalid spec")
	}
}

func TestRegistry_SkipsNilAndPreservesOrder(t *testing.T) {
	first := &stubJob{name: "first"}
	second := &stubJob{name: "second"}
	registry := NewRegistry(first, nil, second)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name() != "first" || jobs[1].Name() != "second" {
		t.Fatalf("unexpected order: %s, %s", jobs[0].Name(), jobs[1].Name())
	}
}
