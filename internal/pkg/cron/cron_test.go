package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestStartRecordsStatus(t *testing.T) {
	s := New(nil)
	s.Register(Job{Name: "ok", Interval: time.Hour, RunOnStart: true, Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "bad", Interval: time.Hour, RunOnStart: true, Fn: func(context.Context) error { return errors.New("nope") }})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		ok, _ := s.Status("ok")
		bad, _ := s.Status("bad")
		if ok.Status != StatusIdle && ok.Status != StatusRunning && bad.Status != StatusIdle && bad.Status != StatusRunning {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	ok, _ := s.Status("ok")
	if ok.Status != StatusFulfill || ok.LastRunAt.IsZero() {
		t.Errorf("ok snapshot = %+v", ok)
	}
	bad, _ := s.Status("bad")
	if bad.Status != StatusReject || bad.Message != "nope" {
		t.Errorf("bad snapshot = %+v", bad)
	}
	if _, err := s.Status("missing"); err == nil {
		t.Error("Status(missing) should fail")
	}
}

func TestStartRunsOnStartAndStopsWithContext(t *testing.T) {
	var runs atomic.Int32
	s := New(nil)
	s.Register(Job{Name: "tick", Interval: time.Hour, RunOnStart: true, Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	deadline := time.Now().Add(time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	if runs.Load() != 1 {
		t.Fatalf("runs = %d, want 1", runs.Load())
	}
}
