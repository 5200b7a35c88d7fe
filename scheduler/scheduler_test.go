// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package scheduler_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	opaque "github.com/bytemare/opaque-engine"
	"github.com/bytemare/opaque-engine/scheduler"
)

func TestLaneString(t *testing.T) {
	if scheduler.Light.String() != "light" || scheduler.Heavy.String() != "heavy" {
		t.Fatal("unexpected lane names")
	}

	if scheduler.Lane(7).String() != "unknown" {
		t.Fatal("expected unknown lane name")
	}
}

func TestInvalidLane(t *testing.T) {
	s := scheduler.New(nil)

	if err := s.Do(context.Background(), scheduler.Lane(2), func() error { return nil }); !errors.Is(
		err,
		scheduler.ErrInvalidLane,
	) {
		t.Fatalf("expected ErrInvalidLane, got %v", err)
	}

	if err := s.All(context.Background(), scheduler.Lane(2)); !errors.Is(err, scheduler.ErrInvalidLane) {
		t.Fatalf("expected ErrInvalidLane, got %v", err)
	}
}

func TestLaneBound(t *testing.T) {
	const (
		workers = 2
		jobs    = 12
	)

	s := scheduler.New(&scheduler.Config{LightWorkers: workers})

	var running, peak, done atomic.Int64

	job := func() error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}

		time.Sleep(5 * time.Millisecond)
		running.Add(-1)
		done.Add(1)

		return nil
	}

	list := make([]func() error, jobs)
	for i := range list {
		list[i] = job
	}

	if err := s.All(context.Background(), scheduler.Light, list...); err != nil {
		t.Fatal(err)
	}

	if done.Load() != jobs {
		t.Fatalf("expected %d jobs to run, got %d", jobs, done.Load())
	}

	if peak.Load() > workers {
		t.Fatalf("expected at most %d concurrent jobs, got %d", workers, peak.Load())
	}
}

// occupy fills a lane of one worker until the returned function is called.
func occupy(t *testing.T, s *scheduler.Scheduler, lane scheduler.Lane) func() {
	t.Helper()

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		_ = s.Do(context.Background(), lane, func() error {
			close(started)
			<-release

			return nil
		})
	}()

	<-started

	return func() {
		close(release)
		<-finished
	}
}

func TestCancelWhileWaiting(t *testing.T) {
	s := scheduler.New(&scheduler.Config{HeavyWorkers: 1})
	release := occupy(t, s, scheduler.Heavy)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ran := false

	err := s.Do(ctx, scheduler.Heavy, func() error {
		ran = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected a deadline error, got %v", err)
	}

	if ran {
		t.Fatal("job should not have run")
	}
}

func TestCancelledContext(t *testing.T) {
	s := scheduler.New(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Do(ctx, scheduler.Light, func() error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLanesIndependent(t *testing.T) {
	s := scheduler.New(&scheduler.Config{HeavyWorkers: 1, LightWorkers: 1})
	release := occupy(t, s, scheduler.Heavy)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.Do(ctx, scheduler.Light, func() error { return nil }); err != nil {
		t.Fatalf("light lane should not wait on the heavy lane: %v", err)
	}
}

func TestAllFirstError(t *testing.T) {
	s := scheduler.New(&scheduler.Config{LightWorkers: 1})
	errJob := errors.New("job failed")

	err := s.All(context.Background(), scheduler.Light,
		func() error { return nil },
		func() error { return errJob },
		func() error { return nil },
	)
	if !errors.Is(err, errJob) {
		t.Fatalf("expected the job's error, got %v", err)
	}
}

func TestRunValue(t *testing.T) {
	s := scheduler.New(nil)

	v, err := scheduler.Run(context.Background(), s, scheduler.Light, func() (int, error) {
		return 42, nil
	})
	if err != nil || v != 42 {
		t.Fatalf("unexpected result %d, %v", v, err)
	}
}

// TestProtocolOnLanes runs concurrent logins with the client steps on the heavy lane and the server steps on the
// light lane.
func TestProtocolOnLanes(t *testing.T) {
	conf := opaque.DefaultConfiguration()
	conf.KSF = 0

	b, err := opaque.NewBoundary(conf)
	if err != nil {
		t.Fatal(err)
	}

	setup, err := opaque.NewServerSetup(conf, nil)
	if err != nil {
		t.Fatal(err)
	}

	encodedSetup, err := setup.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	s := scheduler.New(&scheduler.Config{HeavyWorkers: 2, LightWorkers: 4})
	ctx := context.Background()
	usernames := [][]byte{[]byte("alice"), []byte("bob"), []byte("carol"), []byte("dave")}

	// Each login schedules its own steps, so the fan-out runs outside the lanes.
	errs := make(chan error, len(usernames))
	for _, username := range usernames {
		go func() { errs <- login(ctx, s, b, encodedSetup, username) }()
	}

	for range usernames {
		if err = <-errs; err != nil {
			t.Fatal(err)
		}
	}
}

func login(ctx context.Context, s *scheduler.Scheduler, b *opaque.Boundary, setup, username []byte) error {
	password := append([]byte("password-"), username...)

	regStart, err := scheduler.Run(ctx, s, scheduler.Light, func() (*opaque.Output, error) {
		return b.ClientRegistrationStart(password)
	})
	if err != nil {
		return err
	}

	response, err := scheduler.Run(ctx, s, scheduler.Light, func() (*opaque.Output, error) {
		return b.ServerRegistrationStart(username, regStart.Message, setup, nil)
	})
	if err != nil {
		return err
	}

	record, err := scheduler.Run(ctx, s, scheduler.Heavy, func() ([]byte, error) {
		r, _, err := b.ClientRegistrationFinish(password, response.Message, regStart.State, username, nil)
		return r, err
	})
	if err != nil {
		return err
	}

	file, err := scheduler.Run(ctx, s, scheduler.Light, func() ([]byte, error) {
		return b.ServerRegistrationFinish(record)
	})
	if err != nil {
		return err
	}

	ke1, err := scheduler.Run(ctx, s, scheduler.Light, func() (*opaque.Output, error) {
		return b.ClientLoginStart(password)
	})
	if err != nil {
		return err
	}

	ke2, err := scheduler.Run(ctx, s, scheduler.Light, func() (*opaque.Output, error) {
		return b.ServerLoginStart(username, file, ke1.Message, setup, nil, nil)
	})
	if err != nil {
		return err
	}

	fin, err := scheduler.Run(ctx, s, scheduler.Heavy, func() (*opaque.Finalization, error) {
		return b.ClientLoginFinish(password, ke2.Message, ke1.State, username, nil, nil)
	})
	if err != nil {
		return err
	}

	sessionKey, err := scheduler.Run(ctx, s, scheduler.Light, func() ([]byte, error) {
		return b.ServerLoginFinish(fin.Message, ke2.State)
	})
	if err != nil {
		return err
	}

	if !bytes.Equal(sessionKey, fin.SessionKey) {
		return errors.New("session keys differ")
	}

	return nil
}
