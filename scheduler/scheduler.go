// SPDX-License-Identifier: MIT
//
// Copyright (C) 2020-2025 Daniel Bourdrez. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package scheduler runs protocol steps on two bounded lanes, so that key stretching work on the heavy lane can't
// starve the fast server steps on the light lane.
package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Lane selects the worker budget a job runs under.
type Lane byte

const (
	// Light is the lane for the fast OPRF and AKE steps, like the server's start and finish steps.
	Light Lane = iota

	// Heavy is the lane for steps running the key stretching function, like the client's finish steps.
	Heavy
)

// String implements the Stringer interface.
func (l Lane) String() string {
	switch l {
	case Light:
		return "light"
	case Heavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// ErrInvalidLane indicates a job was submitted to a lane that doesn't exist.
var ErrInvalidLane = errors.New("invalid scheduler lane")

// Config holds the lane sizes. Zero values default to the number of CPUs for the light lane, and to half of it,
// at least 1, for the heavy lane.
type Config struct {
	Logger       *slog.Logger
	HeavyWorkers int64
	LightWorkers int64
}

// Scheduler bounds the number of jobs running concurrently on each lane. It is safe for concurrent use.
type Scheduler struct {
	lanes  [2]*semaphore.Weighted
	logger *slog.Logger
}

// New returns a Scheduler for the configuration. A nil configuration uses the defaults.
func New(c *Config) *Scheduler {
	if c == nil {
		c = &Config{}
	}

	light := c.LightWorkers
	if light <= 0 {
		light = int64(runtime.NumCPU())
	}

	heavy := c.HeavyWorkers
	if heavy <= 0 {
		heavy = max(int64(runtime.NumCPU())/2, 1)
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Scheduler{
		lanes:  [2]*semaphore.Weighted{semaphore.NewWeighted(light), semaphore.NewWeighted(heavy)},
		logger: logger,
	}
}

func (s *Scheduler) lane(l Lane) (*semaphore.Weighted, error) {
	if int(l) >= len(s.lanes) {
		return nil, ErrInvalidLane
	}

	return s.lanes[l], nil
}

// Do waits for a slot on the lane and runs job. If ctx is done before a slot is free, job is not run and the
// context's error is returned. A job that started always runs to completion.
func (s *Scheduler) Do(ctx context.Context, lane Lane, job func() error) error {
	sem, err := s.lane(lane)
	if err != nil {
		return err
	}

	id := uuid.New()
	queued := time.Now()

	if err = ctx.Err(); err == nil {
		err = sem.Acquire(ctx, 1)
	}

	if err != nil {
		s.logger.Debug("job dropped", "id", id, "lane", lane, "error", err)
		return err
	}
	defer sem.Release(1)

	started := time.Now()
	err = job()

	s.logger.Debug("job done",
		"id", id,
		"lane", lane,
		"wait", started.Sub(queued),
		"run", time.Since(started),
		"failed", err != nil,
	)

	return err
}

// Run is Do for jobs returning a value.
func Run[T any](ctx context.Context, s *Scheduler, lane Lane, job func() (T, error)) (T, error) {
	var out T

	err := s.Do(ctx, lane, func() error {
		var err error
		out, err = job()

		return err
	})

	return out, err
}

// All runs the jobs concurrently on the lane, and returns the first error. Once a job fails, jobs still waiting for
// a slot are not run.
func (s *Scheduler) All(ctx context.Context, lane Lane, jobs ...func() error) error {
	if _, err := s.lane(lane); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, job := range jobs {
		g.Go(func() error {
			return s.Do(gctx, lane, job)
		})
	}

	return g.Wait()
}
