/*
 * Copyright 2024 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package pool provides the worker pool that runs fire-and-forget units,
// such as parallel before advice, without a goroutine allocation per unit.
//
// Package pool 提供运行即发即弃任务（例如并行前置通知）的工作池，避免每个任务分配一个协程。
package pool

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNoIdleWorkers is returned by Submit when every worker is busy and
	// MaxWorkersCount has been reached.
	ErrNoIdleWorkers = errors.New("no idle workers")
	// ErrPoolStopped is returned by Submit after Stop or Release.
	ErrPoolStopped = errors.New("worker pool stopped")
)

// defaultMaxIdleWorkerDuration is used when MaxIdleWorkerDuration is not set.
const defaultMaxIdleWorkerDuration = 10 * time.Second

// WorkerPool runs submitted functions on a bounded set of workers. An idle worker
// takes the next function; a worker idle for MaxIdleWorkerDuration exits.
//
// WorkerPool 在有限数量的工作者上运行提交的函数，空闲超时的工作者自动退出。
//
//	wp := &WorkerPool{MaxWorkersCount: 100}
//	wp.Start()
//	defer wp.Stop()
//	if err := wp.Submit(task); err != nil {
//	  go task()
//	}
type WorkerPool struct {
	// MaxWorkersCount bounds the number of concurrently running workers.
	MaxWorkersCount int
	// MaxIdleWorkerDuration is how long an idle worker is kept before it exits.
	// Defaults to 10 seconds.
	MaxIdleWorkerDuration time.Duration

	once    sync.Once
	lock    sync.Mutex
	running int
	stopped bool
	// tasks is unbuffered, a send succeeds only when a worker is idle.
	tasks  chan func()
	stopCh chan struct{}
}

// Start prepares the pool. Submit also prepares it on first use.
func (wp *WorkerPool) Start() {
	wp.once.Do(func() {
		wp.tasks = make(chan func())
		wp.stopCh = make(chan struct{})
	})
}

// Stop refuses further submissions and terminates idle workers.
// Busy workers exit once their current function returns. Stop is idempotent.
func (wp *WorkerPool) Stop() {
	wp.Start()
	wp.lock.Lock()
	defer wp.lock.Unlock()
	if wp.stopped {
		return
	}
	wp.stopped = true
	close(wp.stopCh)
}

// Release stops the pool. It satisfies the Pool contract of api/types.
func (wp *WorkerPool) Release() {
	wp.Stop()
}

// Running returns the number of live workers, busy or idle.
func (wp *WorkerPool) Running() int {
	wp.lock.Lock()
	defer wp.lock.Unlock()
	return wp.running
}

// Submit hands fn to an idle worker, starting a new one if the limit allows.
// It never blocks waiting for a worker.
func (wp *WorkerPool) Submit(fn func()) error {
	wp.Start()
	wp.lock.Lock()
	stopped := wp.stopped
	wp.lock.Unlock()
	if stopped {
		return ErrPoolStopped
	}
	select {
	case wp.tasks <- fn:
		return nil
	default:
	}

	wp.lock.Lock()
	if wp.stopped {
		wp.lock.Unlock()
		return ErrPoolStopped
	}
	if wp.running >= wp.MaxWorkersCount {
		wp.lock.Unlock()
		return ErrNoIdleWorkers
	}
	wp.running++
	wp.lock.Unlock()

	go wp.work(fn)
	return nil
}

func (wp *WorkerPool) maxIdleWorkerDuration() time.Duration {
	if wp.MaxIdleWorkerDuration <= 0 {
		return defaultMaxIdleWorkerDuration
	}
	return wp.MaxIdleWorkerDuration
}

// work runs fn, then takes functions from tasks until it idles out or the pool stops.
func (wp *WorkerPool) work(fn func()) {
	defer func() {
		wp.lock.Lock()
		wp.running--
		wp.lock.Unlock()
	}()
	idle := wp.maxIdleWorkerDuration()
	timer := time.NewTimer(idle)
	defer timer.Stop()
	for {
		fn()
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idle)
		select {
		case fn = <-wp.tasks:
		case <-timer.C:
			return
		case <-wp.stopCh:
			return
		}
	}
}
