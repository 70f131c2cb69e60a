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

package metrics

import (
	"sync/atomic"
	"time"
)

// InvocationMetrics holds counters of intercepted operations.
type InvocationMetrics struct {
	Current int64 // Number of operations currently in flight
	Total   int64 // Total number of operations
	Failed  int64 // Number of operations that returned an error
	Success int64 // Number of operations that returned normally
	// Nanos is the accumulated wall time of completed operations.
	Nanos int64
}

// NewInvocationMetrics creates a new instance of InvocationMetrics.
func NewInvocationMetrics() *InvocationMetrics {
	return &InvocationMetrics{}
}

// Begin records the start of an operation.
func (m *InvocationMetrics) Begin() {
	atomic.AddInt64(&m.Current, 1)
	atomic.AddInt64(&m.Total, 1)
}

// End records the completion of an operation started at start.
func (m *InvocationMetrics) End(start time.Time, err error) {
	atomic.AddInt64(&m.Current, -1)
	atomic.AddInt64(&m.Nanos, int64(time.Since(start)))
	if err != nil {
		atomic.AddInt64(&m.Failed, 1)
	} else {
		atomic.AddInt64(&m.Success, 1)
	}
}

// Get returns a copy of the current metrics.
func (m *InvocationMetrics) Get() InvocationMetrics {
	return InvocationMetrics{
		Current: atomic.LoadInt64(&m.Current),
		Total:   atomic.LoadInt64(&m.Total),
		Failed:  atomic.LoadInt64(&m.Failed),
		Success: atomic.LoadInt64(&m.Success),
		Nanos:   atomic.LoadInt64(&m.Nanos),
	}
}

// Reset resets all metrics to zero.
func (m *InvocationMetrics) Reset() {
	atomic.StoreInt64(&m.Current, 0)
	atomic.StoreInt64(&m.Total, 0)
	atomic.StoreInt64(&m.Failed, 0)
	atomic.StoreInt64(&m.Success, 0)
	atomic.StoreInt64(&m.Nanos, 0)
}
