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

package interceptor

import (
	"errors"
	"sync/atomic"

	"github.com/rulego/weaver/api/types"
)

// ErrConcurrencyLimitReached is returned when the concurrency limit is reached.
var ErrConcurrencyLimitReached = errors.New("concurrency limit reached")

var _ types.MethodInterceptor = (*ConcurrencyLimiter)(nil)

// ConcurrencyLimiter limits the number of calls in flight through it.
// A call over the limit is rejected with ErrConcurrencyLimitReached without running.
//
// ConcurrencyLimiter 限制经过它的并发调用数量，超过限制的调用返回 ErrConcurrencyLimitReached。
type ConcurrencyLimiter struct {
	Max          int64 // Maximum number of concurrent calls  最大并发调用数量
	currentCount int64 // Current number of concurrent calls  当前并发调用数量
}

// NewConcurrencyLimiter creates a limiter allowing max concurrent calls.
func NewConcurrencyLimiter(max int) *ConcurrencyLimiter {
	return &ConcurrencyLimiter{
		Max: int64(max),
	}
}

// Order returns the execution order of this interceptor. The limiter runs first, with order 10.
func (a *ConcurrencyLimiter) Order() int {
	return 10
}

func (a *ConcurrencyLimiter) Invoke(inv types.MethodInvocation) (interface{}, error) {
	// 使用原子操作确保检查和增加操作的原子性
	for {
		current := atomic.LoadInt64(&a.currentCount)
		if current >= a.Max {
			return nil, ErrConcurrencyLimitReached
		}
		if atomic.CompareAndSwapInt64(&a.currentCount, current, current+1) {
			break
		}
		// 如果CAS失败，说明有其他goroutine修改了计数器，重试
	}
	defer atomic.AddInt64(&a.currentCount, -1)
	return inv.Proceed()
}

// Current returns the number of calls in flight.
func (a *ConcurrencyLimiter) Current() int64 {
	return atomic.LoadInt64(&a.currentCount)
}
