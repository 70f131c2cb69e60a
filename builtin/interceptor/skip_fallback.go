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
	"sync"
	"sync/atomic"
	"time"

	"github.com/rulego/weaver/api/types"
)

// ErrFallback is returned for a call skipped by SkipFallback.
var ErrFallback = errors.New("skip fallback error")

var _ types.MethodInterceptor = (*SkipFallback)(nil)

// SkipFallback stops calling a method after ErrorCountLimit errors and returns
// ErrFallback instead, until LimitDuration has passed since the last error.
// Errors are counted per method.
//
// SkipFallback 方法失败次数达到 ErrorCountLimit 后，在 LimitDuration 时间内跳过调用并返回 ErrFallback。
type SkipFallback struct {
	// ErrorCountLimit is the number of errors that opens the fallback. Default 3.
	ErrorCountLimit int64
	// LimitDuration is the cool-down after the last error. Default 10s.
	LimitDuration time.Duration
	// errors caches *methodErrors by element key
	errors sync.Map
	lock   sync.Mutex
}

type methodErrors struct {
	errorCount    int64
	lastErrorTime int64
}

// NewSkipFallback creates the interceptor, applying the defaults to zero values.
func NewSkipFallback(errorCountLimit int64, limitDuration time.Duration) *SkipFallback {
	if errorCountLimit == 0 {
		errorCountLimit = 3
	}
	if limitDuration == 0 {
		limitDuration = time.Second * 10
	}
	return &SkipFallback{ErrorCountLimit: errorCountLimit, LimitDuration: limitDuration}
}

func (a *SkipFallback) Order() int {
	return 10
}

func (a *SkipFallback) Invoke(inv types.MethodInvocation) (interface{}, error) {
	key := inv.StaticPart().Key()
	if e, ok := a.get(key); ok && atomic.LoadInt64(&e.errorCount) >= a.ErrorCountLimit {
		if atomic.LoadInt64(&e.lastErrorTime)+a.LimitDuration.Milliseconds() < time.Now().UnixMilli() {
			a.errors.Delete(key)
		} else {
			return nil, ErrFallback
		}
	}
	result, err := inv.Proceed()
	if err != nil {
		a.record(key)
	}
	return result, err
}

// Reset clears the error counters of the method with key.
func (a *SkipFallback) Reset(key types.ElementKey) {
	a.errors.Delete(key)
}

func (a *SkipFallback) get(key types.ElementKey) (*methodErrors, bool) {
	if v, ok := a.errors.Load(key); ok {
		return v.(*methodErrors), true
	}
	return nil, false
}

func (a *SkipFallback) record(key types.ElementKey) {
	e, ok := a.get(key)
	if !ok {
		a.lock.Lock()
		if e, ok = a.get(key); !ok {
			a.errors.Store(key, &methodErrors{errorCount: 1, lastErrorTime: time.Now().UnixMilli()})
			a.lock.Unlock()
			return
		}
		a.lock.Unlock()
	}
	atomic.AddInt64(&e.errorCount, 1)
	atomic.StoreInt64(&e.lastErrorTime, time.Now().UnixMilli())
}
