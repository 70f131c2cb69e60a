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
	"sort"
	"sync"
	"time"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/api/types/metrics"
)

var _ types.MethodInterceptor = (*Metrics)(nil)

// Metrics counts the calls through it, in total and per method.
type Metrics struct {
	total   *metrics.InvocationMetrics
	methods sync.Map
}

// NewMetrics creates the interceptor with zero counters.
func NewMetrics() *Metrics {
	return &Metrics{total: metrics.NewInvocationMetrics()}
}

func (a *Metrics) Order() int {
	return 20
}

func (a *Metrics) Invoke(inv types.MethodInvocation) (interface{}, error) {
	m := a.method(inv.StaticPart().Key().String())
	start := time.Now()
	a.total.Begin()
	m.Begin()
	result, err := inv.Proceed()
	m.End(start, err)
	a.total.End(start, err)
	return result, err
}

func (a *Metrics) method(key string) *metrics.InvocationMetrics {
	if v, ok := a.methods.Load(key); ok {
		return v.(*metrics.InvocationMetrics)
	}
	v, _ := a.methods.LoadOrStore(key, metrics.NewInvocationMetrics())
	return v.(*metrics.InvocationMetrics)
}

// GetMetrics 返回当前的总指标
func (a *Metrics) GetMetrics() metrics.InvocationMetrics {
	return a.total.Get()
}

// MethodMetrics returns the metrics of every method called so far, by element key.
func (a *Metrics) MethodMetrics() map[string]metrics.InvocationMetrics {
	out := make(map[string]metrics.InvocationMetrics)
	a.methods.Range(func(k, v interface{}) bool {
		out[k.(string)] = v.(*metrics.InvocationMetrics).Get()
		return true
	})
	return out
}

// Methods returns the keys of the methods called so far, sorted.
func (a *Metrics) Methods() []string {
	var keys []string
	a.methods.Range(func(k, v interface{}) bool {
		keys = append(keys, k.(string))
		return true
	})
	sort.Strings(keys)
	return keys
}

// Reset resets all counters.
func (a *Metrics) Reset() {
	a.total.Reset()
	a.methods.Range(func(k, v interface{}) bool {
		a.methods.Delete(k)
		return true
	})
}
