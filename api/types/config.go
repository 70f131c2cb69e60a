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

package types

import (
	"math"

	"github.com/rulego/weaver/utils/pool"
)

// Config defines the configuration shared by stacks, chains and the weaver.
type Config struct {
	// OnDebug is called by the debug interceptor for every intercepted operation.
	OnDebug OnDebugFunc
	// Pool runs fire-and-forget units such as parallel before advice.
	// If not configured, a plain goroutine is started per unit.
	// The default implementation is `pool.WorkerPool`.
	Pool Pool
	// Logger records diagnostics, defaulting to `DefaultLogger()`.
	Logger Logger
	// Provider resolves advice identifiers named by tags.
	Provider Provider
	// Metadata resolves owner metadata for declaring types.
	Metadata MetadataLookup
}

// Go runs task as an unsupervised unit: no handle is retained and nothing is reported back.
// The configured pool is used when present; if it refuses the task, a goroutine is started.
func (c Config) Go(task func()) {
	if c.Pool != nil {
		if err := c.Pool.Submit(task); err == nil {
			return
		} else if c.Logger != nil {
			c.Logger.Printf("pool submit error:%s, falling back to goroutine", err)
		}
	}
	go task()
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		Logger: DefaultLogger(),
	}
	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}

// DefaultPool provides a default coroutine pool.
func DefaultPool() Pool {
	wp := &pool.WorkerPool{MaxWorkersCount: math.MaxInt32}
	wp.Start()
	return wp
}
