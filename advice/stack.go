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

package advice

import (
	"sync"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
)

// Reloader is implemented by every stack.
type Reloader interface {
	Reload() error
}

// stack holds the resolved advice list shared by all calls through a stack.
type stack struct {
	config   types.Config
	ref      Reference
	want     engine.Capability
	validate func(list *engine.InterceptorList) error
	// reloading serializes resolution
	reloading sync.Mutex
	list      *engine.InterceptorList
	// RWMutex guards list
	sync.RWMutex
}

func newStack(config types.Config, ref Reference, want engine.Capability, validate func(*engine.InterceptorList) error) (*stack, error) {
	s := &stack{config: config, ref: ref, want: want, validate: validate, list: engine.NewInterceptorListInOrder()}
	if !ref.RuntimeLoading {
		if err := s.Reload(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Reference returns the reference the stack resolves.
func (s *stack) Reference() Reference {
	return s.ref
}

// Reload resolves the reference again and replaces the advice list.
// Readers observe either the previous list or the new one. On error the previous list is kept.
func (s *stack) Reload() error {
	s.reloading.Lock()
	defer s.reloading.Unlock()
	list, err := Resolver{Provider: s.config.Provider}.Resolve(s.ref, s.want)
	if err != nil {
		return err
	}
	if s.validate != nil {
		if err := s.validate(list); err != nil {
			return err
		}
	}
	s.Lock()
	s.list = list
	s.Unlock()
	return nil
}

// current returns the advice list for one call, resolving it first in runtime loading mode.
func (s *stack) current() (*engine.InterceptorList, error) {
	if s.ref.RuntimeLoading {
		if err := s.Reload(); err != nil {
			return nil, err
		}
	}
	s.RLock()
	defer s.RUnlock()
	return s.list, nil
}

func (s *stack) Printf(format string, v ...interface{}) {
	if s.config.Logger != nil {
		s.config.Logger.Printf(format, v...)
	}
}

// chain drives n advice with the cursor pattern of the engine chains: Proceed on the
// continuation at pos runs step pos+1, and done once the advice is exhausted.
type chain struct {
	n    int
	step func(pos int, next types.Continuation) error
	done func() error
}

func (c *chain) start() continuation {
	return continuation{c: c, pos: -1}
}

func (c *chain) run() error {
	return c.start().Proceed()
}

type continuation struct {
	c   *chain
	pos int
}

func (k continuation) Index() int {
	return k.pos
}

func (k continuation) Proceed() error {
	pos := k.pos + 1
	if pos >= k.c.n {
		if k.c.done == nil {
			return nil
		}
		return k.c.done()
	}
	return k.c.step(pos, continuation{c: k.c, pos: pos})
}
