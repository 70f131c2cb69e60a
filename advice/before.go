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
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/utils/runtime"
)

var _ types.MethodInterceptor = (*BeforeStack)(nil)

// BeforeStack runs before advice ahead of the rest of the method chain.
//
// In sequential mode the advice runs in order through a continuation; an advice that
// does not call next.Proceed skips the remaining advice, and an error aborts the call.
// The method call itself always follows a successful sequence.
//
// In parallel mode every advice is submitted to the configured pool as an unsupervised
// unit and the call proceeds at once. Errors and panics of these units are only logged.
type BeforeStack struct {
	*stack
}

// NewBeforeStack creates the stack of ref.
func NewBeforeStack(config types.Config, ref Reference) (*BeforeStack, error) {
	s, err := newStack(config, ref, engine.CapBefore, nil)
	if err != nil {
		return nil, err
	}
	return &BeforeStack{stack: s}, nil
}

func (s *BeforeStack) Invoke(inv types.MethodInvocation) (interface{}, error) {
	list, err := s.current()
	if err != nil {
		return nil, err
	}
	before := list.Before()
	if s.ref.Parallel {
		for _, a := range before {
			s.detach(a, inv)
		}
	} else {
		c := &chain{n: len(before), step: func(pos int, next types.Continuation) error {
			return before[pos].Before(next, inv)
		}}
		if err := c.run(); err != nil {
			return nil, err
		}
	}
	return inv.Proceed()
}

// detach runs a on its own unit. Its continuation ends immediately.
func (s *BeforeStack) detach(a types.BeforeAdvice, inv types.MethodInvocation) {
	s.config.Go(func() {
		defer func() {
			if e := recover(); e != nil {
				s.Printf("before advice %T panic: %v", a, runtime.Recovered(e))
			}
		}()
		if err := a.Before((&chain{}).start(), inv); err != nil {
			s.Printf("before advice %T of %s failed: %v", a, inv.StaticPart().Key(), err)
		}
	})
}
