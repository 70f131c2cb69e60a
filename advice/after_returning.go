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
)

var _ types.MethodInterceptor = (*AfterReturningStack)(nil)

// AfterReturningStack runs after returning advice once the rest of the chain returned
// without error. Advice observes the result and cannot replace it; an advice error is
// returned to the caller.
type AfterReturningStack struct {
	*stack
}

// NewAfterReturningStack creates the stack of ref.
func NewAfterReturningStack(config types.Config, ref Reference) (*AfterReturningStack, error) {
	s, err := newStack(config, ref, engine.CapAfterReturning, nil)
	if err != nil {
		return nil, err
	}
	return &AfterReturningStack{stack: s}, nil
}

func (s *AfterReturningStack) Invoke(inv types.MethodInvocation) (interface{}, error) {
	result, err := inv.Proceed()
	if err != nil {
		return result, err
	}
	list, err := s.current()
	if err != nil {
		return nil, err
	}
	after := list.AfterReturning()
	c := &chain{n: len(after), step: func(pos int, next types.Continuation) error {
		return after[pos].AfterReturning(next, result, inv)
	}}
	if err := c.run(); err != nil {
		return nil, err
	}
	return result, nil
}
