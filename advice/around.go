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
	"fmt"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
)

var _ types.MethodInterceptor = (*AroundStack)(nil)

// AroundStack delegates the call to at most one around interceptor. The delegate
// replaces the rest of the chain and reaches it only through inv.Proceed.
// Without a delegate the call proceeds unchanged.
type AroundStack struct {
	*stack
}

// NewAroundStack creates the stack of ref. More than one resolved delegate fails
// with types.ErrAmbiguousAroundAdvice.
func NewAroundStack(config types.Config, ref Reference) (*AroundStack, error) {
	s, err := newStack(config, ref, engine.CapAround, func(list *engine.InterceptorList) error {
		if n := len(list.Method()); n > 1 {
			return fmt.Errorf("%w: %s resolved %d delegates", types.ErrAmbiguousAroundAdvice, ref.Tag, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &AroundStack{stack: s}, nil
}

// Delegate returns the current delegate, or nil.
func (s *AroundStack) Delegate() types.MethodInterceptor {
	s.RLock()
	defer s.RUnlock()
	if m := s.list.Method(); len(m) > 0 {
		return m[0]
	}
	return nil
}

func (s *AroundStack) Invoke(inv types.MethodInvocation) (interface{}, error) {
	list, err := s.current()
	if err != nil {
		return nil, err
	}
	if m := list.Method(); len(m) > 0 {
		return m[0].Invoke(inv)
	}
	return inv.Proceed()
}
