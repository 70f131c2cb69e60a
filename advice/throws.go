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
	"errors"
	"reflect"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
)

var _ types.MethodInterceptor = (*ThrowsStack)(nil)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ThrowsStack runs throws advice when the rest of the chain returned an error.
// Only advice whose ErrorType matches the error, as decided by errors.As, takes part;
// matching advice runs in order. A non-nil error returned by the advice chain
// replaces the propagated error.
type ThrowsStack struct {
	*stack
}

// NewThrowsStack creates the stack of ref.
func NewThrowsStack(config types.Config, ref Reference) (*ThrowsStack, error) {
	s, err := newStack(config, ref, engine.CapThrows, nil)
	if err != nil {
		return nil, err
	}
	return &ThrowsStack{stack: s}, nil
}

func (s *ThrowsStack) Invoke(inv types.MethodInvocation) (interface{}, error) {
	result, err := inv.Proceed()
	if err == nil {
		return result, nil
	}
	list, rerr := s.current()
	if rerr != nil {
		return result, errors.Join(err, rerr)
	}
	var matched []types.ThrowsAdvice
	for _, a := range list.Throws() {
		if Matches(err, a.ErrorType()) {
			matched = append(matched, a)
		}
	}
	c := &chain{
		n: len(matched),
		step: func(pos int, next types.Continuation) error {
			return matched[pos].AfterThrowing(next, inv, err)
		},
		done: func() error { return err },
	}
	if out := c.run(); out != nil {
		return result, out
	}
	return result, err
}

// Matches reports whether err, or an error in its tree, is assignable to t.
// t is either an interface type or a concrete type implementing error.
func Matches(err error, t reflect.Type) bool {
	if err == nil || t == nil {
		return false
	}
	if t.Kind() != reflect.Interface && !t.Implements(errorType) {
		return false
	}
	return errors.As(err, reflect.New(t).Interface())
}

// OnError builds throws advice for errors of type E. fn receives the matched error;
// a non-nil return replaces the propagated error and ends the chain, nil lets the
// remaining advice run.
func OnError[E error](fn func(inv types.MethodInvocation, err E) error) types.ThrowsAdvice {
	return typedThrows[E]{fn: fn}
}

type typedThrows[E error] struct {
	fn func(inv types.MethodInvocation, err E) error
}

func (t typedThrows[E]) ErrorType() reflect.Type {
	return reflect.TypeOf((*E)(nil)).Elem()
}

func (t typedThrows[E]) AfterThrowing(next types.Continuation, inv types.MethodInvocation, err error) error {
	var target E
	if errors.As(err, &target) {
		if out := t.fn(inv, target); out != nil {
			return out
		}
	}
	return next.Proceed()
}
