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

package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rulego/weaver/api/types"
	reflectutil "github.com/rulego/weaver/utils/reflect"
)

var _ types.MethodInvocation = (*MethodInvocation)(nil)

// MethodChain is the interceptor chain of one method.
type MethodChain struct {
	method       types.MethodElement
	interceptors []types.MethodInterceptor
	invoker      types.Invoker
}

// NewMethodChain creates the chain of method. Interceptors run in the given order.
func NewMethodChain(method types.MethodElement, interceptors ...types.MethodInterceptor) *MethodChain {
	list := make([]types.MethodInterceptor, len(interceptors))
	copy(list, interceptors)
	return &MethodChain{method: method, interceptors: list}
}

// WithInvoker returns a copy of the chain whose terminal action is invoker
// instead of the reflective call of the method.
func (c *MethodChain) WithInvoker(invoker types.Invoker) *MethodChain {
	cp := *c
	cp.invoker = invoker
	return &cp
}

// Method returns the intercepted method.
func (c *MethodChain) Method() types.MethodElement {
	return c.method
}

// Len returns the number of interceptors.
func (c *MethodChain) Len() int {
	return len(c.interceptors)
}

// Interceptors returns a copy of the interceptors in chain order.
func (c *MethodChain) Interceptors() []types.MethodInterceptor {
	out := make([]types.MethodInterceptor, len(c.interceptors))
	copy(out, c.interceptors)
	return out
}

// Invoke runs the chain for one call of the method on receiver.
func (c *MethodChain) Invoke(ctx context.Context, receiver interface{}, args ...interface{}) (interface{}, error) {
	return c.Start(ctx, receiver, args).Proceed()
}

// Start returns the joinpoint of a new call, positioned before the first interceptor.
func (c *MethodChain) Start(ctx context.Context, receiver interface{}, args []interface{}) *MethodInvocation {
	return &MethodInvocation{
		cursor: cursor{op: newOperation(ctx, receiver, c.method), pos: -1},
		chain:  c,
		args:   args,
	}
}

func (c *MethodChain) terminal(inv *MethodInvocation) (interface{}, error) {
	if c.invoker != nil {
		return c.invoker(inv.Context(), inv.This(), inv.args)
	}
	return CallMethod(inv.Context(), c.method, inv.This(), inv.args)
}

// MethodInvocation is the joinpoint of one method call at one chain position.
type MethodInvocation struct {
	cursor
	chain *MethodChain
	args  []interface{}
}

func (inv *MethodInvocation) Method() types.MethodElement {
	return inv.chain.method
}

func (inv *MethodInvocation) Arguments() []interface{} {
	return inv.args
}

// Proceed runs the interceptor after this position, or calls the method at the end of the chain.
func (inv *MethodInvocation) Proceed() (interface{}, error) {
	pos, done := inv.next(len(inv.chain.interceptors))
	if done {
		return inv.chain.terminal(inv)
	}
	next := &MethodInvocation{cursor: cursor{op: inv.op, pos: pos}, chain: inv.chain, args: inv.args}
	return inv.chain.interceptors[pos].Invoke(next)
}

// CallMethod calls method on receiver through reflection. A trailing error result
// is returned as the error.
func CallMethod(ctx context.Context, method types.MethodElement, receiver interface{}, args []interface{}) (interface{}, error) {
	rv := reflect.ValueOf(receiver)
	if !rv.IsValid() {
		return nil, fmt.Errorf("%w: nil receiver for %s", types.ErrMethodNotFound, method.Key())
	}
	fn := rv.MethodByName(method.Name())
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: %s on %T", types.ErrMethodNotFound, method.Key(), receiver)
	}
	return reflectutil.Call(ctx, fn, args)
}
