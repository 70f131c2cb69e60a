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

	"github.com/rulego/weaver/api/types"
	reflectutil "github.com/rulego/weaver/utils/reflect"
)

var _ types.ConstructorInvocation = (*ConstructorInvocation)(nil)

// ConstructionChain is the interceptor chain of one constructor. Its terminal action
// returns the carried result, so the object is produced by an interceptor such as
// Instantiator.
type ConstructionChain struct {
	ctor         types.ConstructorElement
	interceptors []types.ConstructorInterceptor
}

// NewConstructionChain creates the chain of ctor. Interceptors run in the given order.
func NewConstructionChain(ctor types.ConstructorElement, interceptors ...types.ConstructorInterceptor) *ConstructionChain {
	list := make([]types.ConstructorInterceptor, len(interceptors))
	copy(list, interceptors)
	return &ConstructionChain{ctor: ctor, interceptors: list}
}

// Constructor returns the intercepted constructor.
func (c *ConstructionChain) Constructor() types.ConstructorElement {
	return c.ctor
}

// Instantiate runs the chain for one construction.
func (c *ConstructionChain) Instantiate(ctx context.Context, args ...interface{}) (interface{}, error) {
	return c.Start(ctx, args).Proceed()
}

// Start returns the joinpoint of a new construction, positioned before the first interceptor.
func (c *ConstructionChain) Start(ctx context.Context, args []interface{}) *ConstructorInvocation {
	return &ConstructorInvocation{
		cursor: cursor{op: newOperation(ctx, nil, c.ctor), pos: -1},
		chain:  c,
		args:   args,
		state:  &constructState{},
	}
}

type constructState struct {
	result interface{}
}

// ConstructorInvocation is the joinpoint of one construction at one chain position.
type ConstructorInvocation struct {
	cursor
	chain *ConstructionChain
	args  []interface{}
	state *constructState
}

func (inv *ConstructorInvocation) Constructor() types.ConstructorElement {
	return inv.chain.ctor
}

func (inv *ConstructorInvocation) Arguments() []interface{} {
	return inv.args
}

// PreviousResult returns the carried result: the last value set or returned by an interceptor.
func (inv *ConstructorInvocation) PreviousResult() interface{} {
	return inv.state.result
}

func (inv *ConstructorInvocation) SetPreviousResult(v interface{}) {
	inv.state.result = v
}

// Proceed runs the interceptor after this position and carries its return value,
// or returns the carried result at the end of the chain.
func (inv *ConstructorInvocation) Proceed() (interface{}, error) {
	pos, done := inv.next(len(inv.chain.interceptors))
	if done {
		return inv.state.result, nil
	}
	next := &ConstructorInvocation{cursor: cursor{op: inv.op, pos: pos}, chain: inv.chain, args: inv.args, state: inv.state}
	result, err := inv.chain.interceptors[pos].Construct(next)
	if err != nil {
		return nil, err
	}
	inv.state.result = result
	return result, nil
}

// Instantiator returns the interceptor that calls the real constructor, carries the
// new object and proceeds.
func Instantiator() types.ConstructorInterceptor {
	return types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		ctor := inv.Constructor()
		if !ctor.Func.IsValid() {
			return nil, fmt.Errorf("constructor %s has no function", ctor.Key())
		}
		obj, err := reflectutil.Call(inv.Context(), ctor.Func, inv.Arguments())
		if err != nil {
			return nil, err
		}
		inv.SetPreviousResult(obj)
		return inv.Proceed()
	})
}
