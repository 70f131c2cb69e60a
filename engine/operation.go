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

// Package engine implements the interceptor chains: method calls, object construction
// and field access. A chain is an immutable template; every Invoke, Instantiate, Read
// or Write starts one logical operation. Each Proceed builds the joinpoint of the next
// position instead of moving a shared index, so the position of a joinpoint never
// changes while the interceptors below it run, and one template serves concurrent
// operations without locking.
//
// Package engine 拦截器链引擎：方法调用、对象构造以及字段访问。
// 链是不可变模板，每次调用开始一个逻辑操作；Proceed 生成下一位置的连接点而不是修改共享下标，
// 因此同一个链模板可以被并发复用。
//
//	chain := engine.NewMethodChain(method, logging, timing)
//	result, err := chain.Invoke(ctx, service, "order-1", 3)
package engine

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/rulego/weaver/api/types"
)

// operation holds what every joinpoint of one logical operation shares.
type operation struct {
	id      string
	ctx     context.Context
	this    interface{}
	element types.Element
}

func newOperation(ctx context.Context, this interface{}, element types.Element) *operation {
	if ctx == nil {
		ctx = context.Background()
	}
	uid, _ := uuid.NewV4()
	return &operation{id: uid.String(), ctx: ctx, this: this, element: element}
}

// cursor is the position-dependent half of a joinpoint.
type cursor struct {
	op  *operation
	pos int
}

func (c cursor) ID() string {
	return c.op.id
}

func (c cursor) Context() context.Context {
	return c.op.ctx
}

func (c cursor) Index() int {
	return c.pos
}

func (c cursor) This() interface{} {
	return c.op.this
}

func (c cursor) StaticPart() types.Element {
	return c.op.element
}

// next returns the successor position and whether it is past the last interceptor.
func (c cursor) next(n int) (int, bool) {
	pos := c.pos + 1
	return pos, pos >= n
}
