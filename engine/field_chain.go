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
	"errors"
	"fmt"

	"github.com/rulego/weaver/api/types"
)

var _ types.FieldAccess = (*FieldAccess)(nil)

// ErrNotWriteAccess is returned by ValueToSet on a read access.
var ErrNotWriteAccess = errors.New("not a write access")

// FieldChain is the interceptor chain of one field. Read accesses run the read
// interceptors, write accesses the write interceptors.
type FieldChain struct {
	field   types.FieldElement
	readers []types.FieldReadInterceptor
	writers []types.FieldWriteInterceptor
}

// NewFieldChain creates the chain of field from the field read and write
// interceptors among interceptors, sorted by Order.
func NewFieldChain(field types.FieldElement, interceptors ...interface{}) *FieldChain {
	return NewFieldChainFromList(field, NewInterceptorList(interceptors...))
}

// NewFieldChainFromList creates the chain of field from a classified list.
func NewFieldChainFromList(field types.FieldElement, list *InterceptorList) *FieldChain {
	return &FieldChain{field: field, readers: list.FieldRead(), writers: list.FieldWrite()}
}

// Field returns the intercepted field.
func (c *FieldChain) Field() types.FieldElement {
	return c.field
}

// Read runs the read chain on target and returns its result.
func (c *FieldChain) Read(ctx context.Context, target interface{}) (interface{}, error) {
	return c.start(ctx, target, types.Read, nil).Proceed()
}

// Write runs the write chain on target with the proposed value and commits the
// result of the chain into the field. It returns the committed value.
// Writes to the same target are serialized with FieldWeaver passes, so write
// interceptors must not write fields of the target they are called for.
func (c *FieldChain) Write(ctx context.Context, target interface{}, value interface{}) (interface{}, error) {
	unlock := fieldTargets.lock(target)
	defer unlock()
	return c.write(ctx, target, value)
}

func (c *FieldChain) write(ctx context.Context, target interface{}, value interface{}) (interface{}, error) {
	result, err := c.start(ctx, target, types.Write, value).Proceed()
	if err != nil {
		return nil, err
	}
	if err := c.field.Set(target, result); err != nil {
		return nil, err
	}
	return result, nil
}

// Access dispatches to Read or Write. value is ignored for reads.
func (c *FieldChain) Access(ctx context.Context, target interface{}, kind types.AccessKind, value interface{}) (interface{}, error) {
	if kind == types.Write {
		return c.Write(ctx, target, value)
	}
	return c.Read(ctx, target)
}

// AccessorKind derives the access kind of a call through an accessor method:
// GetX(), IsX() or X() read and SetX(v) writes.
func AccessorKind(accessor types.MethodElement) (types.AccessKind, error) {
	kind, ok := types.AccessKindOf(accessor.Name(), accessor.NumIn(), accessor.NumOut())
	if !ok {
		return kind, fmt.Errorf("%s is not an accessor", accessor.Key())
	}
	return kind, nil
}

func (c *FieldChain) start(ctx context.Context, target interface{}, kind types.AccessKind, value interface{}) *FieldAccess {
	return &FieldAccess{
		cursor:   cursor{op: newOperation(ctx, target, c.field), pos: -1},
		chain:    c,
		kind:     kind,
		proposed: value,
	}
}

// FieldAccess is the joinpoint of one field access at one chain position.
type FieldAccess struct {
	cursor
	chain    *FieldChain
	kind     types.AccessKind
	proposed interface{}
}

func (fa *FieldAccess) Field() types.FieldElement {
	return fa.chain.field
}

func (fa *FieldAccess) AccessKind() types.AccessKind {
	return fa.kind
}

// CurrentValue reads the field without interception.
func (fa *FieldAccess) CurrentValue() (interface{}, error) {
	return fa.chain.field.Get(fa.This())
}

// ValueToSet runs the rest of the write chain; its result is the value to commit.
func (fa *FieldAccess) ValueToSet() (interface{}, error) {
	if fa.kind != types.Write {
		return nil, fmt.Errorf("%w: %s", ErrNotWriteAccess, fa.chain.field.Key())
	}
	return fa.Proceed()
}

// Proceed runs the interceptor after this position. At the end of the chain a read
// returns the field value and a write returns the proposed value.
func (fa *FieldAccess) Proceed() (interface{}, error) {
	if fa.kind == types.Write {
		pos, done := fa.next(len(fa.chain.writers))
		if done {
			return fa.proposed, nil
		}
		return fa.chain.writers[pos].Set(fa.at(pos))
	}
	pos, done := fa.next(len(fa.chain.readers))
	if done {
		return fa.CurrentValue()
	}
	return fa.chain.readers[pos].Get(fa.at(pos))
}

func (fa *FieldAccess) at(pos int) *FieldAccess {
	return &FieldAccess{cursor: cursor{op: fa.op, pos: pos}, chain: fa.chain, kind: fa.kind, proposed: fa.proposed}
}
