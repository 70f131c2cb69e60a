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
	"sync"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/pointcut"
)

// FieldWeaver runs the write chains of the fields of one owner type that a field
// filter selects, e.g. to inject dependencies. Passes over the same target are
// serialized with every other pass and FieldChain.Write on that target, whichever
// weaver runs them; passes over different targets run concurrently.
type FieldWeaver struct {
	owner  types.OwnerMetadata
	chains []*FieldChain
}

// NewFieldWeaver selects the fields of owner matched by filter and builds one chain
// per field. A nil filter selects every field.
func NewFieldWeaver(owner types.OwnerMetadata, filter types.Filter, interceptors ...interface{}) *FieldWeaver {
	if filter == nil {
		filter = pointcut.MatchAllFields
	}
	list := NewInterceptorList(interceptors...)
	w := &FieldWeaver{owner: owner}
	for _, e := range owner.Elements(types.KindField) {
		f, ok := e.(types.FieldElement)
		if !ok || !filter.Matches(pointcut.FieldRecord(owner, f)) {
			continue
		}
		w.chains = append(w.chains, NewFieldChainFromList(f, list))
	}
	return w
}

// Fields returns the selected fields in declaration order.
func (w *FieldWeaver) Fields() []types.FieldElement {
	fields := make([]types.FieldElement, len(w.chains))
	for i, c := range w.chains {
		fields[i] = c.field
	}
	return fields
}

// Apply runs the write chain of every selected field on target, proposing the
// current field value. target must be a pointer to the owner type. The first error
// stops the pass.
func (w *FieldWeaver) Apply(ctx context.Context, target interface{}) error {
	if v := reflect.ValueOf(target); v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("%w: target %T must be a non-nil pointer", types.ErrNotSettable, target)
	}
	unlock := fieldTargets.lock(target)
	defer unlock()
	for _, c := range w.chains {
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		current, err := c.field.Get(target)
		if err != nil {
			return err
		}
		if _, err := c.write(ctx, target, current); err != nil {
			return fmt.Errorf("field %s: %w", c.field.Key(), err)
		}
	}
	return nil
}

// fieldTargets serializes field writes per target across all chains and weavers.
var fieldTargets targetLocks

// targetLocks hands out one mutex per live pointer target. Other targets are not
// locked since writes to them fail.
type targetLocks struct {
	mu    sync.Mutex
	locks map[interface{}]*targetLock
}

type targetLock struct {
	sync.Mutex
	refs int
}

func (l *targetLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func (l *targetLocks) lock(target interface{}) func() {
	if v := reflect.ValueOf(target); v.Kind() != reflect.Ptr || v.IsNil() {
		return func() {}
	}
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[interface{}]*targetLock)
	}
	tl, ok := l.locks[target]
	if !ok {
		tl = &targetLock{}
		l.locks[target] = tl
	}
	tl.refs++
	l.mu.Unlock()

	tl.Lock()
	return func() {
		tl.Unlock()
		l.mu.Lock()
		tl.refs--
		if tl.refs == 0 {
			delete(l.locks, target)
		}
		l.mu.Unlock()
	}
}
