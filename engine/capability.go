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
	"sort"
	"strings"

	"github.com/rulego/weaver/api/types"
)

// Capability is the set of interception roles an object can play.
// It is computed once when the object is registered and never re-tested on dispatch.
type Capability uint16

const (
	// CapAround marks a types.MethodInterceptor.
	CapAround Capability = 1 << iota
	// CapBefore marks a types.BeforeAdvice.
	CapBefore
	// CapAfterReturning marks a types.AfterReturningAdvice.
	CapAfterReturning
	// CapThrows marks a types.ThrowsAdvice.
	CapThrows
	// CapConstruct marks a types.ConstructorInterceptor.
	CapConstruct
	// CapFieldRead marks a types.FieldReadInterceptor.
	CapFieldRead
	// CapFieldWrite marks a types.FieldWriteInterceptor.
	CapFieldWrite
)

var capNames = []struct {
	c    Capability
	name string
}{
	{CapAround, "around"},
	{CapBefore, "before"},
	{CapAfterReturning, "afterReturning"},
	{CapThrows, "throws"},
	{CapConstruct, "construct"},
	{CapFieldRead, "fieldRead"},
	{CapFieldWrite, "fieldWrite"},
}

// Classify returns every capability of x.
func Classify(x interface{}) Capability {
	var c Capability
	if _, ok := x.(types.MethodInterceptor); ok {
		c |= CapAround
	}
	if _, ok := x.(types.BeforeAdvice); ok {
		c |= CapBefore
	}
	if _, ok := x.(types.AfterReturningAdvice); ok {
		c |= CapAfterReturning
	}
	if _, ok := x.(types.ThrowsAdvice); ok {
		c |= CapThrows
	}
	if _, ok := x.(types.ConstructorInterceptor); ok {
		c |= CapConstruct
	}
	if _, ok := x.(types.FieldReadInterceptor); ok {
		c |= CapFieldRead
	}
	if _, ok := x.(types.FieldWriteInterceptor); ok {
		c |= CapFieldWrite
	}
	return c
}

// Has reports whether c includes every capability of o.
func (c Capability) Has(o Capability) bool {
	return o != 0 && c&o == o
}

func (c Capability) String() string {
	if c == 0 {
		return "none"
	}
	var names []string
	for _, n := range capNames {
		if c&n.c != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// InterceptorList is an immutable list of interceptors and advice classified by
// capability and sorted by Order, smaller first. Objects without Order keep order 0;
// equal orders keep insertion order. Lists built by NewInterceptorListInOrder keep
// insertion order and ignore Order.
type InterceptorList struct {
	entries        []entry
	inOrder        bool
	caps           Capability
	around         []types.MethodInterceptor
	before         []types.BeforeAdvice
	afterReturning []types.AfterReturningAdvice
	throws         []types.ThrowsAdvice
	construct      []types.ConstructorInterceptor
	fieldRead      []types.FieldReadInterceptor
	fieldWrite     []types.FieldWriteInterceptor
}

type entry struct {
	value interface{}
	caps  Capability
	order int
}

// NewInterceptorList classifies values and returns the sorted list.
func NewInterceptorList(values ...interface{}) *InterceptorList {
	return newInterceptorList(false, values)
}

// NewInterceptorListInOrder classifies values and keeps them in the given order.
// Advice stacks use it so that advice runs in declaration order.
func NewInterceptorListInOrder(values ...interface{}) *InterceptorList {
	return newInterceptorList(true, values)
}

func newInterceptorList(inOrder bool, values []interface{}) *InterceptorList {
	l := &InterceptorList{inOrder: inOrder}
	for _, v := range values {
		if v == nil {
			continue
		}
		e := entry{value: v, caps: Classify(v)}
		if o, ok := v.(types.Orderer); ok {
			e.order = o.Order()
		}
		l.entries = append(l.entries, e)
	}
	if !inOrder {
		sort.SliceStable(l.entries, func(i, j int) bool {
			return l.entries[i].order < l.entries[j].order
		})
	}
	for _, e := range l.entries {
		l.caps |= e.caps
		if e.caps.Has(CapAround) {
			l.around = append(l.around, e.value.(types.MethodInterceptor))
		}
		if e.caps.Has(CapBefore) {
			l.before = append(l.before, e.value.(types.BeforeAdvice))
		}
		if e.caps.Has(CapAfterReturning) {
			l.afterReturning = append(l.afterReturning, e.value.(types.AfterReturningAdvice))
		}
		if e.caps.Has(CapThrows) {
			l.throws = append(l.throws, e.value.(types.ThrowsAdvice))
		}
		if e.caps.Has(CapConstruct) {
			l.construct = append(l.construct, e.value.(types.ConstructorInterceptor))
		}
		if e.caps.Has(CapFieldRead) {
			l.fieldRead = append(l.fieldRead, e.value.(types.FieldReadInterceptor))
		}
		if e.caps.Has(CapFieldWrite) {
			l.fieldWrite = append(l.fieldWrite, e.value.(types.FieldWriteInterceptor))
		}
	}
	return l
}

// Append returns a new list holding the values of l followed by values.
func (l *InterceptorList) Append(values ...interface{}) *InterceptorList {
	all := l.Values()
	return newInterceptorList(l.inOrder, append(all, values...))
}

// Values returns the values in list order.
func (l *InterceptorList) Values() []interface{} {
	values := make([]interface{}, len(l.entries))
	for i, e := range l.entries {
		values[i] = e.value
	}
	return values
}

// Len returns the number of values.
func (l *InterceptorList) Len() int {
	return len(l.entries)
}

// Capabilities returns the union of the capabilities of every value.
func (l *InterceptorList) Capabilities() Capability {
	return l.caps
}

// Method returns the method interceptors.
func (l *InterceptorList) Method() []types.MethodInterceptor {
	return l.around
}

// Before returns the before advice.
func (l *InterceptorList) Before() []types.BeforeAdvice {
	return l.before
}

// AfterReturning returns the after-returning advice.
func (l *InterceptorList) AfterReturning() []types.AfterReturningAdvice {
	return l.afterReturning
}

// Throws returns the throws advice.
func (l *InterceptorList) Throws() []types.ThrowsAdvice {
	return l.throws
}

// Constructor returns the construction interceptors.
func (l *InterceptorList) Constructor() []types.ConstructorInterceptor {
	return l.construct
}

// FieldRead returns the field read interceptors.
func (l *InterceptorList) FieldRead() []types.FieldReadInterceptor {
	return l.fieldRead
}

// FieldWrite returns the field write interceptors.
func (l *InterceptorList) FieldWrite() []types.FieldWriteInterceptor {
	return l.fieldWrite
}
