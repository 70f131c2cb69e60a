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

package pointcut

import (
	"errors"
	"fmt"

	"github.com/rulego/weaver/api/types"
)

// ErrFilterKindMismatch is raised when filters of different element kinds are combined
// or a filter is placed in the slot of another kind.
var ErrFilterKindMismatch = errors.New("filter kind mismatch")

// matchAll is the universal filter of one element kind. Every value of one kind is
// equal to every other, so the exported constants are the only meaningful instances.
type matchAll types.ElementKind

// Universal filters. A per-kind universal filter matches every record of its kind
// and nothing else; MatchAll matches every record.
const (
	MatchAllClasses      = matchAll(types.KindType)
	MatchAllConstructors = matchAll(types.KindConstructor)
	MatchAllFields       = matchAll(types.KindField)
	MatchAllMethods      = matchAll(types.KindMethod)
	MatchAllParameters   = matchAll(types.KindParameter)
	MatchAll             = matchAll(types.KindAny)
)

func (m matchAll) Kind() types.ElementKind {
	return types.ElementKind(m)
}

func (m matchAll) Matches(record types.MatchingRecord) bool {
	return types.ElementKind(m) == types.KindAny || record.Kind == types.ElementKind(m)
}

func (m matchAll) IsRuntimeChecked() bool {
	return false
}

func (m matchAll) String() string {
	return "matchAll(" + types.ElementKind(m).String() + ")"
}

// Universal returns the universal filter of kind.
func Universal(kind types.ElementKind) types.Filter {
	return matchAll(kind)
}

// IsUniversal reports whether f is a universal filter.
func IsUniversal(f types.Filter) bool {
	_, ok := f.(matchAll)
	return ok
}

type funcFilter struct {
	kind           types.ElementKind
	fn             func(types.MatchingRecord) bool
	runtimeChecked bool
}

// FilterFunc adapts a predicate to a Filter of kind. Records of another kind never
// reach fn unless kind is KindAny.
func FilterFunc(kind types.ElementKind, fn func(types.MatchingRecord) bool, runtimeChecked bool) types.Filter {
	return &funcFilter{kind: kind, fn: fn, runtimeChecked: runtimeChecked}
}

func (f *funcFilter) Kind() types.ElementKind { return f.kind }

func (f *funcFilter) Matches(record types.MatchingRecord) bool {
	if !accepts(f.kind, record) {
		return false
	}
	return f.fn(record)
}

func (f *funcFilter) IsRuntimeChecked() bool { return f.runtimeChecked }

// accepts reports whether a filter of kind understands record.
func accepts(kind types.ElementKind, record types.MatchingRecord) bool {
	return kind == types.KindAny || kind == record.Kind
}

type composite struct {
	kind     types.ElementKind
	operands []types.Filter
	all      bool
}

// And returns a filter matching when every operand matches.
// Operands must share one kind; generic operands fit any kind.
func And(filters ...types.Filter) types.Filter {
	return &composite{kind: commonKind(filters), operands: filters, all: true}
}

// Or returns a filter matching when at least one operand matches.
func Or(filters ...types.Filter) types.Filter {
	return &composite{kind: commonKind(filters), operands: filters}
}

func (c *composite) Kind() types.ElementKind { return c.kind }

func (c *composite) Matches(record types.MatchingRecord) bool {
	if !accepts(c.kind, record) {
		return false
	}
	for _, f := range c.operands {
		if f.Matches(record) != c.all {
			return !c.all
		}
	}
	return c.all
}

func (c *composite) IsRuntimeChecked() bool {
	for _, f := range c.operands {
		if f.IsRuntimeChecked() {
			return true
		}
	}
	return false
}

type negation struct {
	f types.Filter
}

// Not returns a filter matching records of f's kind that f rejects.
func Not(f types.Filter) types.Filter {
	return negation{f: f}
}

func (n negation) Kind() types.ElementKind { return n.f.Kind() }

func (n negation) Matches(record types.MatchingRecord) bool {
	return accepts(n.f.Kind(), record) && !n.f.Matches(record)
}

func (n negation) IsRuntimeChecked() bool { return n.f.IsRuntimeChecked() }

func commonKind(filters []types.Filter) types.ElementKind {
	kind := types.KindAny
	for _, f := range filters {
		k := f.Kind()
		if k == types.KindAny {
			continue
		}
		if kind != types.KindAny && kind != k {
			panic(fmt.Errorf("%w: cannot combine %s and %s filters", ErrFilterKindMismatch, kind, k))
		}
		kind = k
	}
	return kind
}
