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
	"fmt"

	"github.com/rulego/weaver/api/types"
)

// Pointcut bundles one filter per element kind plus a generic filter for records
// of no known kind. Unset filters fall back to the universal filter of their kind,
// so the zero Pointcut matches everything.
type Pointcut struct {
	class       types.Filter
	constructor types.Filter
	field       types.Filter
	method      types.Filter
	parameter   types.Filter
	generic     types.Filter
}

// All is the pointcut matching every element.
var All = Pointcut{}

func (p Pointcut) ClassFilter() types.Filter {
	return orUniversal(p.class, MatchAllClasses)
}

func (p Pointcut) ConstructorFilter() types.Filter {
	return orUniversal(p.constructor, MatchAllConstructors)
}

func (p Pointcut) FieldFilter() types.Filter {
	return orUniversal(p.field, MatchAllFields)
}

func (p Pointcut) MethodFilter() types.Filter {
	return orUniversal(p.method, MatchAllMethods)
}

func (p Pointcut) ParameterFilter() types.Filter {
	return orUniversal(p.parameter, MatchAllParameters)
}

func (p Pointcut) GenericFilter() types.Filter {
	return orUniversal(p.generic, MatchAll)
}

// Filter returns the filter that decides records of kind.
func (p Pointcut) Filter(kind types.ElementKind) types.Filter {
	switch kind {
	case types.KindType:
		return p.ClassFilter()
	case types.KindConstructor:
		return p.ConstructorFilter()
	case types.KindField:
		return p.FieldFilter()
	case types.KindMethod:
		return p.MethodFilter()
	case types.KindParameter:
		return p.ParameterFilter()
	default:
		return p.GenericFilter()
	}
}

// Matches dispatches record to the filter of its kind.
func (p Pointcut) Matches(record types.MatchingRecord) bool {
	return p.Filter(record.Kind).Matches(record)
}

// IsRuntimeChecked reports whether the filter of kind must be re-evaluated per call.
func (p Pointcut) IsRuntimeChecked(kind types.ElementKind) bool {
	return p.Filter(kind).IsRuntimeChecked()
}

// IsUniversal reports whether every filter of the pointcut is universal.
func (p Pointcut) IsUniversal() bool {
	for _, f := range []types.Filter{p.class, p.constructor, p.field, p.method, p.parameter, p.generic} {
		if f != nil && !IsUniversal(f) {
			return false
		}
	}
	return true
}

func orUniversal(f types.Filter, universal types.Filter) types.Filter {
	if f == nil {
		return universal
	}
	return f
}

// Builder assembles a Pointcut.
//
//	pc, err := pointcut.NewBuilder().
//		Class(classFilter).
//		Method(methodFilter).
//		Build()
type Builder struct {
	p   Pointcut
	err error
}

// NewBuilder returns a builder whose filters are all universal.
func NewBuilder() *Builder {
	return &Builder{}
}

// Class sets the type filter.
func (b *Builder) Class(f types.Filter) *Builder {
	b.p.class = b.check(types.KindType, f)
	return b
}

// Constructor sets the constructor filter.
func (b *Builder) Constructor(f types.Filter) *Builder {
	b.p.constructor = b.check(types.KindConstructor, f)
	return b
}

// Field sets the field filter.
func (b *Builder) Field(f types.Filter) *Builder {
	b.p.field = b.check(types.KindField, f)
	return b
}

// Method sets the method filter.
func (b *Builder) Method(f types.Filter) *Builder {
	b.p.method = b.check(types.KindMethod, f)
	return b
}

// Parameter sets the parameter filter.
func (b *Builder) Parameter(f types.Filter) *Builder {
	b.p.parameter = b.check(types.KindParameter, f)
	return b
}

// Generic sets the filter for records of no known kind.
func (b *Builder) Generic(f types.Filter) *Builder {
	b.p.generic = b.check(types.KindAny, f)
	return b
}

// Build returns the pointcut, or the first slot/kind mismatch.
func (b *Builder) Build() (Pointcut, error) {
	if b.err != nil {
		return Pointcut{}, b.err
	}
	return b.p, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() Pointcut {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}

func (b *Builder) check(slot types.ElementKind, f types.Filter) types.Filter {
	if f == nil {
		return nil
	}
	if k := f.Kind(); k != types.KindAny && k != slot && b.err == nil {
		b.err = fmt.Errorf("%w: %s filter in %s slot", ErrFilterKindMismatch, k, slot)
	}
	return f
}
