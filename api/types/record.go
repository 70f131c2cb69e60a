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

package types

import "fmt"

// MatchingRecord describes one candidate element for pointcut evaluation.
// It is created fresh per evaluation and never mutated afterwards.
// MatchingRecord 切入点匹配记录，每次匹配新建，不可修改
type MatchingRecord struct {
	Kind ElementKind
	// Element is the type, constructor, field or method. For a parameter it is the
	// enclosing method or constructor.
	Element Element
	// ParameterIndex is only meaningful when Kind is KindParameter.
	ParameterIndex int
	// Owner is the metadata of the element's declaring type. It may be nil when the
	// declaring type is not described.
	Owner OwnerMetadata
	// Args holds the live invocation arguments when a runtime-checked filter is
	// re-evaluated at call time. It is nil at weave time.
	Args []interface{}
}

// Live reports whether the record carries live invocation arguments.
func (r MatchingRecord) Live() bool {
	return r.Args != nil
}

// WithArgs returns a copy of the record carrying live arguments.
func (r MatchingRecord) WithArgs(args []interface{}) MatchingRecord {
	if args == nil {
		args = []interface{}{}
	}
	r.Args = args
	return r
}

// TypeElement returns the element of a type record.
func (r MatchingRecord) TypeElement() (TypeElement, error) {
	e, ok := r.Element.(TypeElement)
	if r.Kind != KindType || !ok {
		return TypeElement{}, r.mismatch(KindType)
	}
	return e, nil
}

// Field returns the element of a field record.
func (r MatchingRecord) Field() (FieldElement, error) {
	e, ok := r.Element.(FieldElement)
	if r.Kind != KindField || !ok {
		return FieldElement{}, r.mismatch(KindField)
	}
	return e, nil
}

// Method returns the element of a method record, or the enclosing method of a parameter record.
func (r MatchingRecord) Method() (MethodElement, error) {
	e, ok := r.Element.(MethodElement)
	if (r.Kind != KindMethod && r.Kind != KindParameter) || !ok {
		return MethodElement{}, r.mismatch(KindMethod)
	}
	return e, nil
}

// Constructor returns the element of a constructor record, or the enclosing constructor of a parameter record.
func (r MatchingRecord) Constructor() (ConstructorElement, error) {
	e, ok := r.Element.(ConstructorElement)
	if (r.Kind != KindConstructor && r.Kind != KindParameter) || !ok {
		return ConstructorElement{}, r.mismatch(KindConstructor)
	}
	return e, nil
}

func (r MatchingRecord) mismatch(want ElementKind) error {
	return fmt.Errorf("%w: record is %s, not %s", ErrRecordKindMismatch, r.Kind, want)
}

func (r MatchingRecord) String() string {
	if r.Element == nil {
		return r.Kind.String() + "<nil>"
	}
	if r.Kind == KindParameter {
		return fmt.Sprintf("%s[%d]", r.Element.Key(), r.ParameterIndex)
	}
	return r.Element.Key().String()
}
