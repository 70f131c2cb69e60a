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

// Package pointcut selects join points: filters over matching records, the
// Pointcut bundle of one filter per element kind, and the tag-combination matcher.
//
// Package pointcut 切入点：匹配记录上的过滤器、按元素类别组合的切入点以及标签组合匹配器。
//
// Matching records are built with the record constructors of this package and
// evaluated against a Pointcut at weave time:
//
//	m, _ := pointcut.NewTagMatcher(pointcut.TagMatcherConfig{
//		Tags:       []string{"Transactional", "Audited"},
//		Combinator: pointcut.CombineOr,
//		Mode:       pointcut.OnThisElement,
//	})
//	pc := m.Pointcut()
//	if pc.Matches(pointcut.MethodRecord(owner, method)) {
//		// weave
//	}
package pointcut

import (
	"github.com/rulego/weaver/api/types"
)

// TypeRecord creates the matching record of a type.
func TypeRecord(owner types.OwnerMetadata, e types.TypeElement) types.MatchingRecord {
	return types.MatchingRecord{Kind: types.KindType, Element: e, Owner: owner}
}

// ConstructorRecord creates the matching record of a constructor.
func ConstructorRecord(owner types.OwnerMetadata, e types.ConstructorElement) types.MatchingRecord {
	return types.MatchingRecord{Kind: types.KindConstructor, Element: e, Owner: owner}
}

// FieldRecord creates the matching record of a field.
func FieldRecord(owner types.OwnerMetadata, e types.FieldElement) types.MatchingRecord {
	return types.MatchingRecord{Kind: types.KindField, Element: e, Owner: owner}
}

// MethodRecord creates the matching record of a method.
func MethodRecord(owner types.OwnerMetadata, e types.MethodElement) types.MatchingRecord {
	return types.MatchingRecord{Kind: types.KindMethod, Element: e, Owner: owner}
}

// ParameterRecord creates the matching record of the index-th parameter of a
// method or constructor.
func ParameterRecord(owner types.OwnerMetadata, enclosing types.Element, index int) types.MatchingRecord {
	return types.MatchingRecord{Kind: types.KindParameter, Element: enclosing, ParameterIndex: index, Owner: owner}
}

// RecordOf creates the matching record of any element. Parameters need ParameterRecord.
func RecordOf(owner types.OwnerMetadata, e types.Element) types.MatchingRecord {
	return types.MatchingRecord{Kind: e.Kind(), Element: e, Owner: owner}
}
