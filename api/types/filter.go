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

// Filter is a side-effect-free predicate over a MatchingRecord of one element kind.
// A filter returns false for records of a kind it does not understand.
// Filter 过滤器：对某一类程序元素的无副作用判断
type Filter interface {
	// Kind returns the element kind the filter selects, or KindAny for a generic filter.
	Kind() ElementKind
	// Matches reports whether the record is in scope. It must not mutate the record.
	Matches(record MatchingRecord) bool
	// IsRuntimeChecked reports whether the result may depend on the live invocation
	// and therefore has to be re-evaluated on every call.
	IsRuntimeChecked() bool
}
