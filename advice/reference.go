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

// Package advice builds the advice stacks woven around a method call: before,
// after-returning, around and throws. Each stack resolves the advice named by a tag
// of the method (or of its declaring type) through the configured provider.
//
// Package advice 提供织入方法调用的增强栈：前置、返回后、环绕、异常。
// 每个增强栈根据方法（或所属类型）上的标签，通过 Provider 解析增强实例。
package advice

import (
	"strings"

	"github.com/rulego/weaver/api/types"
)

// Reference is the advice reference carried by a stack tag.
//
//	types.NewTag(types.BeforeTag, map[string]interface{}{
//		"value":    "audit,trace",
//		"required": true,
//		"parallel": false,
//	})
type Reference struct {
	// Tag is the name of the tag the reference was read from.
	Tag string
	// Ids are the advice identifiers, in declaration order.
	Ids []string
	// Required makes an identifier that resolves to nothing fail resolution
	// instead of being dropped.
	Required bool
	// RuntimeLoading resolves the identifiers on every call instead of once.
	RuntimeLoading bool
	// Parallel runs before advice as detached units. Other stacks ignore it.
	Parallel bool
}

type referenceAttrs struct {
	Value          []string
	Ids            []string
	Required       bool
	RuntimeLoading bool
	Parallel       bool
}

// DecodeReference reads a reference from the attributes of tag.
// The value attribute is an alias of ids; both may be a list or a comma separated string.
func DecodeReference(tag types.Tag) (Reference, error) {
	var attrs referenceAttrs
	if err := tag.Decode(&attrs); err != nil {
		return Reference{}, err
	}
	ref := Reference{
		Tag:            tag.Name(),
		Required:       attrs.Required,
		RuntimeLoading: attrs.RuntimeLoading,
		Parallel:       attrs.Parallel,
	}
	seen := make(map[string]struct{})
	for _, id := range append(attrs.Value, attrs.Ids...) {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ref.Ids = append(ref.Ids, id)
	}
	return ref, nil
}
