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

package advice

import (
	"fmt"

	"github.com/rulego/weaver/api/types"
)

// stackTags lists the stack tags from the outermost stack to the innermost.
var stackTags = []string{types.ThrowsTag, types.AfterReturningTag, types.BeforeTag, types.AroundTag}

// Stacks builds the stacks named by the tags of method, falling back to the tags of
// its owner type for every tag the method does not carry. The result is ordered from
// the outermost interceptor: throws, after returning, before, around.
// Tags that are absent produce no stack.
func Stacks(config types.Config, owner types.OwnerMetadata, method types.MethodElement) ([]types.MethodInterceptor, error) {
	var tags types.Tags
	if owner != nil {
		if md, ok := owner.ElementMetadata(method); ok {
			tags = md.Tags()
		}
	}
	var stacks []types.MethodInterceptor
	for _, name := range stackTags {
		tag, ok := tags.Get(name)
		if !ok && owner != nil {
			tag, ok = owner.Tags().Get(name)
		}
		if !ok {
			continue
		}
		s, err := NewStack(config, tag)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method.Key(), err)
		}
		stacks = append(stacks, s)
	}
	return stacks, nil
}

// NewStack builds the stack of one advice tag.
func NewStack(config types.Config, tag types.Tag) (types.MethodInterceptor, error) {
	ref, err := DecodeReference(tag)
	if err != nil {
		return nil, err
	}
	switch tag.Name() {
	case types.BeforeTag:
		return NewBeforeStack(config, ref)
	case types.AfterReturningTag:
		return NewAfterReturningStack(config, ref)
	case types.AroundTag:
		return NewAroundStack(config, ref)
	case types.ThrowsTag:
		return NewThrowsStack(config, ref)
	default:
		return nil, fmt.Errorf("%s is not an advice tag", tag.Name())
	}
}
