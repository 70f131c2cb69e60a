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
	"github.com/rulego/weaver/api/types"
)

// CompositeProvider resolves identifiers from a custom provider first, then falls
// back to a default provider.
type CompositeProvider struct {
	defaultProvider types.Provider
	customProvider  types.Provider
}

// NewCompositeProvider combines a default provider, e.g. Registry, with custom,
// which takes precedence for identifiers present in both.
func NewCompositeProvider(defaultProvider, customProvider types.Provider) types.Provider {
	return &CompositeProvider{
		defaultProvider: defaultProvider,
		customProvider:  customProvider,
	}
}

// Get looks id up in the custom provider, then in the default provider.
func (p *CompositeProvider) Get(id string) (interface{}, bool) {
	if p.customProvider != nil {
		if v, ok := p.customProvider.Get(id); ok {
			return v, true
		}
	}
	if p.defaultProvider != nil {
		return p.defaultProvider.Get(id)
	}
	return nil, false
}
