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
	"github.com/rulego/weaver/engine"
)

// Resolver looks up the identifiers of a reference through a provider.
type Resolver struct {
	Provider types.Provider
}

// Resolve returns the objects named by ref that have capability want, in
// declaration order.
// A missing identifier is dropped, or fails with *types.RequiredAdviceMissingError
// when the reference is required. An object without the capability fails with
// types.ErrAdviceTypeMismatch.
func (r Resolver) Resolve(ref Reference, want engine.Capability) (*engine.InterceptorList, error) {
	values := make([]interface{}, 0, len(ref.Ids))
	for _, id := range ref.Ids {
		var v interface{}
		var ok bool
		if r.Provider != nil {
			v, ok = r.Provider.Get(id)
		}
		if !ok || v == nil {
			if ref.Required {
				return nil, &types.RequiredAdviceMissingError{Id: id, Tag: ref.Tag}
			}
			continue
		}
		if !engine.Classify(v).Has(want) {
			return nil, fmt.Errorf("%w: %s(%T) is not %s advice", types.ErrAdviceTypeMismatch, id, v, want)
		}
		values = append(values, v)
	}
	return engine.NewInterceptorListInOrder(values...), nil
}
