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

// Package metadata is an in-memory metadata lookup: types are described once with
// their tags and the tags of their fields, methods, constructors and parameters.
//
// Package metadata 内存元数据查询：登记类型及其字段、方法、构造函数和参数上的标签。
//
//	reg := metadata.NewRegistry()
//	_, err := reg.Describe(reflect.TypeOf(Service{}),
//		metadata.TypeTags(types.Marker("Service")),
//		metadata.MethodTags("Save", types.NewTag("Before", map[string]interface{}{"value": "audit"})),
//		metadata.ParamTags("Save", 0, types.Marker("NotNull")),
//	)
package metadata

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/rulego/weaver/api/types"
)

var _ types.MetadataLookup = (*Registry)(nil)

// Registry stores owner metadata by type.
type Registry struct {
	owners map[reflect.Type]*Owner
	sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{owners: make(map[reflect.Type]*Owner)}
}

// Describe builds the metadata of t and stores it, replacing any previous description.
// Pointer types are dereferenced; t must be a struct type.
func (r *Registry) Describe(t reflect.Type, opts ...Option) (*Owner, error) {
	owner, err := NewOwner(t, opts...)
	if err != nil {
		return nil, err
	}
	r.Lock()
	defer r.Unlock()
	r.owners[owner.t] = owner
	return owner, nil
}

// MustDescribe is like Describe but panics on error.
func (r *Registry) MustDescribe(t reflect.Type, opts ...Option) *Owner {
	owner, err := r.Describe(t, opts...)
	if err != nil {
		panic(err)
	}
	return owner
}

// Remove deletes the metadata of t.
func (r *Registry) Remove(t reflect.Type) error {
	t = types.Indirect(t)
	r.Lock()
	defer r.Unlock()
	if _, ok := r.owners[t]; !ok {
		return fmt.Errorf("%w: %v", types.ErrNoOwnerMetadata, t)
	}
	delete(r.owners, t)
	return nil
}

// Owner returns the metadata of t.
func (r *Registry) Owner(t reflect.Type) (types.OwnerMetadata, bool) {
	t = types.Indirect(t)
	r.RLock()
	defer r.RUnlock()
	owner, ok := r.owners[t]
	if !ok {
		return nil, false
	}
	return owner, true
}

// ForElement returns the metadata of e and of its declaring type.
func (r *Registry) ForElement(e types.Element) (types.ElementMetadata, types.OwnerMetadata, bool) {
	owner, ok := r.Owner(e.DeclaringType())
	if !ok {
		return nil, nil, false
	}
	if e.Kind() == types.KindType {
		return nil, owner, true
	}
	md, ok := owner.ElementMetadata(e)
	if !ok {
		return nil, owner, false
	}
	return md, owner, true
}

// Types returns the described types.
func (r *Registry) Types() []reflect.Type {
	r.RLock()
	defer r.RUnlock()
	var list []reflect.Type
	for t := range r.owners {
		list = append(list, t)
	}
	return list
}
