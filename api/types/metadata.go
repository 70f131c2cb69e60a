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

import "reflect"

// OwnerMetadata is the per-type metadata record supplied by the metadata collaborator.
// OwnerMetadata 类型级元数据：类型自身的标签以及其成员的元数据
type OwnerMetadata interface {
	// Type returns the described type (never a pointer type).
	Type() reflect.Type
	// Tags returns the tags on the type itself.
	Tags() Tags
	// ElementMetadata returns the metadata of an element declared by this type.
	ElementMetadata(e Element) (ElementMetadata, bool)
	// Elements returns the described elements of the given kind in declaration order.
	// KindParameter is not an element kind on its own and yields nothing.
	Elements(kind ElementKind) []Element
	// HasFieldTag reports whether any field carries the tag.
	HasFieldTag(name string) bool
	// HasMethodTag reports whether any method carries the tag.
	HasMethodTag(name string) bool
	// HasConstructorTag reports whether any constructor carries the tag.
	HasConstructorTag(name string) bool
	// HasParameterTag reports whether any method or constructor parameter carries the tag.
	HasParameterTag(name string) bool
}

// ElementMetadata is the metadata of one field, method or constructor.
type ElementMetadata interface {
	Element() Element
	Tags() Tags
	// NumParameters returns the number of described parameters. Fields have none.
	NumParameters() int
	// Parameter returns the metadata of the i-th parameter.
	Parameter(i int) (ParameterMetadata, bool)
}

// ParameterMetadata is the metadata of a method or constructor parameter.
type ParameterMetadata interface {
	Index() int
	// Enclosing returns the method or constructor declaring the parameter.
	Enclosing() Element
	Tags() Tags
}

// MetadataLookup resolves owner metadata. It is implemented by the metadata collaborator.
// MetadataLookup 元数据查询接口，由外部元数据提供者实现
type MetadataLookup interface {
	// Owner returns the metadata of a declaring type. Pointer types are dereferenced.
	Owner(t reflect.Type) (OwnerMetadata, bool)
	// ForElement returns the element metadata together with its declaring type's metadata.
	ForElement(e Element) (ElementMetadata, OwnerMetadata, bool)
}

// Provider resolves advice and interceptor instances by identifier.
// Provider 通过标识查找已注册的增强/拦截器实例
type Provider interface {
	// Get returns the object registered under id.
	Get(id string) (interface{}, bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(id string) (interface{}, bool)

func (f ProviderFunc) Get(id string) (interface{}, bool) {
	return f(id)
}
