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

package metadata

import (
	"fmt"
	"reflect"

	"github.com/rulego/weaver/api/types"
)

// Option adds tags or constructors while an Owner is built.
type Option func(b *builder) error

type builder struct {
	owner *Owner
}

func (b *builder) lookup(kind types.ElementKind, name string) (*Element, error) {
	md, ok := b.owner.byKey[types.ElementKey{Owner: b.owner.t, Kind: kind, Name: name}]
	if !ok {
		return nil, fmt.Errorf("%s %s not found on %s", kind, name, b.owner.t)
	}
	return md, nil
}

// TypeTags attaches tags to the type itself.
func TypeTags(tags ...types.Tag) Option {
	return func(b *builder) error {
		b.owner.tags = append(b.owner.tags, tags...)
		return nil
	}
}

// FieldTags attaches tags to the named exported field.
func FieldTags(field string, tags ...types.Tag) Option {
	return func(b *builder) error {
		md, err := b.lookup(types.KindField, field)
		if err != nil {
			return err
		}
		md.tags = append(md.tags, tags...)
		return nil
	}
}

// MethodTags attaches tags to the named method.
func MethodTags(method string, tags ...types.Tag) Option {
	return func(b *builder) error {
		md, err := b.lookup(types.KindMethod, method)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrMethodNotFound, err)
		}
		md.tags = append(md.tags, tags...)
		return nil
	}
}

// ParamTags attaches tags to the index-th parameter of the named method.
func ParamTags(method string, index int, tags ...types.Tag) Option {
	return func(b *builder) error {
		md, err := b.lookup(types.KindMethod, method)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrMethodNotFound, err)
		}
		return tagParam(md, index, tags)
	}
}

// Constructor declares a factory function of the type. fn must be a function whose
// first result is the type or a pointer to it.
func Constructor(label string, fn interface{}, tags ...types.Tag) Option {
	return func(b *builder) error {
		v := reflect.ValueOf(fn)
		if v.Kind() != reflect.Func || v.Type().NumOut() == 0 || types.Indirect(v.Type().Out(0)) != b.owner.t {
			return fmt.Errorf("constructor %s must be a function returning %s", label, b.owner.t)
		}
		e := types.ConstructorElement{Owner: b.owner.t, Label: label, Func: v}
		if _, ok := b.owner.byKey[e.Key()]; ok {
			return fmt.Errorf("constructor %s declared twice", label)
		}
		md := b.owner.add(e, e.NumIn())
		md.tags = append(md.tags, tags...)
		return nil
	}
}

// ConstructorParamTags attaches tags to the index-th parameter of a declared constructor.
func ConstructorParamTags(label string, index int, tags ...types.Tag) Option {
	return func(b *builder) error {
		md, err := b.lookup(types.KindConstructor, label)
		if err != nil {
			return err
		}
		return tagParam(md, index, tags)
	}
}

func tagParam(md *Element, index int, tags []types.Tag) error {
	if index < 0 || index >= len(md.params) {
		return fmt.Errorf("parameter %d out of range for %s", index, md.element.Key())
	}
	md.params[index].tags = append(md.params[index].tags, tags...)
	return nil
}
