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
	"sort"

	"github.com/rulego/weaver/api/types"
)

var (
	_ types.OwnerMetadata     = (*Owner)(nil)
	_ types.ElementMetadata   = (*Element)(nil)
	_ types.ParameterMetadata = (*Parameter)(nil)
)

// Owner is the immutable metadata of one struct type.
type Owner struct {
	t    reflect.Type
	tags types.Tags
	// elements by kind in declaration order
	elements map[types.ElementKind][]*Element
	byKey    map[types.ElementKey]*Element
	// tag names present per member kind
	present map[types.ElementKind]map[string]bool
}

// NewOwner builds the metadata of t without storing it.
// Every exported field and every method of *t is described, tagged or not.
func NewOwner(t reflect.Type, opts ...Option) (*Owner, error) {
	t = types.Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v is not a struct type", types.ErrNoOwnerMetadata, t)
	}
	o := &Owner{
		t:        t,
		elements: make(map[types.ElementKind][]*Element),
		byKey:    make(map[types.ElementKey]*Element),
		present:  make(map[types.ElementKind]map[string]bool),
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		o.add(types.FieldElement{Owner: t, Field: f}, 0)
	}
	pt := reflect.PtrTo(t)
	for i := 0; i < pt.NumMethod(); i++ {
		m := types.MethodElement{Owner: t, Method: pt.Method(i)}
		o.add(m, m.NumIn())
	}
	b := &builder{owner: o}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("describe %s: %w", t, err)
		}
	}
	o.index()
	return o, nil
}

func (o *Owner) add(e types.Element, numParams int) *Element {
	md := &Element{element: e}
	for i := 0; i < numParams; i++ {
		md.params = append(md.params, &Parameter{index: i, enclosing: e})
	}
	o.elements[e.Kind()] = append(o.elements[e.Kind()], md)
	o.byKey[e.Key()] = md
	return md
}

func (o *Owner) index() {
	for kind, list := range o.elements {
		for _, md := range list {
			for _, tag := range md.tags {
				o.mark(kind, tag.Name())
			}
			for _, p := range md.params {
				for _, tag := range p.tags {
					o.mark(types.KindParameter, tag.Name())
				}
			}
		}
	}
}

func (o *Owner) mark(kind types.ElementKind, name string) {
	if o.present[kind] == nil {
		o.present[kind] = make(map[string]bool)
	}
	o.present[kind][name] = true
}

func (o *Owner) Type() reflect.Type {
	return o.t
}

func (o *Owner) Tags() types.Tags {
	return o.tags
}

func (o *Owner) ElementMetadata(e types.Element) (types.ElementMetadata, bool) {
	if e == nil {
		return nil, false
	}
	md, ok := o.byKey[e.Key()]
	if !ok {
		return nil, false
	}
	return md, true
}

func (o *Owner) Elements(kind types.ElementKind) []types.Element {
	list := o.elements[kind]
	out := make([]types.Element, len(list))
	for i, md := range list {
		out[i] = md.element
	}
	return out
}

// Field returns the handle of the named field.
func (o *Owner) Field(name string) (types.FieldElement, bool) {
	md, ok := o.byKey[types.ElementKey{Owner: o.t, Kind: types.KindField, Name: name}]
	if !ok {
		return types.FieldElement{}, false
	}
	return md.element.(types.FieldElement), true
}

// Method returns the handle of the named method.
func (o *Owner) Method(name string) (types.MethodElement, bool) {
	md, ok := o.byKey[types.ElementKey{Owner: o.t, Kind: types.KindMethod, Name: name}]
	if !ok {
		return types.MethodElement{}, false
	}
	return md.element.(types.MethodElement), true
}

// Constructor returns the handle of the named constructor.
func (o *Owner) Constructor(label string) (types.ConstructorElement, bool) {
	md, ok := o.byKey[types.ElementKey{Owner: o.t, Kind: types.KindConstructor, Name: label}]
	if !ok {
		return types.ConstructorElement{}, false
	}
	return md.element.(types.ConstructorElement), true
}

func (o *Owner) HasFieldTag(name string) bool {
	return o.present[types.KindField][name]
}

func (o *Owner) HasMethodTag(name string) bool {
	return o.present[types.KindMethod][name]
}

func (o *Owner) HasConstructorTag(name string) bool {
	return o.present[types.KindConstructor][name]
}

func (o *Owner) HasParameterTag(name string) bool {
	return o.present[types.KindParameter][name]
}

// TagNames returns every tag name used on the type or its members, sorted.
func (o *Owner) TagNames() []string {
	set := make(map[string]bool)
	for _, t := range o.tags {
		set[t.Name()] = true
	}
	for _, names := range o.present {
		for n := range names {
			set[n] = true
		}
	}
	list := make([]string, 0, len(set))
	for n := range set {
		list = append(list, n)
	}
	sort.Strings(list)
	return list
}

func (o *Owner) String() string {
	return o.t.String()
}

// Element is the metadata of a field, method or constructor.
type Element struct {
	element types.Element
	tags    types.Tags
	params  []*Parameter
}

func (e *Element) Element() types.Element {
	return e.element
}

func (e *Element) Tags() types.Tags {
	return e.tags
}

func (e *Element) NumParameters() int {
	return len(e.params)
}

func (e *Element) Parameter(i int) (types.ParameterMetadata, bool) {
	if i < 0 || i >= len(e.params) {
		return nil, false
	}
	return e.params[i], true
}

// Parameter is the metadata of a method or constructor parameter.
type Parameter struct {
	index     int
	enclosing types.Element
	tags      types.Tags
}

func (p *Parameter) Index() int {
	return p.index
}

func (p *Parameter) Enclosing() types.Element {
	return p.enclosing
}

func (p *Parameter) Tags() types.Tags {
	return p.tags
}
