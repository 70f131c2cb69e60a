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

import (
	"fmt"
	"reflect"
)

// ElementKind 程序元素类别
// ElementKind is the kind of a declared program element.
type ElementKind int

const (
	// KindAny is used by generic filters that accept every kind.
	KindAny ElementKind = iota - 1
	KindType
	KindConstructor
	KindField
	KindMethod
	KindParameter
)

// Kinds lists the five concrete element kinds in declaration order.
var Kinds = []ElementKind{KindType, KindConstructor, KindField, KindMethod, KindParameter}

func (k ElementKind) String() string {
	switch k {
	case KindAny:
		return "Any"
	case KindType:
		return "Type"
	case KindConstructor:
		return "Constructor"
	case KindField:
		return "Field"
	case KindMethod:
		return "Method"
	case KindParameter:
		return "Parameter"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// ElementKey identifies an element independently of the handle that carries it.
// Two handles describing the same declaration have equal keys.
type ElementKey struct {
	Owner reflect.Type
	Kind  ElementKind
	Name  string
}

func (k ElementKey) String() string {
	owner := "<nil>"
	if k.Owner != nil {
		owner = k.Owner.String()
	}
	return owner + "#" + k.Name + "(" + k.Kind.String() + ")"
}

// Element is an opaque handle to a declared program element.
// Element 程序元素句柄：类型、构造函数、字段、方法
type Element interface {
	Kind() ElementKind
	Name() string
	// DeclaringType returns the type that declares the element. For a TypeElement it is the type itself.
	DeclaringType() reflect.Type
	Key() ElementKey
}

// TypeElement is the handle of a type.
type TypeElement struct {
	Type reflect.Type
}

// NewTypeElement returns the element for t. Pointer types are dereferenced.
func NewTypeElement(t reflect.Type) TypeElement {
	return TypeElement{Type: Indirect(t)}
}

func (e TypeElement) Kind() ElementKind           { return KindType }
func (e TypeElement) Name() string                { return e.Type.Name() }
func (e TypeElement) DeclaringType() reflect.Type { return e.Type }
func (e TypeElement) Key() ElementKey {
	return ElementKey{Owner: e.Type, Kind: KindType, Name: e.Type.Name()}
}

// FieldElement is the handle of a struct field.
type FieldElement struct {
	Owner reflect.Type
	Field reflect.StructField
}

func (e FieldElement) Kind() ElementKind           { return KindField }
func (e FieldElement) Name() string                { return e.Field.Name }
func (e FieldElement) DeclaringType() reflect.Type { return e.Owner }
func (e FieldElement) Key() ElementKey {
	return ElementKey{Owner: e.Owner, Kind: KindField, Name: e.Field.Name}
}

// Get reads the field from target, which must be a pointer to the owner type or the owner value itself.
func (e FieldElement) Get(target interface{}) (interface{}, error) {
	v, err := e.value(target, false)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Set writes value into the field of target, which must be a pointer to the owner type.
func (e FieldElement) Set(target interface{}, value interface{}) error {
	v, err := e.value(target, true)
	if err != nil {
		return err
	}
	if value == nil {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}
	in := reflect.ValueOf(value)
	if !in.Type().AssignableTo(v.Type()) {
		if in.Type().ConvertibleTo(v.Type()) {
			in = in.Convert(v.Type())
		} else {
			return fmt.Errorf("%w: cannot assign %s to field %s of type %s", ErrNotSettable, in.Type(), e.Key(), v.Type())
		}
	}
	v.Set(in)
	return nil
}

func (e FieldElement) value(target interface{}, settable bool) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil target for field %s", ErrNotSettable, e.Key())
		}
		v = v.Elem()
	} else if settable {
		return reflect.Value{}, fmt.Errorf("%w: target of %s must be a pointer", ErrNotSettable, e.Key())
	}
	if v.Type() != e.Owner {
		return reflect.Value{}, fmt.Errorf("%w: target %s is not %s", ErrNotSettable, v.Type(), e.Owner)
	}
	f := v.FieldByIndex(e.Field.Index)
	if settable && !f.CanSet() {
		return reflect.Value{}, fmt.Errorf("%w: field %s is unexported", ErrNotSettable, e.Key())
	}
	if !settable && !f.CanInterface() {
		return reflect.Value{}, fmt.Errorf("%w: field %s is unexported", ErrNotSettable, e.Key())
	}
	return f, nil
}

// MethodElement is the handle of a method. Method comes from the pointer method set
// when the owner declares pointer receivers.
type MethodElement struct {
	Owner  reflect.Type
	Method reflect.Method
}

func (e MethodElement) Kind() ElementKind           { return KindMethod }
func (e MethodElement) Name() string                { return e.Method.Name }
func (e MethodElement) DeclaringType() reflect.Type { return e.Owner }
func (e MethodElement) Key() ElementKey {
	return ElementKey{Owner: e.Owner, Kind: KindMethod, Name: e.Method.Name}
}

// NumIn returns the number of parameters, not counting the receiver.
func (e MethodElement) NumIn() int {
	if e.Method.Type == nil {
		return 0
	}
	return e.Method.Type.NumIn() - 1
}

// NumOut returns the number of results.
func (e MethodElement) NumOut() int {
	if e.Method.Type == nil {
		return 0
	}
	return e.Method.Type.NumOut()
}

// ConstructorElement is the handle of a factory function producing the owner type.
type ConstructorElement struct {
	Owner reflect.Type
	// Label names the constructor, e.g. "NewService".
	Label string
	// Func is the factory function value.
	Func reflect.Value
}

func (e ConstructorElement) Kind() ElementKind           { return KindConstructor }
func (e ConstructorElement) Name() string                { return e.Label }
func (e ConstructorElement) DeclaringType() reflect.Type { return e.Owner }
func (e ConstructorElement) Key() ElementKey {
	return ElementKey{Owner: e.Owner, Kind: KindConstructor, Name: e.Label}
}

// NumIn returns the number of constructor parameters.
func (e ConstructorElement) NumIn() int {
	if !e.Func.IsValid() {
		return 0
	}
	return e.Func.Type().NumIn()
}

// Indirect strips pointer indirections from t.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// AccessKind is the kind of a field access.
type AccessKind int

const (
	Read AccessKind = iota
	Write
)

func (k AccessKind) String() string {
	if k == Write {
		return "WRITE"
	}
	return "READ"
}

// AccessKindOf derives the access kind from the shape of an accessor call site.
// GetX(), IsX() and X() with no parameters and one result are reads;
// SetX(v) with one parameter and no results is a write.
func AccessKindOf(name string, numIn, numOut int) (AccessKind, bool) {
	switch {
	case numIn == 0 && numOut == 1:
		return Read, true
	case numIn == 1 && numOut == 0 && len(name) > 3 && name[:3] == "Set":
		return Write, true
	default:
		return Read, false
	}
}
