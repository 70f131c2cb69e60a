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

// Package reflect calls functions and methods through reflection with loosely typed
// arguments, and folds their results into a value and an error.
package reflect

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

var (
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// ErrArgumentMismatch is returned when arguments cannot be passed to a function.
var ErrArgumentMismatch = errors.New("argument mismatch")

// Call calls fn with args. When the first parameter of fn is a context.Context that
// args do not supply, ctx is passed. See Results for the result folding.
func Call(ctx context.Context, fn reflect.Value, args []interface{}) (interface{}, error) {
	in, err := Arguments(ctx, fn.Type(), args)
	if err != nil {
		return nil, err
	}
	return Results(fn.Call(in))
}

// Arguments converts args to the parameter types of ft.
// nil becomes the zero value of its parameter; convertible values are converted.
func Arguments(ctx context.Context, ft reflect.Type, args []interface{}) ([]reflect.Value, error) {
	numIn := ft.NumIn()
	var in []reflect.Value
	if numIn > 0 && ft.In(0) == contextType && len(args) == numIn-1 && !ft.IsVariadic() {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	fixed := numIn
	if ft.IsVariadic() {
		fixed--
		if len(in)+len(args) < fixed {
			return nil, fmt.Errorf("%w: want at least %d arguments, got %d", ErrArgumentMismatch, fixed, len(args))
		}
	} else if len(in)+len(args) != numIn {
		return nil, fmt.Errorf("%w: want %d arguments, got %d", ErrArgumentMismatch, numIn, len(args))
	}
	for _, arg := range args {
		i := len(in)
		var pt reflect.Type
		if i >= fixed {
			pt = ft.In(fixed).Elem()
		} else {
			pt = ft.In(i)
		}
		v, err := Convert(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		in = append(in, v)
	}
	return in, nil
}

// Convert returns value as a reflect.Value of type t.
func Convert(value interface{}, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}
	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	if v.Type().ConvertibleTo(t) {
		return v.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s is not assignable to %s", ErrArgumentMismatch, v.Type(), t)
}

// Results folds call results: a trailing error result becomes the error, and the
// remaining values become nil (none), the value (one) or a []interface{} (several).
func Results(out []reflect.Value) (interface{}, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		values := make([]interface{}, len(out))
		for i, v := range out {
			values[i] = v.Interface()
		}
		return values, err
	}
}
