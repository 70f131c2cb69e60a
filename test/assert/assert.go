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

// Package assert provides the assertion helpers used by the weaver tests.
package assert

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

// Equal asserts that expected and actual are deeply equal.
func Equal(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !ObjectsAreEqual(expected, actual) {
		fail(t, fmt.Sprintf("Not equal: \nexpected: %#v\nactual  : %#v", expected, actual), msgAndArgs...)
	}
}

// NotEqual asserts that expected and actual are not deeply equal.
func NotEqual(t testing.TB, expected, actual interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if ObjectsAreEqual(expected, actual) {
		fail(t, fmt.Sprintf("Should not be: %#v", actual), msgAndArgs...)
	}
}

// EqualCleanString asserts equality after removing all whitespace from both strings.
func EqualCleanString(t testing.TB, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()
	Equal(t, clean(expected), clean(actual), msgAndArgs...)
}

// Nil asserts that object is nil, including typed nils.
func Nil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if !isNil(object) {
		fail(t, fmt.Sprintf("Expected nil, but got: %#v", object), msgAndArgs...)
	}
}

// NotNil asserts that object is not nil.
func NotNil(t testing.TB, object interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if isNil(object) {
		fail(t, "Expected value not to be nil.", msgAndArgs...)
	}
}

// True asserts that value is true.
func True(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	if !value {
		fail(t, "Should be true", msgAndArgs...)
	}
}

// False asserts that value is false.
func False(t testing.TB, value bool, msgAndArgs ...interface{}) {
	t.Helper()
	if value {
		fail(t, "Should be false", msgAndArgs...)
	}
}

// NoError asserts that err is nil.
func NoError(t testing.TB, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		fail(t, fmt.Sprintf("Received unexpected error: %+v", err), msgAndArgs...)
	}
}

// EqualError asserts that err is not nil and its message equals expected.
func EqualError(t testing.TB, err error, expected string, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		fail(t, "An error is expected but got nil.", msgAndArgs...)
		return
	}
	if err.Error() != expected {
		fail(t, fmt.Sprintf("Error message not equal:\nexpected: %q\nactual  : %q", expected, err.Error()), msgAndArgs...)
	}
}

// Fail reports a failure.
func Fail(t testing.TB, failureMessage string, msgAndArgs ...interface{}) {
	t.Helper()
	fail(t, failureMessage, msgAndArgs...)
}

// ObjectsAreEqual reports whether two objects are deeply equal. Byte slices are compared by content.
func ObjectsAreEqual(expected, actual interface{}) bool {
	if expected == nil || actual == nil {
		return expected == actual
	}
	exp, ok := expected.([]byte)
	if !ok {
		return reflect.DeepEqual(expected, actual)
	}
	act, ok := actual.([]byte)
	if !ok {
		return false
	}
	if exp == nil || act == nil {
		return exp == nil && act == nil
	}
	return bytes.Equal(exp, act)
}

func isNil(object interface{}) bool {
	if object == nil {
		return true
	}
	value := reflect.ValueOf(object)
	switch value.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice, reflect.UnsafePointer:
		return value.IsNil()
	}
	return false
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func fail(t testing.TB, message string, msgAndArgs ...interface{}) {
	t.Helper()
	if extra := messageFromMsgAndArgs(msgAndArgs...); extra != "" {
		message = message + "\nMessages: " + extra
	}
	t.Error(message)
}

func messageFromMsgAndArgs(msgAndArgs ...interface{}) string {
	switch len(msgAndArgs) {
	case 0:
		return ""
	case 1:
		if s, ok := msgAndArgs[0].(string); ok {
			return s
		}
		return fmt.Sprintf("%+v", msgAndArgs[0])
	default:
		if format, ok := msgAndArgs[0].(string); ok {
			return fmt.Sprintf(format, msgAndArgs[1:]...)
		}
		return fmt.Sprintf("%+v", msgAndArgs)
	}
}
