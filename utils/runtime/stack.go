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

// Package runtime turns recovered panics into errors carrying the stack of the
// panicking goroutine, for units whose failures are only logged.
package runtime

import (
	"fmt"
	"runtime"
	"strings"
)

// PanicError is a recovered panic.
type PanicError struct {
	Value interface{}
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recovered wraps the value returned by recover(); nil stays nil.
// It must be called from the deferred function that called recover.
func Recovered(r interface{}) error {
	if r == nil {
		return nil
	}
	return &PanicError{Value: r, Stack: stack(4)}
}

// Stack 获取堆栈信息
func Stack() string {
	return stack(3)
}

func stack(skip int) string {
	var pc = make([]uintptr, 20)
	n := runtime.Callers(skip, pc)
	frames := runtime.CallersFrames(pc[:n])
	var build strings.Builder
	for {
		f, more := frames.Next()
		build.WriteString(fmt.Sprintf(" %s:%d \n", f.File, f.Line))
		if !more {
			break
		}
	}
	return build.String()
}
