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

import "context"

// Joinpoint is the live invocation context exposed to interceptors and advice.
// Joinpoint 连接点：拦截器和增强可见的运行时调用上下文
type Joinpoint interface {
	// ID returns the identifier of the logical operation. Every joinpoint of one
	// operation shares it.
	ID() string
	// Context returns the context of the logical operation.
	Context() context.Context
	// Index returns the chain position of this joinpoint; -1 before the first interceptor.
	Index() int
	// This returns the receiver or target object, nil for a construction.
	This() interface{}
	// StaticPart returns the intercepted element.
	StaticPart() Element
	// Proceed runs the next interceptor, or the terminal action when none is left.
	Proceed() (interface{}, error)
}

// MethodInvocation is the joinpoint of a method call.
type MethodInvocation interface {
	Joinpoint
	Method() MethodElement
	// Arguments returns the call arguments. The slice is shared by the whole chain.
	Arguments() []interface{}
}

// ConstructorInvocation is the joinpoint of an object construction.
// Its terminal action returns the carried result instead of calling a constructor.
type ConstructorInvocation interface {
	Joinpoint
	Constructor() ConstructorElement
	Arguments() []interface{}
	// PreviousResult returns the carried construction result.
	PreviousResult() interface{}
	// SetPreviousResult replaces the carried construction result.
	SetPreviousResult(v interface{})
}

// FieldAccess is the joinpoint of a field read or write.
type FieldAccess interface {
	Joinpoint
	// Field returns the intercepted field. It is shared by every interceptor of the chain.
	Field() FieldElement
	AccessKind() AccessKind
	// CurrentValue reads the field from the target without interception.
	CurrentValue() (interface{}, error)
	// ValueToSet runs the remaining chain and returns the value to commit.
	// Only valid for Write accesses.
	ValueToSet() (interface{}, error)
}

// MethodInterceptor intercepts method calls. Around advice is a MethodInterceptor.
// MethodInterceptor 方法拦截器，环绕增强也是方法拦截器
type MethodInterceptor interface {
	Invoke(inv MethodInvocation) (interface{}, error)
}

// MethodInterceptorFunc adapts a function to MethodInterceptor.
type MethodInterceptorFunc func(inv MethodInvocation) (interface{}, error)

func (f MethodInterceptorFunc) Invoke(inv MethodInvocation) (interface{}, error) {
	return f(inv)
}

// ConstructorInterceptor intercepts object construction.
type ConstructorInterceptor interface {
	Construct(inv ConstructorInvocation) (interface{}, error)
}

// ConstructorInterceptorFunc adapts a function to ConstructorInterceptor.
type ConstructorInterceptorFunc func(inv ConstructorInvocation) (interface{}, error)

func (f ConstructorInterceptorFunc) Construct(inv ConstructorInvocation) (interface{}, error) {
	return f(inv)
}

// FieldReadInterceptor intercepts field reads.
type FieldReadInterceptor interface {
	Get(fa FieldAccess) (interface{}, error)
}

// FieldWriteInterceptor intercepts field writes. The returned value is committed.
type FieldWriteInterceptor interface {
	Set(fa FieldAccess) (interface{}, error)
}

// FieldReadFunc adapts a function to FieldReadInterceptor.
type FieldReadFunc func(fa FieldAccess) (interface{}, error)

func (f FieldReadFunc) Get(fa FieldAccess) (interface{}, error) {
	return f(fa)
}

// FieldWriteFunc adapts a function to FieldWriteInterceptor.
type FieldWriteFunc func(fa FieldAccess) (interface{}, error)

func (f FieldWriteFunc) Set(fa FieldAccess) (interface{}, error) {
	return f(fa)
}

// Invoker performs the real method call at the end of a method chain.
type Invoker func(ctx context.Context, receiver interface{}, args []interface{}) (interface{}, error)
