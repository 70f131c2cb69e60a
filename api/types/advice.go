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

// The interfaces below describe advice, the higher-level behavior woven around a method call.
// Advice is arranged in ordered stacks: before, after-returning, around and throws.
//
// 以下接口描述增强（Advice），即织入方法调用前后的横切行为。
// 增强按栈组织：前置、返回后、环绕、异常。

// Orderer is implemented by advice and interceptors that declare an execution order.
// The smaller the value, the earlier it runs in advisor interceptor lists. Advice
// stacks resolved from a tag run in declaration order instead.
// Orderer 返回执行顺序，值越小，优先级越高
type Orderer interface {
	Order() int
}

// Continuation advances an advice chain. Calling Proceed runs the rest of the chain;
// not calling it skips the rest.
// Continuation 增强链的后续，调用 Proceed 执行剩余增强，不调用则跳过
type Continuation interface {
	Index() int
	Proceed() error
}

// BeforeAdvice runs before the underlying method.
// Declining to call next.Proceed skips the remaining before advice, never the underlying call.
// BeforeAdvice 方法执行之前的增强点。不调用 next.Proceed 只跳过剩余的前置增强，不会跳过目标方法
type BeforeAdvice interface {
	Before(next Continuation, inv MethodInvocation) error
}

// BeforeFunc adapts a function to BeforeAdvice. The rest of the chain always runs after it.
type BeforeFunc func(inv MethodInvocation) error

func (f BeforeFunc) Before(next Continuation, inv MethodInvocation) error {
	if err := f(inv); err != nil {
		return err
	}
	return next.Proceed()
}

// AfterReturningAdvice runs after the underlying method returned without error.
// It observes the result but cannot replace it.
// AfterReturningAdvice 方法正常返回之后的增强点，可读取返回值但不能替换
type AfterReturningAdvice interface {
	AfterReturning(next Continuation, result interface{}, inv MethodInvocation) error
}

// AfterReturningFunc adapts a function to AfterReturningAdvice.
type AfterReturningFunc func(result interface{}, inv MethodInvocation) error

func (f AfterReturningFunc) AfterReturning(next Continuation, result interface{}, inv MethodInvocation) error {
	if err := f(result, inv); err != nil {
		return err
	}
	return next.Proceed()
}

// ThrowsAdvice runs when the underlying method returned an error compatible with ErrorType.
// next.Proceed returns the error produced by the rest of the chain, the original error at its end.
// A non-nil return value replaces the propagated error; nil keeps it.
// ThrowsAdvice 方法返回错误之后的增强点，按声明的错误类型匹配
type ThrowsAdvice interface {
	// ErrorType is the declared error type, either a concrete type implementing error
	// or an interface type.
	ErrorType() reflect.Type
	AfterThrowing(next Continuation, inv MethodInvocation, err error) error
}
