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

package interceptor

import (
	"github.com/rulego/weaver/api/types"
)

// Compile-time check Debug implements types.MethodInterceptor.
var _ types.MethodInterceptor = (*Debug)(nil)

// Debug reports every intercepted call to the OnDebug callback of its config:
// the arguments with flow In before the call, the result and error with flow Out after it.
//
// Debug 通过配置中的 OnDebug 回调报告每次调用：调用前以 In 报告参数，调用后以 Out 报告返回值和错误。
type Debug struct {
	config types.Config
}

// NewDebug creates a debug interceptor reporting to config.OnDebug.
func NewDebug(config types.Config) *Debug {
	return &Debug{config: config}
}

// Order returns the execution order of this interceptor. Debug runs with order 900,
// next to the method call.
func (d *Debug) Order() int {
	return 900
}

func (d *Debug) Invoke(inv types.MethodInvocation) (interface{}, error) {
	d.onDebug(inv, types.In, inv.Arguments(), nil)
	result, err := inv.Proceed()
	d.onDebug(inv, types.Out, result, err)
	return result, err
}

func (d *Debug) onDebug(inv types.MethodInvocation, flowType string, value interface{}, err error) {
	if d.config.OnDebug != nil {
		d.config.OnDebug(inv.ID(), flowType, inv.StaticPart().Key(), value, err)
	}
}
