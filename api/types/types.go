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

// flow direction type
// 流向 调用流入、流出连接点方向
const (
	In  = "IN"
	Out = "OUT"
)

// Pool 协程池
type Pool interface {
	//Submit 往协程池提交一个任务
	//如果协程池满返回错误
	Submit(task func()) error
	//Release 释放
	Release()
}

// OnDebugFunc receives debug events of intercepted operations.
//   - operationId: the joinpoint ID of the logical operation.
//   - flowType: In before the element runs, Out after it returned.
//   - element: the intercepted element key.
//   - value: the arguments on In, the result on Out.
//   - err: the error returned by the operation, Out only.
type OnDebugFunc func(operationId string, flowType string, element ElementKey, value interface{}, err error)
