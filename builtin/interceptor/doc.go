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

// Package interceptor provides built-in method interceptors that can be registered
// with an advice registry or attached to advisors.
//
// Package interceptor 提供内置的方法拦截器，可以注册到增强注册表或用于织入。
//
// Available Built-in Interceptors:
// 可用的内置拦截器：
//
//   - ConcurrencyLimiter: Limits concurrent calls of the intercepted methods
//     ConcurrencyLimiter：限制被拦截方法的并发调用数量
//
//   - SkipFallback: Skips a method that keeps failing for a cool-down period
//     SkipFallback：方法连续失败后在冷却期内跳过调用
//
//   - Metrics: Collects call counters per method, exported through NewPrometheusCollector
//     Metrics：按方法统计调用指标，可通过 NewPrometheusCollector 导出
//
//   - Debug: Reports arguments and results through the OnDebug callback
//     Debug：通过 OnDebug 回调报告参数和返回值
//
// Interceptor Execution Order:
// 拦截器执行顺序：
//
// Interceptors are sorted by their Order() method, smaller first:
// 拦截器根据其 Order() 方法排序，值越小越先执行：
//  1. ConcurrencyLimiter (order: 10)
//  2. SkipFallback (order: 10)
//  3. Metrics (order: 20)
//  4. Debug (order: 900)
//
// Usage Examples:
// 使用示例：
//
//	_ = engine.Registry.Register("debug", interceptor.NewDebug(config))
//	_ = engine.Registry.Register("limit", interceptor.NewConcurrencyLimiter(100))
//
//	w := engine.NewWeaver(lookup, engine.Advisor{
//		Name:         "observe",
//		Interceptors: []interface{}{interceptor.NewMetrics(), interceptor.NewDebug(config)},
//	})
package interceptor
