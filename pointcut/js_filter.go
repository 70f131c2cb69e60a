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

package pointcut

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/dop251/goja"
	"github.com/rulego/weaver/api/types"
)

// JsFilterFunc is the name of the function wrapping the script body.
const JsFilterFunc = "Filter"

var argsRef = regexp.MustCompile(`\bargs\b`)

// JsFilter evaluates a JavaScript function body over the variables of Env(record), e.g.
//
//	return name.indexOf("Get") === 0 && tags.indexOf("Cached") >= 0;
//
// The script is compiled once and VMs are pooled. Globals a script creates are removed
// after each evaluation. Script errors evaluate to false and are logged.
// The filter is runtime-checked when the script references args.
type JsFilter struct {
	config         types.Config
	kind           types.ElementKind
	script         string
	vmPool         sync.Pool
	runtimeChecked bool
}

// NewJsFilter compiles script into a filter of kind.
func NewJsFilter(config types.Config, kind types.ElementKind, script string) (*JsFilter, error) {
	src := fmt.Sprintf("function %s(%s, %s, %s, %s, %s, %s, %s) { %s \n}",
		JsFilterFunc, EnvKind, EnvName, EnvOwner, EnvTags, EnvOwnerTags, EnvIndex, EnvArgs, script)
	program, err := goja.Compile("", src, true)
	if err != nil {
		return nil, fmt.Errorf("compile filter script: %w", err)
	}
	if config.Logger == nil {
		config.Logger = types.DefaultLogger()
	}
	f := &JsFilter{
		config:         config,
		kind:           kind,
		script:         script,
		runtimeChecked: argsRef.MatchString(script),
	}
	f.vmPool = sync.Pool{
		New: func() interface{} {
			vm := &jsVM{Runtime: goja.New()}
			if _, err := vm.RunProgram(program); err != nil {
				config.Logger.Printf("js filter vm error: %s", err.Error())
			}
			vm.baseline = make(map[string]struct{})
			for _, k := range vm.GlobalObject().Keys() {
				vm.baseline[k] = struct{}{}
			}
			return vm
		},
	}
	return f, nil
}

func (f *JsFilter) Kind() types.ElementKind { return f.kind }

func (f *JsFilter) Matches(record types.MatchingRecord) bool {
	if !accepts(f.kind, record) {
		return false
	}
	out, err := f.execute(Env(record))
	if err != nil {
		f.config.Logger.Printf("js filter on %s error: %s", record, err)
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

func (f *JsFilter) execute(env map[string]interface{}) (out interface{}, err error) {
	defer func() {
		if caught := recover(); caught != nil {
			err = fmt.Errorf("%v", caught)
		}
	}()
	vm := f.vmPool.Get().(*jsVM)
	defer func() {
		if vm.reset() {
			f.vmPool.Put(vm)
		}
	}()

	fn, ok := goja.AssertFunction(vm.Get(JsFilterFunc))
	if !ok {
		return nil, fmt.Errorf("%s is not a function", JsFilterFunc)
	}
	names := []string{EnvKind, EnvName, EnvOwner, EnvTags, EnvOwnerTags, EnvIndex, EnvArgs}
	params := make([]goja.Value, len(names))
	for i, name := range names {
		params[i] = jsValue(vm.Runtime, env[name])
	}
	res, err := fn(goja.Undefined(), params...)
	if err != nil {
		return nil, err
	}
	return res.Export(), nil
}

// jsVM is a pooled runtime with the global keys it had after loading the filter.
type jsVM struct {
	*goja.Runtime
	baseline map[string]struct{}
}

// reset deletes the globals added since loading. It reports false when one cannot
// be deleted, and the VM is then dropped.
func (vm *jsVM) reset() bool {
	global := vm.GlobalObject()
	for _, k := range global.Keys() {
		if _, ok := vm.baseline[k]; ok {
			continue
		}
		if err := global.Delete(k); err != nil {
			return false
		}
	}
	return true
}

func (f *JsFilter) IsRuntimeChecked() bool { return f.runtimeChecked }

func (f *JsFilter) String() string { return "js(" + f.script + ")" }

// jsValue passes string lists as JavaScript arrays and nil argument lists as null.
func jsValue(vm *goja.Runtime, v interface{}) goja.Value {
	switch x := v.(type) {
	case []string:
		arr := make([]interface{}, len(x))
		for i, s := range x {
			arr[i] = s
		}
		return vm.NewArray(arr...)
	case []interface{}:
		if x == nil {
			return goja.Null()
		}
		return vm.NewArray(x...)
	default:
		return vm.ToValue(v)
	}
}
