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

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/weaver/api/types"
)

// Environment variables visible to expression and script filters.
const (
	EnvKind      = "kind"
	EnvName      = "name"
	EnvOwner     = "owner"
	EnvTags      = "tags"
	EnvOwnerTags = "ownerTags"
	EnvIndex     = "index"
	EnvArgs      = "args"
)

// Env returns the evaluation environment of record:
//   - kind: the element kind, e.g. "Method"
//   - name: the element name
//   - owner: the declaring type name
//   - tags: tag names of the element (of the parameter for parameter records)
//   - ownerTags: tag names of the declaring type
//   - index: the parameter index, -1 for other kinds
//   - args: the live arguments, nil at weave time
func Env(record types.MatchingRecord) map[string]interface{} {
	env := map[string]interface{}{
		EnvKind:      record.Kind.String(),
		EnvName:      "",
		EnvOwner:     "",
		EnvTags:      []string{},
		EnvOwnerTags: []string{},
		EnvIndex:     -1,
		EnvArgs:      record.Args,
	}
	if record.Element != nil {
		env[EnvName] = record.Element.Name()
		if t := record.Element.DeclaringType(); t != nil {
			env[EnvOwner] = t.Name()
		}
	}
	if record.Kind == types.KindParameter {
		env[EnvIndex] = record.ParameterIndex
	}
	if record.Owner == nil {
		return env
	}
	env[EnvOwnerTags] = record.Owner.Tags().Names()
	if record.Kind == types.KindType {
		env[EnvTags] = record.Owner.Tags().Names()
		return env
	}
	if record.Element == nil {
		return env
	}
	if md, ok := record.Owner.ElementMetadata(record.Element); ok {
		if record.Kind == types.KindParameter {
			if pm, ok := md.Parameter(record.ParameterIndex); ok {
				env[EnvTags] = pm.Tags().Names()
			}
		} else {
			env[EnvTags] = md.Tags().Names()
		}
	}
	return env
}

// ExprFilter evaluates a boolean expr-lang expression over Env(record), e.g.
//
//	name startsWith "Get" && "Cached" in tags
//
// The filter is runtime-checked when the expression references args.
type ExprFilter struct {
	config         types.Config
	kind           types.ElementKind
	expression     string
	program        *vm.Program
	runtimeChecked bool
}

// NewExprFilter compiles expression into a filter of kind.
func NewExprFilter(config types.Config, kind types.ElementKind, expression string) (*ExprFilter, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("parse filter expression: %w", err)
	}
	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter expression: %w", err)
	}
	v := &identVisitor{name: EnvArgs}
	ast.Walk(&tree.Node, v)
	if config.Logger == nil {
		config.Logger = types.DefaultLogger()
	}
	return &ExprFilter{
		config:         config,
		kind:           kind,
		expression:     expression,
		program:        program,
		runtimeChecked: v.found,
	}, nil
}

func (f *ExprFilter) Kind() types.ElementKind { return f.kind }

func (f *ExprFilter) Matches(record types.MatchingRecord) bool {
	if !accepts(f.kind, record) {
		return false
	}
	out, err := vm.Run(f.program, Env(record))
	if err != nil {
		f.config.Logger.Printf("expr filter %q on %s error: %s", f.expression, record, err)
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

func (f *ExprFilter) IsRuntimeChecked() bool { return f.runtimeChecked }

func (f *ExprFilter) String() string { return "expr(" + f.expression + ")" }

type identVisitor struct {
	name  string
	found bool
}

func (v *identVisitor) Visit(node *ast.Node) {
	if n, ok := (*node).(*ast.IdentifierNode); ok && n.Value == v.name {
		v.found = true
	}
}
