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

package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/metadata"
	"github.com/rulego/weaver/pointcut"
	"github.com/rulego/weaver/test/assert"
)

type counting struct {
	calls *int32
}

func (c counting) Invoke(inv types.MethodInvocation) (interface{}, error) {
	atomic.AddInt32(c.calls, 1)
	return inv.Proceed()
}

// doubling doubles the first argument of the call.
type doubling struct{}

func (doubling) Invoke(inv types.MethodInvocation) (interface{}, error) {
	args := inv.Arguments()
	args[0] = args[0].(int) * 2
	return inv.Proceed()
}

func describeCalculator(t *testing.T) *metadata.Registry {
	reg := metadata.NewRegistry()
	_, err := reg.Describe(reflect.TypeOf(&Calculator{}),
		metadata.TypeTags(types.Marker("Audited")),
		metadata.MethodTags("Add", types.Marker("Audited")),
		metadata.FieldTags("Label", types.Marker("Audited")),
		metadata.Constructor("New", NewCalculator, types.Marker("Audited")),
	)
	assert.Nil(t, err)
	return reg
}

func auditedPointcut() pointcut.Pointcut {
	m := pointcut.MustTagMatcher(pointcut.TagMatcherConfig{
		Tags:       []string{"Audited"},
		Combinator: pointcut.CombineOr,
		Mode:       pointcut.OnThisElement,
	})
	return pointcut.NewBuilder().
		Class(m.ClassFilter()).
		Constructor(m.ConstructorFilter()).
		Field(m.FieldFilter()).
		Method(m.MethodFilter()).
		MustBuild()
}

func TestWeaverStatic(t *testing.T) {
	reg := describeCalculator(t)
	var calls, built int32
	ctorCounter := types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		atomic.AddInt32(&built, 1)
		return inv.Proceed()
	})
	w := NewWeaver(reg, Advisor{
		Name:         "audit",
		Pointcut:     auditedPointcut(),
		Interceptors: []interface{}{counting{calls: &calls}, upper{}, ctorCounter},
	})
	assert.Equal(t, []string{"audit"}, w.Advisors())

	wt, err := w.Weave(reflect.TypeOf(&Calculator{}))
	assert.Nil(t, err)
	again, _ := w.Weave(reflect.TypeOf(Calculator{}))
	assert.True(t, wt == again)

	obj, err := wt.Instantiate(context.Background(), "New", "calc")
	assert.Nil(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&built))
	calc := obj.(*Calculator)

	result, err := wt.Invoke(context.Background(), calc, "Add", 3)
	assert.Nil(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// GetTotal carries no tag
	result, err = wt.Invoke(context.Background(), calc, "GetTotal")
	assert.Nil(t, err)
	assert.Equal(t, 3, result)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	add, _ := wt.MethodChain("Add")
	assert.Equal(t, 1, add.Len())
	assert.Equal(t, []string{"audit"}, wt.Advisors(add.Method()))
	getTotal, _ := wt.MethodChain("GetTotal")
	assert.Equal(t, 0, len(wt.Advisors(getTotal.Method())))

	label, err := wt.FieldChain("Label")
	assert.Nil(t, err)
	committed, err := label.Write(context.Background(), calc, "renamed")
	assert.Nil(t, err)
	assert.Equal(t, "RENAMED", committed)
	total, _ := wt.FieldChain("Total")
	committed, _ = total.Write(context.Background(), calc, 9)
	assert.Equal(t, 9, committed)

	_, err = wt.MethodChain("Missing")
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))
	_, err = wt.Invoke(context.Background(), calc, "Missing")
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))
	_, err = wt.Instantiate(context.Background(), "Missing")
	assert.NotNil(t, err)
	_, err = wt.FieldChain("secret")
	assert.NotNil(t, err)
}

func TestWeaverRuntimeChecked(t *testing.T) {
	reg := describeCalculator(t)
	large := pointcut.FilterFunc(types.KindMethod, func(r types.MatchingRecord) bool {
		if !r.Live() || len(r.Args) == 0 {
			return true
		}
		n, ok := r.Args[0].(int)
		return ok && n > 10
	}, true)
	var calls int32
	w := NewWeaver(reg,
		Advisor{
			Name:         "large",
			Pointcut:     pointcut.NewBuilder().Method(large).MustBuild(),
			Interceptors: []interface{}{doubling{}, counting{calls: &calls}},
		},
	)
	wt, err := w.Weave(reflect.TypeOf(Calculator{}))
	assert.Nil(t, err)
	calc := NewCalculator("calc")

	result, err := wt.Invoke(context.Background(), calc, "Add", 4)
	assert.Nil(t, err)
	assert.Equal(t, 4, result)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	result, err = wt.Invoke(context.Background(), calc, "Add", 20)
	assert.Nil(t, err)
	assert.Equal(t, 44, result)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// the guard is woven into every method, and only lets the advice run on a match
	add, _ := wt.MethodChain("Add")
	assert.Equal(t, 1, add.Len())
	assert.Equal(t, []string{"large"}, wt.Advisors(add.Method()))
}

func TestWeaverAdd(t *testing.T) {
	reg := describeCalculator(t)
	w := NewWeaver(reg)
	wt, err := w.Weave(reflect.TypeOf(Calculator{}))
	assert.Nil(t, err)
	add, _ := wt.MethodChain("Add")
	assert.Equal(t, 0, add.Len())

	var calls int32
	w.Add(Advisor{Name: "all", Interceptors: []interface{}{counting{calls: &calls}}})
	rewoven, _ := w.Weave(reflect.TypeOf(Calculator{}))
	assert.False(t, wt == rewoven)
	add, _ = rewoven.MethodChain("Add")
	assert.Equal(t, 1, add.Len())
	getTotal, _ := rewoven.MethodChain("GetTotal")
	assert.Equal(t, 1, getTotal.Len())

	t.Run("NoMetadata", func(t *testing.T) {
		_, err := w.Weave(reflect.TypeOf(struct{}{}))
		assert.True(t, errors.Is(err, types.ErrNoOwnerMetadata))
		_, err = NewWeaver(nil).Weave(calculatorType)
		assert.True(t, errors.Is(err, types.ErrNoOwnerMetadata))
	})

	t.Run("ClassFilter", func(t *testing.T) {
		other := pointcut.FilterFunc(types.KindType, func(r types.MatchingRecord) bool {
			return r.Element.Name() == "Other"
		}, false)
		skipped := NewWeaver(reg, Advisor{
			Name:         "other",
			Pointcut:     pointcut.NewBuilder().Class(other).MustBuild(),
			Interceptors: []interface{}{counting{calls: &calls}},
		})
		wt, _ := skipped.Weave(calculatorType)
		add, _ := wt.MethodChain("Add")
		assert.Equal(t, 0, add.Len())
	})

	t.Run("AddWhileWeaving", func(t *testing.T) {
		lookup := &addingLookup{MetadataLookup: reg}
		w := NewWeaver(lookup)
		lookup.add = func() {
			w.Add(Advisor{Name: "late", Interceptors: []interface{}{counting{calls: &calls}}})
		}
		stale, err := w.Weave(calculatorType)
		assert.Nil(t, err)
		add, _ := stale.MethodChain("Add")
		assert.Equal(t, 0, add.Len())

		fresh, err := w.Weave(calculatorType)
		assert.Nil(t, err)
		assert.False(t, stale == fresh)
		add, _ = fresh.MethodChain("Add")
		assert.Equal(t, 1, add.Len())
		again, _ := w.Weave(calculatorType)
		assert.True(t, fresh == again)
	})
}

// addingLookup runs add once, during the first owner lookup.
type addingLookup struct {
	types.MetadataLookup
	add  func()
	once sync.Once
}

func (l *addingLookup) Owner(t reflect.Type) (types.OwnerMetadata, bool) {
	l.once.Do(l.add)
	return l.MetadataLookup.Owner(t)
}
