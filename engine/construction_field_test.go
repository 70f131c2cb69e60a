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
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/metadata"
	"github.com/rulego/weaver/pointcut"
	"github.com/rulego/weaver/test/assert"
)

type wrapped struct {
	inner interface{}
}

func newCalculatorCtor() types.ConstructorElement {
	return types.ConstructorElement{Owner: calculatorType, Label: "NewCalculator", Func: reflect.ValueOf(NewCalculator)}
}

func TestConstructionChain(t *testing.T) {
	x := &Calculator{Label: "x"}
	var observed interface{}
	first := types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		inv.SetPreviousResult(x)
		return inv.Proceed()
	})
	second := types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		result, err := inv.Proceed()
		if err != nil {
			return nil, err
		}
		observed = inv.PreviousResult()
		assert.Equal(t, observed, result)
		return &wrapped{inner: result}, nil
	})
	chain := NewConstructionChain(newCalculatorCtor(), first, second)
	inv := chain.Start(context.Background(), nil)
	out, err := inv.Proceed()
	assert.Nil(t, err)
	assert.True(t, observed == x)
	y, ok := out.(*wrapped)
	assert.True(t, ok)
	assert.True(t, y.inner == x)
	// the carried result follows the last interceptor return value
	assert.True(t, inv.PreviousResult() == y)
	assert.Equal(t, -1, inv.Index())
	assert.Nil(t, inv.This())
}

func TestConstructionChainEmpty(t *testing.T) {
	out, err := NewConstructionChain(newCalculatorCtor()).Instantiate(context.Background())
	assert.Nil(t, err)
	assert.Nil(t, out)
}

func TestInstantiator(t *testing.T) {
	var labels []string
	outer := types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		result, err := inv.Proceed()
		if err != nil {
			return nil, err
		}
		calc := result.(*Calculator)
		labels = append(labels, calc.Label)
		calc.Label = strings.ToUpper(calc.Label)
		return calc, nil
	})
	chain := NewConstructionChain(newCalculatorCtor(), outer, Instantiator())
	out, err := chain.Instantiate(context.Background(), "calc")
	assert.Nil(t, err)
	assert.Equal(t, "CALC", out.(*Calculator).Label)
	assert.Equal(t, []string{"calc"}, labels)

	_, err = chain.Instantiate(context.Background(), 1, 2)
	assert.NotNil(t, err)

	failing := errors.New("refused")
	refuse := types.ConstructorInterceptorFunc(func(inv types.ConstructorInvocation) (interface{}, error) {
		return nil, failing
	})
	_, err = NewConstructionChain(newCalculatorCtor(), refuse, Instantiator()).Instantiate(context.Background(), "calc")
	assert.Equal(t, failing, err)

	_, err = NewConstructionChain(types.ConstructorElement{Label: "none"}, Instantiator()).Instantiate(context.Background())
	assert.NotNil(t, err)
}

type upper struct{}

func (upper) Set(fa types.FieldAccess) (interface{}, error) {
	v, err := fa.ValueToSet()
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(v.(string)), nil
}

type suffix string

func (s suffix) Set(fa types.FieldAccess) (interface{}, error) {
	v, err := fa.ValueToSet()
	if err != nil {
		return nil, err
	}
	return v.(string) + string(s), nil
}

func (s suffix) Get(fa types.FieldAccess) (interface{}, error) {
	v, err := fa.Proceed()
	if err != nil {
		return nil, err
	}
	return v.(string) + string(s), nil
}

func TestFieldChain(t *testing.T) {
	label := fieldOf("Label")
	chain := NewFieldChain(label, upper{}, suffix("!"), "not an interceptor")
	calc := &Calculator{Label: "a"}

	t.Run("Read", func(t *testing.T) {
		out, err := chain.Read(context.Background(), calc)
		assert.Nil(t, err)
		assert.Equal(t, "a!", out)
		// reads never write
		assert.Equal(t, "a", calc.Label)
	})

	t.Run("Write", func(t *testing.T) {
		// upper runs first and wraps the rest of the chain
		out, err := chain.Write(context.Background(), calc, "b")
		assert.Nil(t, err)
		assert.Equal(t, "B!", out)
		assert.Equal(t, "B!", calc.Label)
	})

	t.Run("SharedField", func(t *testing.T) {
		check := types.FieldWriteFunc(func(fa types.FieldAccess) (interface{}, error) {
			assert.Equal(t, label.Key(), fa.Field().Key())
			assert.Equal(t, types.Write, fa.AccessKind())
			current, err := fa.CurrentValue()
			assert.Nil(t, err)
			assert.Equal(t, "B!", current)
			return fa.ValueToSet()
		})
		out, err := NewFieldChain(label, check, check).Access(context.Background(), calc, types.Write, "c")
		assert.Nil(t, err)
		assert.Equal(t, "c", out)
	})

	t.Run("ValueToSetOnRead", func(t *testing.T) {
		read := types.FieldReadFunc(func(fa types.FieldAccess) (interface{}, error) {
			return fa.ValueToSet()
		})
		_, err := NewFieldChain(label, read).Read(context.Background(), calc)
		assert.True(t, errors.Is(err, ErrNotWriteAccess))
	})

	t.Run("NotSettable", func(t *testing.T) {
		_, err := chain.Write(context.Background(), Calculator{}, "x")
		assert.True(t, errors.Is(err, types.ErrNotSettable))
		_, err = NewFieldChain(fieldOf("Total")).Write(context.Background(), calc, "x")
		assert.True(t, errors.Is(err, types.ErrNotSettable))
	})
}

func TestAccessorKind(t *testing.T) {
	kind, err := AccessorKind(methodOf("GetTotal"))
	assert.Nil(t, err)
	assert.Equal(t, types.Read, kind)
	kind, err = AccessorKind(methodOf("SetLabel"))
	assert.Nil(t, err)
	assert.Equal(t, types.Write, kind)
	_, err = AccessorKind(methodOf("Describe"))
	assert.NotNil(t, err)
}

func TestFieldWeaver(t *testing.T) {
	owner, err := metadata.NewOwner(calculatorType, metadata.FieldTags("Label", types.Marker("Inject")))
	assert.Nil(t, err)
	matcher := pointcut.MustTagMatcher(pointcut.TagMatcherConfig{
		Tags: []string{"Inject"}, Combinator: pointcut.CombineAnd, Mode: pointcut.OnThisElement,
	})

	var inFlight, maxInFlight int32
	var injected int32
	inject := types.FieldWriteFunc(func(fa types.FieldAccess) (interface{}, error) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&injected, 1)
		return "injected", nil
	})
	weaver := NewFieldWeaver(owner, matcher.FieldFilter(), inject)
	assert.Equal(t, 1, len(weaver.Fields()))
	assert.Equal(t, "Label", weaver.Fields()[0].Name())

	target := &Calculator{Total: 5}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Nil(t, weaver.Apply(context.Background(), target))
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
	assert.Equal(t, int32(20), atomic.LoadInt32(&injected))
	assert.Equal(t, "injected", target.Label)
	assert.Equal(t, 5, target.Total)
	assert.Equal(t, 0, fieldTargets.size())

	err = weaver.Apply(context.Background(), Calculator{})
	assert.True(t, errors.Is(err, types.ErrNotSettable))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, context.Canceled, weaver.Apply(ctx, target))

	all := NewFieldWeaver(owner, nil)
	assert.Equal(t, 2, len(all.Fields()))
	assert.Nil(t, all.Apply(context.Background(), target))

	t.Run("SharedTarget", func(t *testing.T) {
		atomic.StoreInt32(&maxInFlight, 0)
		atomic.StoreInt32(&injected, 0)
		other := NewFieldWeaver(owner, matcher.FieldFilter(), inject)
		chain := NewFieldChain(fieldOf("Label"), inject)
		target := &Calculator{}
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(3)
			go func() {
				defer wg.Done()
				assert.Nil(t, weaver.Apply(context.Background(), target))
			}()
			go func() {
				defer wg.Done()
				assert.Nil(t, other.Apply(context.Background(), target))
			}()
			go func() {
				defer wg.Done()
				_, err := chain.Write(context.Background(), target, "direct")
				assert.Nil(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
		assert.Equal(t, int32(30), atomic.LoadInt32(&injected))
		assert.Equal(t, 0, fieldTargets.size())
	})
}
