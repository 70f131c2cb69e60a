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
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/test/assert"
)

var errNegative = errors.New("negative amount")

type Calculator struct {
	Total int
	Label string
}

func NewCalculator(label string) *Calculator {
	return &Calculator{Label: label}
}

func (c *Calculator) Add(n int) (int, error) {
	if n < 0 {
		return 0, errNegative
	}
	c.Total += n
	return c.Total, nil
}

func (c *Calculator) Describe(ctx context.Context, prefix string) string {
	return fmt.Sprintf("%s%s:%d", prefix, c.Label, c.Total)
}

func (c *Calculator) GetTotal() int {
	return c.Total
}

func (c *Calculator) SetLabel(label string) {
	c.Label = label
}

var calculatorType = reflect.TypeOf(Calculator{})

func methodOf(name string) types.MethodElement {
	m, _ := reflect.PtrTo(calculatorType).MethodByName(name)
	return types.MethodElement{Owner: calculatorType, Method: m}
}

func fieldOf(name string) types.FieldElement {
	f, _ := calculatorType.FieldByName(name)
	return types.FieldElement{Owner: calculatorType, Field: f}
}

// recorder appends the chain index it observes before and after proceeding.
type recorder struct {
	name  string
	trace *[]string
	mu    *sync.Mutex
}

func (r recorder) Invoke(inv types.MethodInvocation) (interface{}, error) {
	r.log(fmt.Sprintf("%s>%d", r.name, inv.Index()))
	result, err := inv.Proceed()
	r.log(fmt.Sprintf("%s<%d", r.name, inv.Index()))
	return result, err
}

func (r recorder) log(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.trace = append(*r.trace, s)
}

func TestMethodChainOrder(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			var trace []string
			var mu sync.Mutex
			var interceptors []types.MethodInterceptor
			var want []string
			for i := 0; i < n; i++ {
				interceptors = append(interceptors, recorder{name: fmt.Sprintf("i%d", i), trace: &trace, mu: &mu})
				want = append(want, fmt.Sprintf("i%d>%d", i, i))
			}
			want = append(want, "terminal")
			for i := n - 1; i >= 0; i-- {
				want = append(want, fmt.Sprintf("i%d<%d", i, i))
			}
			terminalCalls := 0
			chain := NewMethodChain(methodOf("Add"), interceptors...).WithInvoker(
				func(ctx context.Context, receiver interface{}, args []interface{}) (interface{}, error) {
					terminalCalls++
					mu.Lock()
					trace = append(trace, "terminal")
					mu.Unlock()
					return args[0], nil
				})
			inv := chain.Start(context.Background(), &Calculator{}, []interface{}{7})
			assert.Equal(t, -1, inv.Index())
			result, err := inv.Proceed()
			assert.Nil(t, err)
			assert.Equal(t, 7, result)
			assert.Equal(t, want, trace)
			assert.Equal(t, 1, terminalCalls)
			// restore invariant
			assert.Equal(t, -1, inv.Index())

			// a second top-level proceed on the same joinpoint behaves identically
			trace = nil
			result, err = inv.Proceed()
			assert.Nil(t, err)
			assert.Equal(t, 7, result)
			assert.Equal(t, want, trace)
			assert.Equal(t, 2, terminalCalls)
			assert.Equal(t, -1, inv.Index())
		})
	}
}

func TestMethodChainReflectiveCall(t *testing.T) {
	calc := &Calculator{Label: "c"}
	add := NewMethodChain(methodOf("Add"))
	out, err := add.Invoke(context.Background(), calc, 3)
	assert.Nil(t, err)
	assert.Equal(t, 3, out)

	_, err = add.Invoke(context.Background(), calc, -1)
	assert.Equal(t, errNegative, err)
	assert.Equal(t, 3, calc.Total)

	describe := NewMethodChain(methodOf("Describe"))
	out, err = describe.Invoke(nil, calc, "#")
	assert.Nil(t, err)
	assert.Equal(t, "#c:3", out)

	_, err = add.Invoke(context.Background(), nil, 1)
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))
	_, err = add.Invoke(context.Background(), "not a calculator", 1)
	assert.True(t, errors.Is(err, types.ErrMethodNotFound))
}

func TestMethodChainErrors(t *testing.T) {
	boom := errors.New("boom")
	var seen []int
	observe := types.MethodInterceptorFunc(func(inv types.MethodInvocation) (interface{}, error) {
		result, err := inv.Proceed()
		seen = append(seen, inv.Index())
		return result, err
	})
	failing := types.MethodInterceptorFunc(func(inv types.MethodInvocation) (interface{}, error) {
		return nil, boom
	})

	t.Run("Interceptor", func(t *testing.T) {
		seen = nil
		chain := NewMethodChain(methodOf("Add"), observe, failing, observe)
		calc := &Calculator{}
		inv := chain.Start(context.Background(), calc, []interface{}{1})
		_, err := inv.Proceed()
		assert.Equal(t, boom, err)
		assert.Equal(t, []int{0}, seen)
		assert.Equal(t, -1, inv.Index())
		assert.Equal(t, 0, calc.Total)
	})

	t.Run("Terminal", func(t *testing.T) {
		seen = nil
		chain := NewMethodChain(methodOf("Add"), observe, observe)
		_, err := chain.Invoke(context.Background(), &Calculator{}, -5)
		assert.Equal(t, errNegative, err)
		assert.Equal(t, []int{1, 0}, seen)
	})

	t.Run("Panic", func(t *testing.T) {
		panicking := types.MethodInterceptorFunc(func(inv types.MethodInvocation) (interface{}, error) {
			panic("interceptor failed")
		})
		chain := NewMethodChain(methodOf("Add"), observe, panicking)
		inv := chain.Start(context.Background(), &Calculator{}, []interface{}{1})
		func() {
			defer func() {
				assert.Equal(t, "interceptor failed", recover())
			}()
			_, _ = inv.Proceed()
		}()
		assert.Equal(t, -1, inv.Index())
	})
}

func TestMethodChainIdentity(t *testing.T) {
	var ids []string
	capture := types.MethodInterceptorFunc(func(inv types.MethodInvocation) (interface{}, error) {
		ids = append(ids, inv.ID())
		assert.Equal(t, "Add", inv.Method().Name())
		assert.Equal(t, "Add", inv.StaticPart().Name())
		assert.Equal(t, []interface{}{2}, inv.Arguments())
		return inv.Proceed()
	})
	chain := NewMethodChain(methodOf("Add"), capture, capture)
	assert.Equal(t, 2, chain.Len())
	_, err := chain.Invoke(context.Background(), &Calculator{}, 2)
	assert.Nil(t, err)
	_, err = chain.Invoke(context.Background(), &Calculator{}, 2)
	assert.Nil(t, err)
	assert.Equal(t, 4, len(ids))
	// one identifier per logical operation
	assert.Equal(t, ids[0], ids[1])
	assert.Equal(t, ids[2], ids[3])
	assert.NotEqual(t, ids[0], ids[2])
}

func TestMethodChainConcurrentReuse(t *testing.T) {
	double := types.MethodInterceptorFunc(func(inv types.MethodInvocation) (interface{}, error) {
		result, err := inv.Proceed()
		if err != nil {
			return nil, err
		}
		return result.(int) * 2, nil
	})
	chain := NewMethodChain(methodOf("Add"), double, double)
	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			out, err := chain.Invoke(context.Background(), &Calculator{}, n)
			if err != nil {
				errs <- err
				return
			}
			if out != n*4 {
				errs <- fmt.Errorf("got %v for %d", out, n)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
