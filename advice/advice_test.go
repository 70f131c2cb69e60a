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

package advice

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/test/assert"
	"github.com/rulego/weaver/utils/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errNegative = errors.New("negative")

type limitError struct {
	Limit int
}

func (e *limitError) Error() string {
	return "over limit"
}

type Counter struct {
	N     int
	calls int
}

func (c *Counter) Inc(n int) (int, error) {
	c.calls++
	if n < 0 {
		return 0, errNegative
	}
	if n > 100 {
		return 0, &limitError{Limit: 100}
	}
	c.N += n
	return c.N, nil
}

var counterType = reflect.TypeOf(Counter{})

func incMethod() types.MethodElement {
	m, _ := reflect.PtrTo(counterType).MethodByName("Inc")
	return types.MethodElement{Owner: counterType, Method: m}
}

func invoke(t *testing.T, s types.MethodInterceptor, c *Counter, n int) (interface{}, error) {
	t.Helper()
	return engine.NewMethodChain(incMethod(), s).Invoke(context.Background(), c, n)
}

func newConfig(reg *engine.AdviceRegistry, opts ...types.Option) types.Config {
	return types.NewConfig(append([]types.Option{types.WithProvider(reg)}, opts...)...)
}

func TestDecodeReference(t *testing.T) {
	ref, err := DecodeReference(types.NewTag(types.BeforeTag, map[string]interface{}{
		"value":    "a, b",
		"ids":      []string{"c", "a"},
		"required": "true",
		"parallel": true,
	}))
	assert.Nil(t, err)
	assert.Equal(t, types.BeforeTag, ref.Tag)
	assert.Equal(t, []string{"a", "b", "c"}, ref.Ids)
	assert.True(t, ref.Required)
	assert.True(t, ref.Parallel)
	assert.False(t, ref.RuntimeLoading)

	ref, err = DecodeReference(types.Marker(types.AroundTag))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(ref.Ids))

	_, err = DecodeReference(types.NewTag(types.BeforeTag, map[string]interface{}{"required": "maybe"}))
	assert.NotNil(t, err)
}

func TestBeforeSequential(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	counter := 0
	_ = reg.Register("a1", types.BeforeFunc(func(inv types.MethodInvocation) error {
		assert.Equal(t, 0, counter)
		counter = 1
		return nil
	}))
	_ = reg.Register("a2", types.BeforeFunc(func(inv types.MethodInvocation) error {
		assert.Equal(t, 1, counter)
		counter = 2
		return nil
	}))
	s, err := NewBeforeStack(newConfig(reg), Reference{Tag: types.BeforeTag, Ids: []string{"a1", "a2"}})
	assert.Nil(t, err)
	c := &Counter{}
	result, err := invoke(t, s, c, 5)
	assert.Nil(t, err)
	assert.Equal(t, 5, result)
	assert.Equal(t, 2, counter)

	t.Run("Skip", func(t *testing.T) {
		var ran []string
		_ = reg.Register("stop", beforeFunc(func(next types.Continuation, inv types.MethodInvocation) error {
			ran = append(ran, "stop")
			return nil
		}))
		_ = reg.Register("never", types.BeforeFunc(func(inv types.MethodInvocation) error {
			ran = append(ran, "never")
			return nil
		}))
		s, err := NewBeforeStack(newConfig(reg), Reference{Ids: []string{"stop", "never"}})
		assert.Nil(t, err)
		c := &Counter{}
		result, err := invoke(t, s, c, 1)
		assert.Nil(t, err)
		assert.Equal(t, 1, result)
		assert.Equal(t, []string{"stop"}, ran)
	})

	t.Run("Abort", func(t *testing.T) {
		denied := errors.New("denied")
		_ = reg.Register("deny", types.BeforeFunc(func(inv types.MethodInvocation) error {
			return denied
		}))
		s, err := NewBeforeStack(newConfig(reg), Reference{Ids: []string{"deny"}})
		assert.Nil(t, err)
		c := &Counter{}
		_, err = invoke(t, s, c, 1)
		assert.Equal(t, denied, err)
		assert.Equal(t, 0, c.calls)
	})

	t.Run("Index", func(t *testing.T) {
		var indexes []int
		record := beforeFunc(func(next types.Continuation, inv types.MethodInvocation) error {
			indexes = append(indexes, next.Index())
			return next.Proceed()
		})
		_ = reg.Register("r1", record)
		_ = reg.Register("r2", record)
		s, err := NewBeforeStack(newConfig(reg), Reference{Ids: []string{"r1", "r2"}})
		assert.Nil(t, err)
		_, err = invoke(t, s, &Counter{}, 1)
		assert.Nil(t, err)
		assert.Equal(t, []int{0, 1}, indexes)
	})

	t.Run("DeclarationOrder", func(t *testing.T) {
		var ran []string
		_ = reg.Register("first", orderedBefore{name: "first", order: 50, ran: &ran})
		_ = reg.Register("second", orderedBefore{name: "second", order: 10, ran: &ran})
		s, err := NewBeforeStack(newConfig(reg), Reference{Ids: []string{"first", "second"}})
		assert.Nil(t, err)
		_, err = invoke(t, s, &Counter{}, 1)
		assert.Nil(t, err)
		assert.Equal(t, []string{"first", "second"}, ran)

		ran = nil
		s, err = NewBeforeStack(newConfig(reg), Reference{Ids: []string{"second", "first"}})
		assert.Nil(t, err)
		_, err = invoke(t, s, &Counter{}, 1)
		assert.Nil(t, err)
		assert.Equal(t, []string{"second", "first"}, ran)
	})
}

// orderedBefore carries an Order that must not change its place in a stack.
type orderedBefore struct {
	name  string
	order int
	ran   *[]string
}

func (b orderedBefore) Order() int { return b.order }

func (b orderedBefore) Before(next types.Continuation, inv types.MethodInvocation) error {
	*b.ran = append(*b.ran, b.name)
	return next.Proceed()
}

type beforeFunc func(next types.Continuation, inv types.MethodInvocation) error

func (f beforeFunc) Before(next types.Continuation, inv types.MethodInvocation) error {
	return f(next, inv)
}

func TestBeforeParallel(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	reg := engine.NewAdviceRegistry()
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(3)
	_ = reg.Register("a1", types.BeforeFunc(func(inv types.MethodInvocation) error {
		defer wg.Done()
		<-release
		return nil
	}))
	_ = reg.Register("a2", types.BeforeFunc(func(inv types.MethodInvocation) error {
		defer wg.Done()
		<-release
		return errors.New("a2 failed")
	}))
	_ = reg.Register("a3", types.BeforeFunc(func(inv types.MethodInvocation) error {
		defer wg.Done()
		<-release
		panic("a3 panic")
	}))
	config := newConfig(reg, types.WithDefaultPool(), types.WithLogger(logger.Zap(zap.New(core))))
	s, err := NewBeforeStack(config, Reference{Ids: []string{"a1", "a2", "a3"}, Parallel: true})
	assert.Nil(t, err)

	c := &Counter{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := invoke(t, s, c, 7)
		assert.Nil(t, err)
		assert.Equal(t, 7, result)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("the call waited for parallel before advice")
	}
	assert.Equal(t, 1, c.calls)

	close(release)
	wg.Wait()
	deadline := time.Now().Add(5 * time.Second)
	for logs.Len() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	var messages []string
	for _, e := range logs.All() {
		messages = append(messages, e.Message)
	}
	all := strings.Join(messages, "\n")
	assert.True(t, strings.Contains(all, "a2 failed"), all)
	assert.True(t, strings.Contains(all, "a3 panic"), all)
}

func TestResolution(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	config := newConfig(reg)

	t.Run("RequiredMissing", func(t *testing.T) {
		_, err := NewBeforeStack(config, Reference{Tag: types.BeforeTag, Ids: []string{"missing"}, Required: true})
		assert.True(t, errors.Is(err, types.ErrRequiredAdviceMissing))
		var missing *types.RequiredAdviceMissingError
		assert.True(t, errors.As(err, &missing))
		assert.Equal(t, "missing", missing.Id)
		assert.Equal(t, types.BeforeTag, missing.Tag)
	})

	t.Run("OptionalMissing", func(t *testing.T) {
		list, err := Resolver{Provider: reg}.Resolve(Reference{Ids: []string{"missing"}}, engine.CapBefore)
		assert.Nil(t, err)
		assert.Equal(t, 0, list.Len())
		s, err := NewBeforeStack(config, Reference{Ids: []string{"missing"}})
		assert.Nil(t, err)
		result, err := invoke(t, s, &Counter{}, 3)
		assert.Nil(t, err)
		assert.Equal(t, 3, result)
	})

	t.Run("NoProvider", func(t *testing.T) {
		list, err := Resolver{}.Resolve(Reference{Ids: []string{"a"}}, engine.CapBefore)
		assert.Nil(t, err)
		assert.Equal(t, 0, list.Len())
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		_ = reg.Register("after", types.AfterReturningFunc(func(result interface{}, inv types.MethodInvocation) error {
			return nil
		}))
		_, err := NewBeforeStack(config, Reference{Ids: []string{"after"}})
		assert.True(t, errors.Is(err, types.ErrAdviceTypeMismatch))
	})

	t.Run("RuntimeLoading", func(t *testing.T) {
		runs := 0
		ref := Reference{Ids: []string{"late"}, RuntimeLoading: true}
		s, err := NewBeforeStack(config, ref)
		assert.Nil(t, err)
		_, err = invoke(t, s, &Counter{}, 1)
		assert.Nil(t, err)
		assert.Equal(t, 0, runs)

		_ = reg.Register("late", types.BeforeFunc(func(inv types.MethodInvocation) error {
			runs++
			return nil
		}))
		_, err = invoke(t, s, &Counter{}, 1)
		assert.Nil(t, err)
		assert.Equal(t, 1, runs)

		// resolved once: new wiring needs a reload
		once, err := NewBeforeStack(config, Reference{Ids: []string{"later"}})
		assert.Nil(t, err)
		later := 0
		_ = reg.Register("later", types.BeforeFunc(func(inv types.MethodInvocation) error {
			later++
			return nil
		}))
		_, _ = invoke(t, once, &Counter{}, 1)
		assert.Equal(t, 0, later)
		assert.Nil(t, once.Reload())
		_, _ = invoke(t, once, &Counter{}, 1)
		assert.Equal(t, 1, later)
	})

	t.Run("ReloadKeepsList", func(t *testing.T) {
		s, err := NewBeforeStack(config, Reference{Ids: []string{"late"}, Required: true})
		assert.Nil(t, err)
		assert.Nil(t, reg.Unregister("late"))
		assert.True(t, errors.Is(s.Reload(), types.ErrRequiredAdviceMissing))
		list, _ := s.current()
		assert.Equal(t, 1, list.Len())
	})
}

func TestAfterReturning(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	var seen []interface{}
	_ = reg.Register("observe", types.AfterReturningFunc(func(result interface{}, inv types.MethodInvocation) error {
		seen = append(seen, result)
		return nil
	}))
	s, err := NewAfterReturningStack(newConfig(reg), Reference{Ids: []string{"observe"}})
	assert.Nil(t, err)

	c := &Counter{}
	result, err := invoke(t, s, c, 4)
	assert.Nil(t, err)
	assert.Equal(t, 4, result)
	_, err = invoke(t, s, c, -1)
	assert.Equal(t, errNegative, err)
	assert.Equal(t, []interface{}{4}, seen)

	t.Run("Error", func(t *testing.T) {
		rejected := errors.New("rejected")
		_ = reg.Register("reject", types.AfterReturningFunc(func(result interface{}, inv types.MethodInvocation) error {
			return rejected
		}))
		s, err := NewAfterReturningStack(newConfig(reg), Reference{Ids: []string{"reject", "observe"}})
		assert.Nil(t, err)
		c := &Counter{}
		_, err = invoke(t, s, c, 1)
		assert.Equal(t, rejected, err)
		assert.Equal(t, 1, c.N)
	})
}

type replace struct {
	value interface{}
}

func (r replace) Invoke(inv types.MethodInvocation) (interface{}, error) {
	return r.value, nil
}

type twice struct{}

func (twice) Invoke(inv types.MethodInvocation) (interface{}, error) {
	if _, err := inv.Proceed(); err != nil {
		return nil, err
	}
	return inv.Proceed()
}

func TestAround(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	_ = reg.Register("replace", replace{value: 42})
	_ = reg.Register("twice", twice{})
	config := newConfig(reg)

	s, err := NewAroundStack(config, Reference{Ids: []string{"replace"}})
	assert.Nil(t, err)
	assert.Equal(t, replace{value: 42}, s.Delegate())
	c := &Counter{}
	result, err := invoke(t, s, c, 1)
	assert.Nil(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 0, c.calls)

	s, err = NewAroundStack(config, Reference{Ids: []string{"twice"}})
	assert.Nil(t, err)
	result, err = invoke(t, s, c, 2)
	assert.Nil(t, err)
	assert.Equal(t, 4, result)
	assert.Equal(t, 2, c.calls)

	s, err = NewAroundStack(config, Reference{Ids: []string{"missing"}})
	assert.Nil(t, err)
	assert.Nil(t, s.Delegate())
	result, err = invoke(t, s, c, 1)
	assert.Nil(t, err)
	assert.Equal(t, 5, result)

	_, err = NewAroundStack(config, Reference{Ids: []string{"replace", "twice"}})
	assert.True(t, errors.Is(err, types.ErrAmbiguousAroundAdvice))
}

type anyError struct {
	calls *int
}

func (a anyError) ErrorType() reflect.Type {
	return reflect.TypeOf((*error)(nil)).Elem()
}

func (a anyError) AfterThrowing(next types.Continuation, inv types.MethodInvocation, err error) error {
	*a.calls++
	return next.Proceed()
}

func TestThrows(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	anyCalls := 0
	limited := errors.New("limited")
	_ = reg.Register("any", anyError{calls: &anyCalls})
	_ = reg.Register("limit", OnError(func(inv types.MethodInvocation, err *limitError) error {
		assert.Equal(t, 100, err.Limit)
		return limited
	}))
	s, err := NewThrowsStack(newConfig(reg), Reference{Ids: []string{"any", "limit"}})
	assert.Nil(t, err)
	c := &Counter{}

	result, err := invoke(t, s, c, 1)
	assert.Nil(t, err)
	assert.Equal(t, 1, result)
	assert.Equal(t, 0, anyCalls)

	// only the error interface advice matches
	_, err = invoke(t, s, c, -1)
	assert.Equal(t, errNegative, err)
	assert.Equal(t, 1, anyCalls)

	_, err = invoke(t, s, c, 101)
	assert.Equal(t, limited, err)
	assert.Equal(t, 2, anyCalls)

	assert.True(t, Matches(&limitError{}, reflect.TypeOf(&limitError{})))
	assert.False(t, Matches(errNegative, reflect.TypeOf(&limitError{})))
	assert.False(t, Matches(errNegative, reflect.TypeOf(0)))
	assert.False(t, Matches(nil, reflect.TypeOf((*error)(nil)).Elem()))
}

func TestStacks(t *testing.T) {
	reg := engine.NewAdviceRegistry()
	var trace []string
	_ = reg.Register("log", types.BeforeFunc(func(inv types.MethodInvocation) error {
		trace = append(trace, "before")
		return nil
	}))
	_ = reg.Register("wrap", OnError(func(inv types.MethodInvocation, err error) error {
		trace = append(trace, "throws")
		return nil
	}))
	owner := &fakeOwner{
		tags: types.Tags{types.NewTag(types.ThrowsTag, map[string]interface{}{"value": "wrap"})},
		method: types.Tags{
			types.NewTag(types.BeforeTag, map[string]interface{}{"value": "log"}),
			types.NewTag(types.ThrowsTag, map[string]interface{}{"value": "wrap", "required": true}),
		},
	}
	stacks, err := Stacks(newConfig(reg), owner, incMethod())
	assert.Nil(t, err)
	assert.Equal(t, 2, len(stacks))
	throws, ok := stacks[0].(*ThrowsStack)
	assert.True(t, ok)
	assert.True(t, throws.Reference().Required)
	_, ok = stacks[1].(*BeforeStack)
	assert.True(t, ok)

	_, err = engine.NewMethodChain(incMethod(), stacks...).Invoke(context.Background(), &Counter{}, -1)
	assert.Equal(t, errNegative, err)
	assert.Equal(t, []string{"before", "throws"}, trace)

	t.Run("OwnerFallback", func(t *testing.T) {
		owner.method = nil
		stacks, err := Stacks(newConfig(reg), owner, incMethod())
		assert.Nil(t, err)
		assert.Equal(t, 1, len(stacks))
		throws, ok := stacks[0].(*ThrowsStack)
		assert.True(t, ok)
		assert.False(t, throws.Reference().Required)
	})

	t.Run("Missing", func(t *testing.T) {
		owner.method = types.Tags{types.NewTag(types.AroundTag, map[string]interface{}{"value": "nope", "required": true})}
		_, err := Stacks(newConfig(reg), owner, incMethod())
		assert.True(t, errors.Is(err, types.ErrRequiredAdviceMissing))
	})

	_, err = NewStack(newConfig(reg), types.Marker("Other"))
	assert.NotNil(t, err)
}

// fakeOwner describes Counter with one set of method tags.
type fakeOwner struct {
	tags   types.Tags
	method types.Tags
}

func (o *fakeOwner) Type() reflect.Type { return counterType }
func (o *fakeOwner) Tags() types.Tags   { return o.tags }
func (o *fakeOwner) ElementMetadata(e types.Element) (types.ElementMetadata, bool) {
	if e.Kind() != types.KindMethod || o.method == nil {
		return nil, false
	}
	return fakeElement{e: e, tags: o.method}, true
}
func (o *fakeOwner) Elements(kind types.ElementKind) []types.Element { return nil }
func (o *fakeOwner) HasFieldTag(name string) bool                    { return false }
func (o *fakeOwner) HasMethodTag(name string) bool                   { return o.method.Has(name) }
func (o *fakeOwner) HasConstructorTag(name string) bool              { return false }
func (o *fakeOwner) HasParameterTag(name string) bool                { return false }

type fakeElement struct {
	e    types.Element
	tags types.Tags
}

func (f fakeElement) Element() types.Element                          { return f.e }
func (f fakeElement) Tags() types.Tags                                { return f.tags }
func (f fakeElement) NumParameters() int                              { return 0 }
func (f fakeElement) Parameter(i int) (types.ParameterMetadata, bool) { return nil, false }
