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
	"fmt"
	"reflect"
	"sync"

	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/pointcut"
)

// Advisor pairs a pointcut with the interceptors applied to the join points it selects.
type Advisor struct {
	// Name identifies the advisor in WovenType.Advisors.
	Name     string
	Pointcut pointcut.Pointcut
	// Interceptors holds method, construction and field interceptors; each is applied
	// to the join points of the kinds it can intercept.
	Interceptors []interface{}
}

type compiledAdvisor struct {
	Advisor
	list *InterceptorList
}

// Weaver selects join points of owner types with the pointcuts of its advisors and
// builds their chains. Static filters are evaluated once per type; runtime-checked
// method filters are evaluated again on every call with the live arguments.
type Weaver struct {
	lookup   types.MetadataLookup
	advisors []compiledAdvisor
	woven    map[reflect.Type]*WovenType
	// gen changes whenever cached woven types go stale.
	gen uint64
	sync.RWMutex
}

// NewWeaver creates a weaver resolving owner metadata through lookup.
func NewWeaver(lookup types.MetadataLookup, advisors ...Advisor) *Weaver {
	w := &Weaver{lookup: lookup, woven: make(map[reflect.Type]*WovenType)}
	for _, a := range advisors {
		w.Add(a)
	}
	return w
}

// Add appends an advisor. Advisors apply in the order they were added.
// Previously woven types are woven again on their next Weave.
func (w *Weaver) Add(a Advisor) {
	w.Lock()
	defer w.Unlock()
	w.advisors = append(w.advisors, compiledAdvisor{Advisor: a, list: NewInterceptorList(a.Interceptors...)})
	w.woven = make(map[reflect.Type]*WovenType)
	w.gen++
}

// Invalidate drops the woven form of t, so that changed metadata is picked up on the next Weave.
func (w *Weaver) Invalidate(t reflect.Type) {
	w.Lock()
	defer w.Unlock()
	delete(w.woven, types.Indirect(t))
	w.gen++
}

// Advisors returns the advisor names in application order.
func (w *Weaver) Advisors() []string {
	w.RLock()
	defer w.RUnlock()
	names := make([]string, len(w.advisors))
	for i, a := range w.advisors {
		names[i] = a.Name
	}
	return names
}

// Weave returns the woven form of t, building it on first use. A form built while
// advisors were added or t was invalidated is returned but not cached.
func (w *Weaver) Weave(t reflect.Type) (*WovenType, error) {
	t = types.Indirect(t)
	w.RLock()
	wt, ok := w.woven[t]
	gen, advisors := w.gen, w.advisors
	w.RUnlock()
	if ok {
		return wt, nil
	}
	if w.lookup == nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNoOwnerMetadata, t)
	}
	owner, ok := w.lookup.Owner(t)
	if !ok {
		return nil, fmt.Errorf("%w: %v", types.ErrNoOwnerMetadata, t)
	}
	wt = weaveOwner(owner, advisors)
	w.Lock()
	defer w.Unlock()
	if w.gen != gen {
		return wt, nil
	}
	if cached, ok := w.woven[t]; ok {
		return cached, nil
	}
	w.woven[t] = wt
	return wt, nil
}

// WeaveOwner builds the woven form of owner without caching it.
func (w *Weaver) WeaveOwner(owner types.OwnerMetadata) *WovenType {
	w.RLock()
	advisors := w.advisors
	w.RUnlock()
	return weaveOwner(owner, advisors)
}

func weaveOwner(owner types.OwnerMetadata, advisors []compiledAdvisor) *WovenType {
	wt := &WovenType{
		owner:   owner,
		methods: make(map[string]*MethodChain),
		ctors:   make(map[string]*ConstructionChain),
		fields:  make(map[string]*FieldChain),
		advised: make(map[types.ElementKey][]string),
	}
	typeRecord := pointcut.TypeRecord(owner, types.NewTypeElement(owner.Type()))
	var applicable []compiledAdvisor
	for _, a := range advisors {
		if a.Pointcut.ClassFilter().Matches(typeRecord) {
			applicable = append(applicable, a)
		}
	}
	for _, e := range owner.Elements(types.KindMethod) {
		if m, ok := e.(types.MethodElement); ok {
			wt.methods[m.Name()] = wt.weaveMethod(applicable, m)
		}
	}
	for _, e := range owner.Elements(types.KindConstructor) {
		if c, ok := e.(types.ConstructorElement); ok {
			wt.ctors[c.Name()] = wt.weaveConstructor(applicable, c)
		}
	}
	for _, e := range owner.Elements(types.KindField) {
		if f, ok := e.(types.FieldElement); ok {
			wt.fields[f.Name()] = wt.weaveField(applicable, f)
		}
	}
	return wt
}

// WovenType holds the chains of the methods, constructors and fields of one owner type.
type WovenType struct {
	owner   types.OwnerMetadata
	methods map[string]*MethodChain
	ctors   map[string]*ConstructionChain
	fields  map[string]*FieldChain
	advised map[types.ElementKey][]string
}

func (wt *WovenType) weaveMethod(advisors []compiledAdvisor, m types.MethodElement) *MethodChain {
	record := pointcut.MethodRecord(wt.owner, m)
	var interceptors []types.MethodInterceptor
	for _, a := range advisors {
		list := a.list.Method()
		if len(list) == 0 || !wt.parametersMatch(a.Pointcut, m) {
			continue
		}
		filter := a.Pointcut.MethodFilter()
		if filter.IsRuntimeChecked() {
			interceptors = append(interceptors, &runtimeGuard{filter: filter, record: record, chain: NewMethodChain(m, list...)})
		} else if filter.Matches(record) {
			interceptors = append(interceptors, list...)
		} else {
			continue
		}
		wt.advised[m.Key()] = append(wt.advised[m.Key()], a.Name)
	}
	return NewMethodChain(m, interceptors...)
}

// parametersMatch reports whether the parameter filter of p is universal or matches
// at least one parameter of m.
func (wt *WovenType) parametersMatch(p pointcut.Pointcut, m types.MethodElement) bool {
	filter := p.ParameterFilter()
	if pointcut.IsUniversal(filter) {
		return true
	}
	for i := 0; i < m.NumIn(); i++ {
		if filter.Matches(pointcut.ParameterRecord(wt.owner, m, i)) {
			return true
		}
	}
	return false
}

func (wt *WovenType) weaveConstructor(advisors []compiledAdvisor, c types.ConstructorElement) *ConstructionChain {
	record := pointcut.ConstructorRecord(wt.owner, c)
	var interceptors []types.ConstructorInterceptor
	for _, a := range advisors {
		list := a.list.Constructor()
		if len(list) == 0 || !a.Pointcut.ConstructorFilter().Matches(record) {
			continue
		}
		interceptors = append(interceptors, list...)
		wt.advised[c.Key()] = append(wt.advised[c.Key()], a.Name)
	}
	return NewConstructionChain(c, append(interceptors, Instantiator())...)
}

func (wt *WovenType) weaveField(advisors []compiledAdvisor, f types.FieldElement) *FieldChain {
	record := pointcut.FieldRecord(wt.owner, f)
	chain := &FieldChain{field: f}
	for _, a := range advisors {
		if !a.list.Capabilities().Has(CapFieldRead) && !a.list.Capabilities().Has(CapFieldWrite) {
			continue
		}
		if !a.Pointcut.FieldFilter().Matches(record) {
			continue
		}
		chain.readers = append(chain.readers, a.list.FieldRead()...)
		chain.writers = append(chain.writers, a.list.FieldWrite()...)
		wt.advised[f.Key()] = append(wt.advised[f.Key()], a.Name)
	}
	return chain
}

// Owner returns the metadata of the woven type.
func (wt *WovenType) Owner() types.OwnerMetadata {
	return wt.owner
}

// Advisors returns the names of the advisors applied to e.
func (wt *WovenType) Advisors(e types.Element) []string {
	return wt.advised[e.Key()]
}

// MethodChain returns the chain of the named method.
func (wt *WovenType) MethodChain(name string) (*MethodChain, error) {
	c, ok := wt.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", types.ErrMethodNotFound, wt.owner.Type(), name)
	}
	return c, nil
}

// Invoke calls the named method on receiver through its chain.
func (wt *WovenType) Invoke(ctx context.Context, receiver interface{}, name string, args ...interface{}) (interface{}, error) {
	c, err := wt.MethodChain(name)
	if err != nil {
		return nil, err
	}
	return c.Invoke(ctx, receiver, args...)
}

// ConstructionChain returns the chain of the named constructor. It ends with Instantiator.
func (wt *WovenType) ConstructionChain(label string) (*ConstructionChain, error) {
	c, ok := wt.ctors[label]
	if !ok {
		return nil, fmt.Errorf("constructor %s.%s not found", wt.owner.Type(), label)
	}
	return c, nil
}

// Instantiate runs the named constructor through its chain.
func (wt *WovenType) Instantiate(ctx context.Context, label string, args ...interface{}) (interface{}, error) {
	c, err := wt.ConstructionChain(label)
	if err != nil {
		return nil, err
	}
	return c.Instantiate(ctx, args...)
}

// FieldChain returns the chain of the named field.
func (wt *WovenType) FieldChain(name string) (*FieldChain, error) {
	c, ok := wt.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: field %s.%s not found", types.ErrNotSettable, wt.owner.Type(), name)
	}
	return c, nil
}

// runtimeGuard applies the interceptors of one advisor only when its runtime-checked
// filter matches the live arguments of the call.
type runtimeGuard struct {
	filter types.Filter
	record types.MatchingRecord
	chain  *MethodChain
}

func (g *runtimeGuard) Invoke(inv types.MethodInvocation) (interface{}, error) {
	if !g.filter.Matches(g.record.WithArgs(inv.Arguments())) {
		return inv.Proceed()
	}
	return g.chain.nested(inv)
}

// nested runs the chain inside the operation of outer; its terminal action proceeds
// along outer.
func (c *MethodChain) nested(outer types.MethodInvocation) (interface{}, error) {
	inner := c.WithInvoker(func(context.Context, interface{}, []interface{}) (interface{}, error) {
		return outer.Proceed()
	})
	var op *operation
	if o, ok := outer.(*MethodInvocation); ok {
		op = o.op
	} else {
		op = newOperation(outer.Context(), outer.This(), c.method)
	}
	return (&MethodInvocation{cursor: cursor{op: op, pos: -1}, chain: inner, args: outer.Arguments()}).Proceed()
}
