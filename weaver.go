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

// Package weaver provides a tag-driven interception engine: tags attached to types,
// methods, fields, constructors and parameters select the advice and interceptors
// woven around them.
//
// # Usage
//
// Describe a type and the tags of its members:
//
//	w := weaver.New()
//	_, err := w.Describe(&Account{},
//		metadata.MethodTags("Deposit", types.NewTag(types.BeforeTag, map[string]interface{}{"value": "audit"})),
//	)
//
// Register the advice named by the tags:
//
//	err = w.Register("audit", types.BeforeFunc(func(inv types.MethodInvocation) error {
//		log.Printf("deposit %v", inv.Arguments())
//		return nil
//	}))
//
// Add advisors selecting join points by pointcut:
//
//	w.AddAdvisor(engine.Advisor{Name: "metrics", Interceptors: []interface{}{interceptor.NewMetrics()}})
//
// Call through the woven chains:
//
//	result, err := w.Invoke(ctx, account, "Deposit", 100)
package weaver

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/rulego/weaver/advice"
	"github.com/rulego/weaver/api/types"
	"github.com/rulego/weaver/engine"
	"github.com/rulego/weaver/metadata"
)

// Weaver bundles the configuration, the metadata and advice registries and the
// join-point weaver. Method calls run through the advice stacks named by the
// method's tags first, then through the interceptors of the matching advisors.
type Weaver struct {
	Config types.Config
	// Metadata receives the descriptions made with Describe.
	Metadata *metadata.Registry
	// Advice holds the advice registered with Register. engine.Registry is consulted
	// for identifiers it does not hold.
	Advice *engine.AdviceRegistry

	weaver    *engine.Weaver
	refresher *advice.Refresher
	// methods caches the full chain of each woven method
	methods map[types.ElementKey]*methodEntry
	sync.RWMutex
}

type methodEntry struct {
	chain  *engine.MethodChain
	stacks []types.MethodInterceptor
}

// New creates a weaver. Options are applied after the defaults, so WithMetadata and
// WithProvider replace the built-in registries as lookup and provider.
func New(opts ...types.Option) *Weaver {
	reg := metadata.NewRegistry()
	adv := engine.NewAdviceRegistry()
	defaults := []types.Option{
		types.WithMetadata(reg),
		types.WithProvider(engine.NewCompositeProvider(engine.Registry, adv)),
	}
	config := types.NewConfig(append(defaults, opts...)...)
	return &Weaver{
		Config:    config,
		Metadata:  reg,
		Advice:    adv,
		weaver:    engine.NewWeaver(config.Metadata),
		refresher: advice.NewRefresher(config),
		methods:   make(map[types.ElementKey]*methodEntry),
	}
}

// Describe records the tags of the type of v, a value or reflect.Type.
func (w *Weaver) Describe(v interface{}, opts ...metadata.Option) (*metadata.Owner, error) {
	t := typeOf(v)
	owner, err := w.Metadata.Describe(t, opts...)
	if err != nil {
		return nil, err
	}
	w.forget(owner.Type())
	return owner, nil
}

// Register registers advice or an interceptor under id.
func (w *Weaver) Register(id string, v interface{}) error {
	return w.Advice.Register(id, v)
}

// AddAdvisor adds an advisor; types are woven again on their next use.
func (w *Weaver) AddAdvisor(a engine.Advisor) {
	w.weaver.Add(a)
	w.Lock()
	w.methods = make(map[types.ElementKey]*methodEntry)
	w.Unlock()
}

// Weave returns the woven form of the type of v.
func (w *Weaver) Weave(v interface{}) (*engine.WovenType, error) {
	return w.weaver.Weave(typeOf(v))
}

// MethodChain returns the full chain of the named method of the type of receiver.
func (w *Weaver) MethodChain(receiver interface{}, name string) (*engine.MethodChain, error) {
	wt, err := w.Weave(receiver)
	if err != nil {
		return nil, err
	}
	woven, err := wt.MethodChain(name)
	if err != nil {
		return nil, err
	}
	key := woven.Method().Key()
	w.RLock()
	e, ok := w.methods[key]
	w.RUnlock()
	if ok {
		return e.chain, nil
	}
	stacks, err := advice.Stacks(w.Config, wt.Owner(), woven.Method())
	if err != nil {
		return nil, err
	}
	e = &methodEntry{
		chain:  engine.NewMethodChain(woven.Method(), append(stacks, woven.Interceptors()...)...),
		stacks: stacks,
	}
	w.Lock()
	if cached, ok := w.methods[key]; ok {
		e = cached
	} else {
		w.methods[key] = e
	}
	w.Unlock()
	return e.chain, nil
}

// Invoke calls the named method of receiver through its chain.
func (w *Weaver) Invoke(ctx context.Context, receiver interface{}, name string, args ...interface{}) (interface{}, error) {
	chain, err := w.MethodChain(receiver, name)
	if err != nil {
		return nil, err
	}
	return chain.Invoke(ctx, receiver, args...)
}

// Instantiate runs the constructor registered under label for the type of v.
func (w *Weaver) Instantiate(ctx context.Context, v interface{}, label string, args ...interface{}) (interface{}, error) {
	wt, err := w.Weave(v)
	if err != nil {
		return nil, err
	}
	return wt.Instantiate(ctx, label, args...)
}

// GetField reads the named field of target through its chain.
func (w *Weaver) GetField(ctx context.Context, target interface{}, name string) (interface{}, error) {
	chain, err := w.fieldChain(target, name)
	if err != nil {
		return nil, err
	}
	return chain.Read(ctx, target)
}

// SetField writes value to the named field of target through its chain and returns
// the committed value. target must be a pointer.
func (w *Weaver) SetField(ctx context.Context, target interface{}, name string, value interface{}) (interface{}, error) {
	chain, err := w.fieldChain(target, name)
	if err != nil {
		return nil, err
	}
	return chain.Write(ctx, target, value)
}

func (w *Weaver) fieldChain(target interface{}, name string) (*engine.FieldChain, error) {
	wt, err := w.Weave(target)
	if err != nil {
		return nil, err
	}
	return wt.FieldChain(name)
}

// Reload resolves the advice of every cached stack again. The first error is
// returned after all stacks were reloaded.
func (w *Weaver) Reload() error {
	var first error
	for _, s := range w.reloaders() {
		if err := s.Reload(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RefreshEvery reloads the cached stacks on the cron spec, which has a seconds field,
// and starts the schedule. It returns the schedule id.
func (w *Weaver) RefreshEvery(spec string) (string, error) {
	id, err := w.refresher.Schedule(spec, reloadFunc(w.Reload))
	if err != nil {
		return "", err
	}
	w.refresher.Start()
	return id, nil
}

// Stop stops the refresh schedules and releases the pool.
func (w *Weaver) Stop() {
	w.refresher.Stop()
	if w.Config.Pool != nil {
		w.Config.Pool.Release()
	}
}

func (w *Weaver) reloaders() []advice.Reloader {
	w.RLock()
	defer w.RUnlock()
	var out []advice.Reloader
	for _, e := range w.methods {
		for _, s := range e.stacks {
			if r, ok := s.(advice.Reloader); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func (w *Weaver) forget(t reflect.Type) {
	w.weaver.Invalidate(t)
	w.Lock()
	defer w.Unlock()
	for k := range w.methods {
		if k.Owner == t {
			delete(w.methods, k)
		}
	}
}

type reloadFunc func() error

func (f reloadFunc) Reload() error {
	return f()
}

func typeOf(v interface{}) reflect.Type {
	if t, ok := v.(reflect.Type); ok {
		return types.Indirect(t)
	}
	return types.Indirect(reflect.TypeOf(v))
}

func (w *Weaver) String() string {
	return fmt.Sprintf("weaver(types=%d, advice=%v)", len(w.Metadata.Types()), w.Advice.Names())
}
