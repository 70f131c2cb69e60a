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
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rulego/weaver/api/types"
)

// Registry is the default advice registry.
var Registry = NewAdviceRegistry()

var _ types.Provider = (*AdviceRegistry)(nil)

// AdviceRegistry stores advice and interceptors by identifier and resolves the
// identifiers named by advice tags. Capabilities are classified on registration.
type AdviceRegistry struct {
	// advice is a map of registered objects by identifier.
	advice map[string]registered
	// RWMutex is a read/write mutex lock.
	sync.RWMutex
}

type registered struct {
	value interface{}
	caps  Capability
}

// NewAdviceRegistry creates an empty registry.
func NewAdviceRegistry() *AdviceRegistry {
	return &AdviceRegistry{advice: make(map[string]registered)}
}

// Register adds an object under id.
func (r *AdviceRegistry) Register(id string, advice interface{}) error {
	if id == "" {
		return errors.New("advice id is empty")
	}
	if advice == nil {
		return fmt.Errorf("advice %s is nil", id)
	}
	caps := Classify(advice)
	if caps == 0 {
		return fmt.Errorf("%w: %s(%T) is neither advice nor interceptor", types.ErrAdviceTypeMismatch, id, advice)
	}
	r.Lock()
	defer r.Unlock()
	if r.advice == nil {
		r.advice = make(map[string]registered)
	}
	if _, ok := r.advice[id]; ok {
		return fmt.Errorf("%w. id=%s", types.ErrAdviceExists, id)
	}
	r.advice[id] = registered{value: advice, caps: caps}
	return nil
}

// Replace registers advice under id, replacing any previous object.
func (r *AdviceRegistry) Replace(id string, advice interface{}) error {
	_ = r.Unregister(id)
	return r.Register(id, advice)
}

// Unregister removes the object registered under id.
func (r *AdviceRegistry) Unregister(id string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.advice[id]; !ok {
		return fmt.Errorf("%w. id=%s", types.ErrAdviceNotFound, id)
	}
	delete(r.advice, id)
	return nil
}

// Get returns the object registered under id.
func (r *AdviceRegistry) Get(id string) (interface{}, bool) {
	r.RLock()
	defer r.RUnlock()
	a, ok := r.advice[id]
	return a.value, ok
}

// Capabilities returns the capabilities of the object registered under id.
func (r *AdviceRegistry) Capabilities(id string) (Capability, bool) {
	r.RLock()
	defer r.RUnlock()
	a, ok := r.advice[id]
	return a.caps, ok
}

// Names returns the registered identifiers, sorted.
func (r *AdviceRegistry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.advice))
	for id := range r.advice {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
