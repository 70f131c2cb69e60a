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
	"strings"

	"github.com/rulego/weaver/api/types"
)

// Combinator combines the presence of several tags.
type Combinator int

const (
	// CombineAnd requires every tag.
	CombineAnd Combinator = iota + 1
	// CombineOr requires at least one tag.
	CombineOr
)

func (c Combinator) String() string {
	switch c {
	case CombineAnd:
		return "AND"
	case CombineOr:
		return "OR"
	default:
		return fmt.Sprintf("Combinator(%d)", int(c))
	}
}

// UnmarshalText parses "AND" or "OR", case-insensitively.
func (c *Combinator) UnmarshalText(text []byte) error {
	switch strings.ToUpper(strings.TrimSpace(string(text))) {
	case "AND":
		*c = CombineAnd
	case "OR":
		*c = CombineOr
	default:
		return fmt.Errorf("%w: %q", types.ErrUnknownCombinator, text)
	}
	return nil
}

// Mode is the granularity at which tag presence is tested.
type Mode int

const (
	// AnywhereOnOwner tests the owning type: its own tags or the tags of any of its members.
	AnywhereOnOwner Mode = iota + 1
	// OnThisElement tests the exact element of the record.
	OnThisElement
)

func (m Mode) String() string {
	switch m {
	case AnywhereOnOwner:
		return "AnywhereOnOwner"
	case OnThisElement:
		return "OnThisElement"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// UnmarshalText parses "AnywhereOnOwner" or "OnThisElement", case-insensitively.
func (m *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "anywhereonowner", "owner":
		*m = AnywhereOnOwner
	case "onthiselement", "element":
		*m = OnThisElement
	default:
		return fmt.Errorf("%w: unknown mode %q", types.ErrInvalidTagCombination, text)
	}
	return nil
}

// TagMatcherConfig configures a TagMatcher.
type TagMatcherConfig struct {
	// Tags is the ordered, non-empty set of required tag names.
	Tags []string
	// Combinator is CombineAnd or CombineOr.
	Combinator Combinator
	// Mode is AnywhereOnOwner or OnThisElement.
	Mode Mode
}

// DecodeTagMatcherConfig reads a configuration from the attributes of tag:
// tags (list or comma separated string), combinator and mode.
func DecodeTagMatcherConfig(tag types.Tag) (TagMatcherConfig, error) {
	var cfg TagMatcherConfig
	if err := tag.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", types.ErrInvalidTagCombination, err)
	}
	return cfg, nil
}

// TagMatcher decides tag presence for records of every element kind under one
// combinator and mode. It is immutable and safe for concurrent use.
type TagMatcher struct {
	tags       []string
	combinator Combinator
	mode       Mode
}

// NewTagMatcher validates cfg and returns the matcher.
func NewTagMatcher(cfg TagMatcherConfig) (*TagMatcher, error) {
	if len(cfg.Tags) == 0 {
		return nil, fmt.Errorf("%w: no tags", types.ErrInvalidTagCombination)
	}
	for i, t := range cfg.Tags {
		if t == "" {
			return nil, fmt.Errorf("%w: empty tag name at %d", types.ErrInvalidTagCombination, i)
		}
	}
	if cfg.Combinator != CombineAnd && cfg.Combinator != CombineOr {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownCombinator, cfg.Combinator)
	}
	if cfg.Mode != AnywhereOnOwner && cfg.Mode != OnThisElement {
		return nil, fmt.Errorf("%w: unknown mode %s", types.ErrInvalidTagCombination, cfg.Mode)
	}
	tags := make([]string, len(cfg.Tags))
	copy(tags, cfg.Tags)
	return &TagMatcher{tags: tags, combinator: cfg.Combinator, mode: cfg.Mode}, nil
}

// MustTagMatcher is like NewTagMatcher but panics on error.
func MustTagMatcher(cfg TagMatcherConfig) *TagMatcher {
	m, err := NewTagMatcher(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// Match evaluates the tags in order, short-circuiting on the first tag that decides
// the result. It panics with ErrUnknownCombinator for a combinator other than AND or OR.
func (m *TagMatcher) Match(record types.MatchingRecord) bool {
	switch m.combinator {
	case CombineOr:
		for _, tag := range m.tags {
			if m.present(tag, record) {
				return true
			}
		}
		return false
	case CombineAnd:
		for _, tag := range m.tags {
			if !m.present(tag, record) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Errorf("%w: %s", types.ErrUnknownCombinator, m.combinator))
	}
}

func (m *TagMatcher) present(tag string, record types.MatchingRecord) bool {
	if m.mode == OnThisElement {
		return presentOnElement(tag, record)
	}
	return presentOnOwner(tag, record)
}

func presentOnOwner(tag string, record types.MatchingRecord) bool {
	owner := record.Owner
	if owner == nil {
		return false
	}
	if owner.Tags().Has(tag) {
		return true
	}
	switch record.Kind {
	case types.KindField:
		return owner.HasFieldTag(tag)
	case types.KindMethod:
		return owner.HasMethodTag(tag)
	case types.KindConstructor:
		return owner.HasConstructorTag(tag)
	case types.KindParameter:
		return owner.HasParameterTag(tag)
	case types.KindType:
		return owner.HasFieldTag(tag) || owner.HasMethodTag(tag) ||
			owner.HasConstructorTag(tag) || owner.HasParameterTag(tag)
	default:
		return false
	}
}

func presentOnElement(tag string, record types.MatchingRecord) bool {
	if !interpretable(record) {
		return false
	}
	if record.Kind == types.KindType {
		return record.Owner.Tags().Has(tag)
	}
	md, ok := record.Owner.ElementMetadata(record.Element)
	if !ok {
		return false
	}
	if record.Kind != types.KindParameter {
		return md.Tags().Has(tag)
	}
	pm, ok := md.Parameter(record.ParameterIndex)
	if !ok || pm.Enclosing() == nil || pm.Enclosing().Key() != record.Element.Key() {
		return false
	}
	return pm.Tags().Has(tag)
}

// interpretable reports whether the record's owner metadata describes the element's declaring type.
func interpretable(record types.MatchingRecord) bool {
	if record.Owner == nil || record.Element == nil {
		return false
	}
	t := record.Element.DeclaringType()
	return t != nil && record.Owner.Type() == t
}

// ClassFilter returns the type filter of the matcher.
func (m *TagMatcher) ClassFilter() types.Filter { return &tagFilter{m: m, kind: types.KindType} }

// ConstructorFilter returns the constructor filter of the matcher.
func (m *TagMatcher) ConstructorFilter() types.Filter {
	return &tagFilter{m: m, kind: types.KindConstructor}
}

// FieldFilter returns the field filter of the matcher.
func (m *TagMatcher) FieldFilter() types.Filter { return &tagFilter{m: m, kind: types.KindField} }

// MethodFilter returns the method filter of the matcher.
func (m *TagMatcher) MethodFilter() types.Filter { return &tagFilter{m: m, kind: types.KindMethod} }

// ParameterFilter returns the parameter filter of the matcher.
func (m *TagMatcher) ParameterFilter() types.Filter {
	return &tagFilter{m: m, kind: types.KindParameter}
}

// Pointcut bundles the five filters of the matcher.
func (m *TagMatcher) Pointcut() Pointcut {
	return NewBuilder().
		Class(m.ClassFilter()).
		Constructor(m.ConstructorFilter()).
		Field(m.FieldFilter()).
		Method(m.MethodFilter()).
		Parameter(m.ParameterFilter()).
		MustBuild()
}

func (m *TagMatcher) String() string {
	return fmt.Sprintf("tags(%s %s %s)", strings.Join(m.tags, ","), m.combinator, m.mode)
}

type tagFilter struct {
	m    *TagMatcher
	kind types.ElementKind
}

func (f *tagFilter) Kind() types.ElementKind { return f.kind }

func (f *tagFilter) Matches(record types.MatchingRecord) bool {
	return record.Kind == f.kind && f.m.Match(record)
}

func (f *tagFilter) IsRuntimeChecked() bool { return false }
