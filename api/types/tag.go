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

package types

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/rulego/weaver/utils/maps"
)

// LazyValue is an attribute value computed when it is first read.
type LazyValue func() interface{}

// Tag 元数据标签：附着在程序元素上的标记，可带有命名属性
// Tag is a named marker attached to a declared element, with optional named attributes.
// Tag is an immutable value: attributes are copied on construction and never exposed for mutation.
type Tag struct {
	name  string
	attrs map[string]interface{}
}

// NewTag creates a tag. The attribute map is copied.
func NewTag(name string, attrs map[string]interface{}) Tag {
	t := Tag{name: name}
	if len(attrs) > 0 {
		t.attrs = make(map[string]interface{}, len(attrs))
		for k, v := range attrs {
			t.attrs[k] = v
		}
	}
	return t
}

// Marker creates a tag without attributes.
func Marker(name string) Tag {
	return Tag{name: name}
}

func (t Tag) Name() string {
	return t.name
}

// Attr returns the named attribute, resolving lazy values.
func (t Tag) Attr(name string) (interface{}, bool) {
	v, ok := t.attrs[name]
	if !ok {
		return nil, false
	}
	if lazy, ok := v.(LazyValue); ok {
		return lazy(), true
	}
	return v, true
}

// AttrNames returns the attribute names in sorted order.
func (t Tag) AttrNames() []string {
	names := make([]string, 0, len(t.attrs))
	for k := range t.attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Attributes returns a resolved copy of all attributes.
func (t Tag) Attributes() map[string]interface{} {
	out := make(map[string]interface{}, len(t.attrs))
	for k := range t.attrs {
		out[k], _ = t.Attr(k)
	}
	return out
}

// Decode decodes the resolved attributes into out, which must be a pointer to a struct or map.
func (t Tag) Decode(out interface{}) error {
	if err := maps.Map2Struct(t.Attributes(), out); err != nil {
		return fmt.Errorf("decode tag %s: %w", t.name, err)
	}
	return nil
}

// Equal reports structural equality: same name and equal resolved attributes.
func (t Tag) Equal(other Tag) bool {
	if t.name != other.name || len(t.attrs) != len(other.attrs) {
		return false
	}
	for k := range t.attrs {
		a, _ := t.Attr(k)
		b, ok := other.Attr(k)
		if !ok || !reflect.DeepEqual(a, b) {
			return false
		}
	}
	return true
}

func (t Tag) String() string {
	if len(t.attrs) == 0 {
		return "@" + t.name
	}
	var sb strings.Builder
	sb.WriteString("@")
	sb.WriteString(t.name)
	sb.WriteString("(")
	for i, k := range t.AttrNames() {
		if i > 0 {
			sb.WriteString(", ")
		}
		v, _ := t.Attr(k)
		fmt.Fprintf(&sb, "%s=%v", k, v)
	}
	sb.WriteString(")")
	return sb.String()
}

// Tags is an ordered list of tags attached to one element.
type Tags []Tag

// Has reports whether a tag with the given name is present.
func (ts Tags) Has(name string) bool {
	_, ok := ts.Get(name)
	return ok
}

// Get returns the first tag with the given name.
func (ts Tags) Get(name string) (Tag, bool) {
	for _, t := range ts {
		if t.name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// Names returns the tag names in attachment order.
func (ts Tags) Names() []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.name
	}
	return names
}
