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

package reflect

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rulego/weaver/test/assert"
)

type ctxKey struct{}

func TestCall(t *testing.T) {
	t.Run("Value", func(t *testing.T) {
		out, err := Call(context.Background(), reflect.ValueOf(strings.Repeat), []interface{}{"ab", 2})
		assert.Nil(t, err)
		assert.Equal(t, "abab", out)
	})
	t.Run("Error", func(t *testing.T) {
		boom := errors.New("boom")
		out, err := Call(context.Background(), reflect.ValueOf(func(n int) (int, error) { return n, boom }), []interface{}{int64(3)})
		assert.Equal(t, boom, err)
		assert.Equal(t, 3, out)
	})
	t.Run("Multiple", func(t *testing.T) {
		out, err := Call(context.Background(), reflect.ValueOf(func() (int, string) { return 1, "a" }), nil)
		assert.Nil(t, err)
		assert.Equal(t, []interface{}{1, "a"}, out)
	})
	t.Run("None", func(t *testing.T) {
		out, err := Call(context.Background(), reflect.ValueOf(func(p *int) {}), []interface{}{nil})
		assert.Nil(t, err)
		assert.Nil(t, out)
	})
	t.Run("Context", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ctxKey{}, "v")
		fn := func(ctx context.Context, s string) string { return ctx.Value(ctxKey{}).(string) + s }
		out, err := Call(ctx, reflect.ValueOf(fn), []interface{}{"1"})
		assert.Nil(t, err)
		assert.Equal(t, "v1", out)
	})
	t.Run("Variadic", func(t *testing.T) {
		fn := func(sep string, parts ...string) string { return strings.Join(parts, sep) }
		out, err := Call(context.Background(), reflect.ValueOf(fn), []interface{}{"-", "a", "b"})
		assert.Nil(t, err)
		assert.Equal(t, "a-b", out)
		_, err = Call(context.Background(), reflect.ValueOf(fn), nil)
		assert.True(t, errors.Is(err, ErrArgumentMismatch))
	})
	t.Run("Mismatch", func(t *testing.T) {
		_, err := Call(context.Background(), reflect.ValueOf(strings.Repeat), []interface{}{"ab"})
		assert.True(t, errors.Is(err, ErrArgumentMismatch))
		_, err = Call(context.Background(), reflect.ValueOf(strings.Repeat), []interface{}{"ab", "x"})
		assert.True(t, errors.Is(err, ErrArgumentMismatch))
	})
}
