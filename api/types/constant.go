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
	"errors"
	"fmt"
)

// Tag names read by the advice stacks.
const (
	BeforeTag         = "Before"
	AfterReturningTag = "AfterReturning"
	AroundTag         = "Around"
	ThrowsTag         = "Throws"
)

// Attribute keys of the advice tags.
const (
	AttrValue          = "value"
	AttrIds            = "ids"
	AttrRequired       = "required"
	AttrRuntimeLoading = "runtimeLoading"
	AttrParallel       = "parallel"
)

var (
	// ErrRequiredAdviceMissing is returned when a required advice reference resolves to nothing.
	ErrRequiredAdviceMissing = errors.New("required advice missing")
	// ErrAdviceTypeMismatch is returned when a resolved object does not implement the advice kind of the stack.
	ErrAdviceTypeMismatch = errors.New("advice type mismatch")
	// ErrAmbiguousAroundAdvice is returned when an around stack resolves more than one delegate.
	ErrAmbiguousAroundAdvice = errors.New("at most one around advice is allowed")
	// ErrUnknownCombinator is raised for a tag combinator other than AND or OR.
	ErrUnknownCombinator = errors.New("unknown tag combinator")
	// ErrInvalidTagCombination is returned for a malformed tag-combination configuration.
	ErrInvalidTagCombination = errors.New("invalid tag combination")
	// ErrRecordKindMismatch is returned when a matching record is read as the wrong kind.
	ErrRecordKindMismatch = errors.New("matching record kind mismatch")
	// ErrAdviceExists is returned when an identifier is registered twice.
	ErrAdviceExists = errors.New("advice already exists")
	// ErrAdviceNotFound is returned when unregistering an unknown identifier.
	ErrAdviceNotFound = errors.New("advice not found")
	// ErrNoOwnerMetadata is returned when a type has no metadata.
	ErrNoOwnerMetadata = errors.New("no owner metadata")
	// ErrNotSettable is returned when a field cannot be read or written through reflection.
	ErrNotSettable = errors.New("field not accessible")
	// ErrMethodNotFound is returned when a method name does not exist on the owner type.
	ErrMethodNotFound = errors.New("method not found")
)

// RequiredAdviceMissingError carries the identifier that could not be resolved.
type RequiredAdviceMissingError struct {
	// Id is the missing identifier.
	Id string
	// Tag is the tag that referenced it.
	Tag string
}

func (e *RequiredAdviceMissingError) Error() string {
	return fmt.Sprintf("%s: id=%s tag=%s", ErrRequiredAdviceMissing.Error(), e.Id, e.Tag)
}

func (e *RequiredAdviceMissingError) Is(target error) bool {
	return target == ErrRequiredAdviceMissing
}
