package service

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strconv"

	"vunderkids_backend/internal/model"
)

// AnswerValidator grades a submitted answer against the stored correct
// answer. It is pure: no storage, no side effects, and it never rejects a
// submission — a malformed or unrecognized payload simply grades incorrect.
type AnswerValidator struct{}

func NewAnswerValidator() *AnswerValidator {
	return &AnswerValidator{}
}

// Validate grades by question type. Choice-like types compare a single
// numeric value, drag_and_drop compares an ordered sequence, mark_all
// compares as a set. Unknown types grade incorrect.
func (v *AnswerValidator) Validate(questionType model.QuestionType, correct, submitted json.RawMessage) bool {
	switch questionType {
	case model.MultipleChoiceText, model.MultipleChoiceImages,
		model.TrueFalse, model.NumberLine, model.DragPosition:
		return intEqual(correct, submitted)
	case model.DragAndDropText, model.DragAndDropImages:
		return sequenceEqual(correct, submitted)
	case model.MarkAll:
		return setEqual(correct, submitted)
	}
	return false
}

// asInt coerces a JSON value to an integer. Numbers and numeric strings both
// qualify, so "3" and 3 grade the same.
func asInt(raw json.RawMessage) (int64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, true
		}
	}

	return 0, false
}

func intEqual(correct, submitted json.RawMessage) bool {
	a, ok := asInt(correct)
	if !ok {
		return false
	}
	b, ok := asInt(submitted)
	if !ok {
		return false
	}
	return a == b
}

// sequenceEqual compares two JSON values structurally, order included.
func sequenceEqual(correct, submitted json.RawMessage) bool {
	var a, b interface{}
	if err := json.Unmarshal(correct, &a); err != nil {
		return false
	}
	if err := json.Unmarshal(submitted, &b); err != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

// setEqual compares two JSON arrays ignoring order and duplicates. Elements
// are keyed by their canonical re-marshaled form so 1 and "1" stay distinct
// but object key order does not matter.
func setEqual(correct, submitted json.RawMessage) bool {
	a, ok := elementSet(correct)
	if !ok {
		return false
	}
	b, ok := elementSet(submitted)
	if !ok {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

func elementSet(raw json.RawMessage) (map[string]bool, bool) {
	var elems []interface{}
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	set := make(map[string]bool, len(elems))
	for _, e := range elems {
		key, err := json.Marshal(e)
		if err != nil {
			return nil, false
		}
		set[string(key)] = true
	}
	return set, true
}
