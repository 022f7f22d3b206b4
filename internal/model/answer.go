package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// AnswerValue holds either a scalar string or a list of strings
type AnswerValue struct {
	text   string
	values []string
	multi  bool
}

// Scalar builds a single-value answer (text, select, radio, email, url)
func Scalar(s string) AnswerValue {
	return AnswerValue{text: s}
}

// List builds a multi-select answer
func List(values ...string) AnswerValue {
	out := make([]string, len(values))
	copy(out, values)
	return AnswerValue{values: out, multi: true}
}

// IsList reports whether the value is a multi-select list
func (v AnswerValue) IsList() bool {
	return v.multi
}

// Text returns the scalar value, or "" for lists
func (v AnswerValue) Text() string {
	if v.multi {
		return ""
	}
	return v.text
}

// Values returns the list value. A non-empty scalar is returned as a one-item list.
func (v AnswerValue) Values() []string {
	if v.multi {
		out := make([]string, len(v.values))
		copy(out, v.values)
		return out
	}
	if strings.TrimSpace(v.text) == "" {
		return nil
	}
	return []string{v.text}
}

// Defined reports whether the value counts as an answer for required gating
func (v AnswerValue) Defined() bool {
	if v.multi {
		return len(v.values) > 0
	}
	return strings.TrimSpace(v.text) != ""
}

// Equal compares two values structurally
func (v AnswerValue) Equal(o AnswerValue) bool {
	if v.multi != o.multi {
		return false
	}
	if !v.multi {
		return v.text == o.text
	}
	if len(v.values) != len(o.values) {
		return false
	}
	for i := range v.values {
		if v.values[i] != o.values[i] {
			return false
		}
	}
	return true
}

func (v AnswerValue) String() string {
	if v.multi {
		return strings.Join(v.values, ", ")
	}
	return v.text
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.multi {
		if v.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.values)
	}
	return json.Marshal(v.text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*v = AnswerValue{}
		return nil
	case data[0] == '[':
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("answer list must contain strings: %w", err)
		}
		*v = List(values...)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Scalar(s)
		return nil
	}
	return fmt.Errorf("answer must be a string or a list of strings")
}

// MarshalBSONValue stores scalars as BSON strings and lists as BSON arrays
func (v AnswerValue) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if v.multi {
		values := v.values
		if values == nil {
			values = []string{}
		}
		return bson.MarshalValue(values)
	}
	return bson.MarshalValue(v.text)
}

func (v *AnswerValue) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*v = Scalar(raw.StringValue())
		return nil
	case bsontype.Array:
		var values []string
		if err := raw.Unmarshal(&values); err != nil {
			return err
		}
		*v = List(values...)
		return nil
	case bsontype.Null, bsontype.Undefined:
		*v = AnswerValue{}
		return nil
	}
	return fmt.Errorf("unexpected BSON type %s for answer", t)
}

// AnswerSet maps question IDs to answers
type AnswerSet map[string]AnswerValue

// Set inserts or replaces the answer for a question
func (a AnswerSet) Set(questionID string, value AnswerValue) {
	a[questionID] = value
}

// Get returns the answer for a question and whether it was present
func (a AnswerSet) Get(questionID string) (AnswerValue, bool) {
	v, ok := a[questionID]
	return v, ok
}

// Scalar returns the scalar answer for a question, "" when absent
func (a AnswerSet) Scalar(questionID string) string {
	return a[questionID].Text()
}

// List returns the list answer for a question, nil when absent
func (a AnswerSet) List(questionID string) []string {
	return a[questionID].Values()
}

// Defined reports whether the question has a usable answer
func (a AnswerSet) Defined(questionID string) bool {
	v, ok := a[questionID]
	return ok && v.Defined()
}

// Clone returns a deep copy
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		if v.multi {
			out[k] = List(v.values...)
		} else {
			out[k] = v
		}
	}
	return out
}
