package course

import (
	"bytes"
	"encoding/json"
	"fmt"
)

var jsonNull = []byte("null")

// Text is a string field the export sometimes writes as a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Instructors decodes a list of instructors. An empty string or null decodes
// to an empty list.
type Instructors []Instructor

func (in *Instructors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) || bytes.Equal(data, []byte(`""`)) {
		*in = nil
		return nil
	}
	var list []Instructor
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("instructors: %w", err)
	}
	*in = list
	return nil
}

// ExtraCourseNumbers decodes extra_course_number, which is either a single
// object or an array of them.
type ExtraCourseNumbers []ExtraCourseNumber

func (e *ExtraCourseNumbers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, jsonNull), bytes.Equal(data, []byte(`""`)):
		*e = nil
		return nil
	case data[0] == '{':
		var one ExtraCourseNumber
		if err := json.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("extra_course_number: %w", err)
		}
		*e = ExtraCourseNumbers{one}
		return nil
	default:
		var list []ExtraCourseNumber
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("extra_course_number: %w", err)
		}
		*e = list
		return nil
	}
}
