package event

import (
	"bytes"
	"encoding/json"
	"math"

	everrors "github.com/hrygo/searchviz/server/internal/errors"
)

// fields is the raw wire object. Values are decoded lazily so that only the
// fields an event kind reads are type-checked; anything else may hold any
// JSON value.
type fields map[string]json.RawMessage

// Decode parses one raw event and validates the fields its kind requires.
// Unknown event types decode to Unknown without error.
func Decode(data []byte) (Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, everrors.InvalidPayload(nil)
	}

	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, everrors.InvalidPayload(err)
	}

	// A non-string event_type matches no kind; a non-string message_id is
	// replaced at ingestion.
	eventType, _ := f.optionalString("event_type")
	messageID, _ := f.optionalString("message_id")
	meta := Meta{MsgID: messageID}

	switch Type(eventType) {
	case TypeNewNode:
		id, err := f.requiredID(eventType, "id")
		if err != nil {
			return nil, err
		}
		ev := NewNode{Meta: meta, ID: id}
		for name, dst := range map[string]*string{
			"node_type":           &ev.NodeType,
			"node_class":          &ev.NodeClass,
			"predecessor":         &ev.Predecessor,
			"specified_interface": &ev.SpecifiedInterface,
		} {
			if *dst, err = f.optionalString(name); err != nil {
				return nil, err
			}
		}
		return ev, nil

	case TypeWeightUpdate:
		from, err := f.requiredString(eventType, "from")
		if err != nil {
			return nil, err
		}
		to, err := f.requiredString(eventType, "to")
		if err != nil {
			return nil, err
		}
		weight, err := f.requiredNumber(eventType, "weight")
		if err != nil {
			return nil, err
		}
		return WeightUpdate{Meta: meta, From: from, To: to, Weight: weight}, nil

	case TypeOptimizerUpdate:
		id, err := f.requiredID(eventType, "id")
		if err != nil {
			return nil, err
		}
		score, err := f.requiredNumber(eventType, "score")
		if err != nil {
			return nil, err
		}
		return OptimizerUpdate{Meta: meta, ID: id, Score: score}, nil

	case TypeSearchStart:
		return SearchStarted{Meta: meta}, nil

	case TypeSearchFinished:
		ev := SearchFinished{Meta: meta}
		if f.present("score") {
			score, err := f.requiredNumber(eventType, "score")
			if err != nil {
				return nil, err
			}
			ev.Score, ev.HasScore = score, true
		}
		return ev, nil

	case TypeSolutionScored:
		score, err := f.requiredNumber(eventType, "score")
		if err != nil {
			return nil, err
		}
		return SolutionScored{Meta: meta, Score: score}, nil

	default:
		return Unknown{Meta: meta, RawType: eventType}, nil
	}
}

// present reports whether name is set to a non-null value.
func (f fields) present(name string) bool {
	raw, ok := f[name]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) optionalString(name string) (string, error) {
	if !f.present(name) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(f[name], &s); err != nil {
		return "", everrors.InvalidPayload(err).WithContext("field", name)
	}
	return s, nil
}

func (f fields) requiredString(eventType, name string) (string, error) {
	if !f.present(name) {
		return "", everrors.MissingField(eventType, name)
	}
	return f.optionalString(name)
}

// requiredID is requiredString that also rejects the empty string.
func (f fields) requiredID(eventType, name string) (string, error) {
	s, err := f.requiredString(eventType, name)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", everrors.MissingField(eventType, name)
	}
	return s, nil
}

func (f fields) requiredNumber(eventType, name string) (float64, error) {
	if !f.present(name) {
		return 0, everrors.MissingField(eventType, name)
	}
	var v float64
	if err := json.Unmarshal(f[name], &v); err != nil {
		return 0, everrors.InvalidPayload(err).WithContext("field", name)
	}
	if err := checkFinite(name, v); err != nil {
		return 0, err
	}
	return v, nil
}

func checkFinite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return everrors.InvalidArgument(field + " must be a finite number").WithContext("field", field)
	}
	return nil
}
