// Package event defines the closed set of search lifecycle events accepted by
// the ingestion endpoint, and decodes raw payloads into typed variants.
package event

// Type is the wire value of the event_type field.
type Type string

const (
	TypeNewNode         Type = "NEW_NODE"
	TypeWeightUpdate    Type = "WEIGHT_UPDATE"
	TypeOptimizerUpdate Type = "OPTIMIZER_UPDATE"
	TypeSearchStart     Type = "SEARCH_START"
	TypeSearchFinished  Type = "SEARCH_FINISHED"
	TypeSolutionScored  Type = "SOLUTION_SCORED"
	// TypeUnknown is reported for any event_type outside the known set.
	TypeUnknown Type = "UNKNOWN"
)

// Node types emitted by the search. Anything else is treated as a component.
const (
	NodeTypeRoot      = "root"
	NodeTypeOptimizer = "optimizer"
)

// Event is one decoded notification. The concrete type is one of NewNode,
// WeightUpdate, OptimizerUpdate, SearchStarted, SearchFinished,
// SolutionScored or Unknown.
type Event interface {
	Type() Type
	MessageID() string
	isEvent()
}

// Meta holds fields shared by every variant.
type Meta struct {
	MsgID string
}

func (m Meta) MessageID() string { return m.MsgID }

func (Meta) isEvent() {}

// NewNode announces a node, optionally attached to a predecessor.
type NewNode struct {
	Meta
	ID                 string
	NodeType           string
	NodeClass          string
	Predecessor        string
	SpecifiedInterface string
}

func (NewNode) Type() Type { return TypeNewNode }

// WeightUpdate carries the new value of the edge from -> to.
type WeightUpdate struct {
	Meta
	From   string
	To     string
	Weight float64
}

func (WeightUpdate) Type() Type { return TypeWeightUpdate }

// OptimizerUpdate carries a new best score for an optimizer node.
type OptimizerUpdate struct {
	Meta
	ID    string
	Score float64
}

func (OptimizerUpdate) Type() Type { return TypeOptimizerUpdate }

// SearchStarted marks the beginning of a search run.
type SearchStarted struct {
	Meta
}

func (SearchStarted) Type() Type { return TypeSearchStart }

// SearchFinished marks the end of a search run with its final score.
type SearchFinished struct {
	Meta
	Score    float64
	HasScore bool
}

func (SearchFinished) Type() Type { return TypeSearchFinished }

// SolutionScored reports the score of one evaluated pipeline.
type SolutionScored struct {
	Meta
	Score float64
}

func (SolutionScored) Type() Type { return TypeSolutionScored }

// Unknown is any event whose event_type is not recognised.
type Unknown struct {
	Meta
	RawType string
}

func (Unknown) Type() Type { return TypeUnknown }

// WithMessageID returns a copy of ev carrying the given message id.
func WithMessageID(ev Event, id string) Event {
	meta := Meta{MsgID: id}
	switch e := ev.(type) {
	case NewNode:
		e.Meta = meta
		return e
	case WeightUpdate:
		e.Meta = meta
		return e
	case OptimizerUpdate:
		e.Meta = meta
		return e
	case SearchStarted:
		e.Meta = meta
		return e
	case SearchFinished:
		e.Meta = meta
		return e
	case SolutionScored:
		e.Meta = meta
		return e
	case Unknown:
		e.Meta = meta
		return e
	default:
		return ev
	}
}
