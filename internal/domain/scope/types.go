// Package scope implements the scope resolution rules that decide which
// marshals can see a shareable item (checklist task, note, contact) and at
// what granularity its completion is tracked: per person, per checkpoint or
// per area.
package scope

import (
	"encoding/json"
	"math"
)

// Sentinel identifiers accepted in a configuration's id list. Matching is
// case-sensitive; anything else is an ordinary id.
const (
	AllMarshals    = "ALL_MARSHALS"
	AllCheckpoints = "ALL_CHECKPOINTS"
	AllAreas       = "ALL_AREAS"
)

// Type is the audience rule declared on a shareable item.
type Type int

const (
	TypeUnknown Type = iota
	EveryoneInAreas
	EveryoneAtCheckpoints
	SpecificPeople
	OnePerCheckpoint
	OnePerArea
	OneLeadPerArea
	EveryAreaLead
)

var scopeNames = map[Type]string{
	EveryoneInAreas:       "EveryoneInAreas",
	EveryoneAtCheckpoints: "EveryoneAtCheckpoints",
	SpecificPeople:        "SpecificPeople",
	OnePerCheckpoint:      "OnePerCheckpoint",
	OnePerArea:            "OnePerArea",
	OneLeadPerArea:        "OneLeadPerArea",
	EveryAreaLead:         "EveryAreaLead",
}

var scopeValues = func() map[string]Type {
	m := make(map[string]Type, len(scopeNames))
	for k, v := range scopeNames {
		m[v] = k
	}
	return m
}()

func (t Type) String() string {
	if s, ok := scopeNames[t]; ok {
		return s
	}
	return "unknown"
}

// ParseType maps a wire string to a scope type. Unrecognized strings map to
// TypeUnknown, which never matches.
func ParseType(s string) Type {
	return scopeValues[s]
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseType(s)
	return nil
}

// IsPersonal reports whether completion of an item under this scope is
// tracked per marshal rather than shared across a checkpoint or area.
func (t Type) IsPersonal() bool {
	switch t {
	case EveryoneInAreas, EveryoneAtCheckpoints, SpecificPeople, EveryAreaLead:
		return true
	default:
		return false
	}
}

// IsShared reports whether one marshal's completion satisfies the whole
// checkpoint or area context.
func (t Type) IsShared() bool {
	switch t {
	case OnePerCheckpoint, OnePerArea, OneLeadPerArea:
		return true
	default:
		return false
	}
}

// TargetType says what kind of identifiers a configuration's id list holds.
type TargetType int

const (
	TargetUnknown TargetType = iota
	TargetMarshal
	TargetCheckpoint
	TargetArea
)

var targetNames = map[TargetType]string{
	TargetMarshal:    "Marshal",
	TargetCheckpoint: "Checkpoint",
	TargetArea:       "Area",
}

var targetValues = func() map[string]TargetType {
	m := make(map[string]TargetType, len(targetNames))
	for k, v := range targetNames {
		m[v] = k
	}
	return m
}()

func (t TargetType) String() string {
	if s, ok := targetNames[t]; ok {
		return s
	}
	return "unknown"
}

func ParseTargetType(s string) TargetType {
	return targetValues[s]
}

func (t TargetType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TargetType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseTargetType(s)
	return nil
}

// Configuration is one scope declaration on a shareable item. An item owns a
// list of these; Evaluate picks at most one winner per marshal.
type Configuration struct {
	Scope  Type       `json:"scope"`
	Target TargetType `json:"itemType"`
	IDs    []string   `json:"ids"`
}

// ContainsID reports whether the configuration's id list names the given id.
func (c *Configuration) ContainsID(id string) bool {
	for _, v := range c.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// DecodeConfigurations parses a serialized configuration list. Malformed
// payloads degrade to an empty list so a bad row never breaks evaluation;
// callers that must distinguish "misconfigured" from "irrelevant" inspect
// the raw payload themselves.
func DecodeConfigurations(raw []byte) []Configuration {
	if len(raw) == 0 {
		return nil
	}
	var configs []Configuration
	if err := json.Unmarshal(raw, &configs); err != nil {
		return nil
	}
	return configs
}

// Specificity ranks how precisely a configuration targets a marshal. Lower
// wins.
type Specificity int

const (
	SpecificityMarshal    Specificity = 1
	SpecificityCheckpoint Specificity = 2
	SpecificityArea       Specificity = 3
	SpecificityNone       Specificity = math.MaxInt32
)

// ContextType is the granularity one completion instance is tracked at.
type ContextType int

const (
	ContextPersonal ContextType = iota
	ContextCheckpoint
	ContextArea
)

func (c ContextType) String() string {
	switch c {
	case ContextPersonal:
		return "personal"
	case ContextCheckpoint:
		return "checkpoint"
	case ContextArea:
		return "area"
	default:
		return "unknown"
	}
}

// ContextTypeFor derives the completion context from the winning scope.
func ContextTypeFor(t Type) ContextType {
	switch t {
	case OnePerCheckpoint:
		return ContextCheckpoint
	case OnePerArea, OneLeadPerArea:
		return ContextArea
	default:
		return ContextPersonal
	}
}

// Context identifies one completion context a marshal can reach.
type Context struct {
	Type ContextType `json:"type"`
	ID   string      `json:"id"`
}

// MatchResult is the evaluator's verdict for one item and one marshal.
// IsRelevant is true exactly when Winning is non-nil.
type MatchResult struct {
	IsRelevant  bool
	Winning     *Configuration
	Specificity Specificity
	ContextType ContextType
	ContextID   string
}

// NoMatch is the result for an item that does not apply to the marshal.
func NoMatch() MatchResult {
	return MatchResult{Specificity: SpecificityNone}
}
