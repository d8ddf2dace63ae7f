// internal/condition/evaluator.go
//
// FormRelayer – Conditional visibility evaluator.
//
// Context
//   A field's Condition decides whether it is shown or hidden based on
//   another field's current value.  The same decision is made twice: once
//   server-side while rendering (so hidden fields carry the hiding class from
//   the first paint), and continuously client-side as the trigger changes.
//   To keep the two in lock-step the operator semantics live in exactly one
//   data-driven table here; the renderer serializes each rule as a
//   data-fr-cond attribute, and the embedded client runtime interprets the
//   identical operator names.  There is nothing to hand-port and therefore
//   nothing to drift.
//
// Workflow
//   •  Met(cond, value) answers "is the rule satisfied for this trigger
//      value."  Both sides are lower-cased and trimmed first.
//   •  Visible(cond, value) applies the action on top: show means visible
//      iff met, hide means hidden iff met.
//   •  MarshalRule produces the JSON payload embedded in markup.
//
//   Multi-value triggers (checkbox groups) must be comma-joined by the
//   caller before evaluation; JoinValues does that consistently.
//
//   Two rules that reference each other are not detected here.  Evaluation
//   is per-field and order-free on the server, and last-write-wins on the
//   client; the configuration is unsupported rather than defined.
//
//------------------------------------------------------------------------------

package condition

import (
	"encoding/json"
	"strings"

	"github.com/formrelayer/formrelayer/internal/schema"
)

// Action verbs.
const (
	ActionShow = "show"
	ActionHide = "hide"
)

// predicate evaluates one operator over normalized (value, want) strings.
type predicate func(value, want string) bool

// operators is the single source of truth for rule semantics.  The client
// runtime implements the same five names; an operator added here must be
// added there in the same change.
var operators = map[string]predicate{
	"equals":     func(v, w string) bool { return v == w },
	"not_equals": func(v, w string) bool { return v != w },
	"contains":   func(v, w string) bool { return strings.Contains(v, w) },
	"empty":      func(v, _ string) bool { return v == "" },
	"not_empty":  func(v, _ string) bool { return v != "" },
}

// Operators returns the supported operator names.  The builder UI uses this
// to populate its rule editor; tests use it to pin the set.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for n := range operators {
		names = append(names, n)
	}
	return names
}

// normalize lower-cases and trims one side of a comparison.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// JoinValues folds a multi-value trigger (checkbox group) into the single
// string the rule table operates on.
func JoinValues(vals []string) string {
	return strings.Join(vals, ", ")
}

// Met reports whether the rule is satisfied for the trigger's current value.
// An unrecognized operator is never met; this is the defensive default, not
// an error, because stored rules may outlive operator sets.
func Met(c *schema.Condition, triggerValue string) bool {
	if c == nil || !c.Enabled {
		return false
	}
	pred, ok := operators[c.Operator]
	if !ok {
		return false
	}
	return pred(normalize(triggerValue), normalize(c.Value))
}

// Visible applies the rule's action to the Met result.  Fields without a
// live condition are always visible.
func Visible(c *schema.Condition, triggerValue string) bool {
	if c == nil || !c.Enabled {
		return true
	}
	met := Met(c, triggerValue)
	if c.Action == ActionHide {
		return !met
	}
	// Default action is show, including when the action string is junk.
	return met
}

// rulePayload is the wire shape of a rule inside markup.  Field names are
// short because the attribute is repeated per conditional field.
type rulePayload struct {
	Action   string `json:"a"`
	Field    string `json:"f"`
	Operator string `json:"o"`
	Value    string `json:"v"`
}

// MarshalRule serializes a condition for the data-fr-cond attribute consumed
// by the client runtime.  Returns "" for nil or disabled rules.
func MarshalRule(c *schema.Condition) string {
	if c == nil || !c.Enabled {
		return ""
	}
	action := c.Action
	if action != ActionHide {
		action = ActionShow
	}
	raw, err := json.Marshal(rulePayload{
		Action:   action,
		Field:    c.Field,
		Operator: c.Operator,
		Value:    c.Value,
	})
	if err != nil {
		return ""
	}
	return string(raw)
}
