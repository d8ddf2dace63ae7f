// internal/condition/evaluator_test.go
//
// Truth-table tests for the visibility evaluator.
//
// Run: go test ./internal/condition -v

package condition

import (
	"sort"
	"strings"
	"testing"

	"github.com/formrelayer/formrelayer/internal/schema"
)

func rule(action, op, value string) *schema.Condition {
	return &schema.Condition{Enabled: true, Action: action, Field: "trigger", Operator: op, Value: value}
}

func TestMetTruthTable(t *testing.T) {
	cases := []struct {
		name    string
		op      string
		ruleVal string
		trigger string
		want    bool
	}{
		{"equals match", "equals", "5", "5", true},
		{"equals mismatch", "equals", "5", "6", false},
		{"equals case and space folded", "equals", "Yes", "  yes ", true},
		{"not_equals mismatch", "not_equals", "5", "6", true},
		{"not_equals match", "not_equals", "5", "5", false},
		{"contains hit", "contains", "gree", "Light Green", true},
		{"contains miss", "contains", "blue", "Light Green", false},
		{"empty on empty", "empty", "", "", true},
		{"empty on value", "empty", "", "x", false},
		{"not_empty on value", "not_empty", "ignored", "x", true},
		{"not_empty on empty", "not_empty", "ignored", "", false},
		{"not_empty on whitespace", "not_empty", "", "   ", false},
		{"unknown operator never met", "matches_regex", ".*", "anything", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Met(rule(ActionShow, tc.op, tc.ruleVal), tc.trigger)
			if got != tc.want {
				t.Errorf("Met(%s, %q vs %q) = %v, want %v", tc.op, tc.trigger, tc.ruleVal, got, tc.want)
			}
		})
	}
}

func TestVisibleActions(t *testing.T) {
	// Spec scenario: trigger "5", equals "5": show → visible, hide → hidden.
	if !Visible(rule(ActionShow, "equals", "5"), "5") {
		t.Error("show + met should be visible")
	}
	if Visible(rule(ActionHide, "equals", "5"), "5") {
		t.Error("hide + met should be hidden")
	}
	if Visible(rule(ActionShow, "equals", "5"), "6") {
		t.Error("show + unmet should be hidden")
	}
	if !Visible(rule(ActionHide, "equals", "5"), "6") {
		t.Error("hide + unmet should be visible")
	}

	// Junk action defaults to show semantics.
	if !Visible(rule("toggle", "equals", "5"), "5") {
		t.Error("unknown action should behave like show")
	}

	// No rule at all means always visible.
	if !Visible(nil, "") {
		t.Error("nil condition must be visible")
	}
	if !Visible(&schema.Condition{Enabled: false, Action: ActionHide, Operator: "not_empty"}, "x") {
		t.Error("disabled condition must be visible")
	}
}

func TestJoinValues(t *testing.T) {
	joined := JoinValues([]string{"Red", "Blue"})
	if !Met(rule(ActionShow, "contains", "blue"), joined) {
		t.Errorf("contains should match inside joined set %q", joined)
	}
}

func TestOperatorsPinned(t *testing.T) {
	got := Operators()
	sort.Strings(got)
	want := []string{"contains", "empty", "equals", "not_empty", "not_equals"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("operator set changed: %v (client runtime must be updated in the same change)", got)
	}
}

func TestMarshalRule(t *testing.T) {
	payload := MarshalRule(rule(ActionHide, "equals", "Other"))
	for _, frag := range []string{`"a":"hide"`, `"f":"trigger"`, `"o":"equals"`, `"v":"Other"`} {
		if !strings.Contains(payload, frag) {
			t.Errorf("payload %s missing %s", payload, frag)
		}
	}
	if MarshalRule(nil) != "" {
		t.Error("nil rule should marshal to empty string")
	}
	if MarshalRule(&schema.Condition{Enabled: false}) != "" {
		t.Error("disabled rule should marshal to empty string")
	}
}
