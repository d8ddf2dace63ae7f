// internal/schema/field_test.go
//
// Unit tests for field normalization, validation, ID regeneration, and the
// legacy read-path normalizer.
//
// Run: go test ./internal/schema -v

package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOptionList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"commas", "Red, Green ,Blue", []string{"Red", "Green", "Blue"}},
		{"newlines", "Red\nGreen\r\nBlue", []string{"Red", "Green", "Blue"}},
		{"mixed and empties", "Red,,\n ,Blue", []string{"Red", "Blue"}},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Field{Options: tc.in}
			if diff := cmp.Diff(tc.want, f.OptionList()); diff != "" {
				t.Errorf("OptionList mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	fields := []Field{
		{ID: "a", Type: "tel"},
		{ID: "b", Type: "text", Width: 40},
		{ID: "c", Type: "text", Condition: &Condition{Enabled: false, Field: "a"}},
		{ID: "d", Type: "text", Condition: &Condition{Enabled: true, Field: ""}},
	}
	Normalize(fields)

	if fields[0].Type != "phone" {
		t.Errorf("tel not folded into phone: %q", fields[0].Type)
	}
	if fields[0].Width != 100 {
		t.Errorf("zero width not defaulted: %d", fields[0].Width)
	}
	if fields[1].Width != 33 {
		t.Errorf("width 40 should snap to 33, got %d", fields[1].Width)
	}
	if fields[2].Condition != nil || fields[3].Condition != nil {
		t.Error("disabled or trigger-less conditions should be dropped")
	}
}

func TestValidate(t *testing.T) {
	ok := []Field{
		{ID: "name", Type: "text"},
		{ID: "color", Type: "select", Condition: &Condition{Enabled: true, Field: "name", Operator: "not_empty"}},
	}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid schema rejected: %v", err)
	}

	dup := []Field{{ID: "x", Type: "text"}, {ID: "x", Type: "email"}}
	if err := Validate(dup); err == nil {
		t.Error("duplicate IDs accepted")
	}

	self := []Field{{ID: "x", Type: "text", Condition: &Condition{Enabled: true, Field: "x"}}}
	if err := Validate(self); err == nil {
		t.Error("self-referencing condition accepted")
	}

	// A dangling trigger is tolerated; the evaluator no-ops on it.
	dangling := []Field{{ID: "x", Type: "text", Condition: &Condition{Enabled: true, Field: "gone"}}}
	if err := Validate(dangling); err != nil {
		t.Errorf("dangling trigger should be tolerated: %v", err)
	}
}

func TestRegenerate(t *testing.T) {
	fields := []Field{
		{ID: "trigger", Type: "select", Options: "a,b"},
		{ID: "target", Type: "text", Condition: &Condition{Enabled: true, Field: "trigger", Operator: "equals", Value: "a"}},
		{ID: "orphan", Type: "text", Condition: &Condition{Enabled: true, Field: "deleted", Operator: "not_empty"}},
	}
	Regenerate(fields)

	if fields[0].ID == "trigger" || fields[1].ID == "target" {
		t.Error("IDs were not regenerated")
	}
	if fields[0].ID == fields[1].ID || fields[1].ID == fields[2].ID {
		t.Error("regenerated IDs collide")
	}
	if fields[1].Condition.Field != fields[0].ID {
		t.Errorf("condition reference not remapped: %q", fields[1].Condition.Field)
	}
	if fields[2].Condition.Field != "deleted" {
		t.Errorf("dangling reference should be left alone, got %q", fields[2].Condition.Field)
	}
}

func TestMintIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := MintID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate minted ID %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestDecodeFieldsShapes(t *testing.T) {
	canonical := `[{"id":"email","type":"email","label":"Email","required":true}]`
	envelope := `{"fields":[{"id":"email","type":"email","label":"Email","required":true}]}`
	doubled := `"[{\"id\":\"email\",\"type\":\"email\",\"label\":\"Email\",\"required\":true}]"`

	want := []Field{{ID: "email", Type: "email", Label: "Email", Required: true, Width: 100}}

	for name, payload := range map[string]string{
		"canonical": canonical,
		"envelope":  envelope,
		"doubled":   doubled,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeFields([]byte(payload))
			if err != nil {
				t.Fatalf("DecodeFields: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if got, err := DecodeFields([]byte("")); err != nil || len(got) != 0 {
		t.Errorf("empty payload: got %v, %v", got, err)
	}
	if got, err := DecodeFields([]byte("null")); err != nil || len(got) != 0 {
		t.Errorf("null payload: got %v, %v", got, err)
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	in := []Field{
		{ID: "a", Type: "text", Label: "A", Width: 50},
		{ID: "b", Type: "select", Label: "B", Options: "x,y", Width: 100,
			Condition: &Condition{Enabled: true, Action: "show", Field: "a", Operator: "not_empty"}},
	}
	raw, err := EncodeFields(in)
	if err != nil {
		t.Fatalf("EncodeFields: %v", err)
	}
	out, err := DecodeFields(raw)
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
