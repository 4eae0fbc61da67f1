package validator

import (
	"errors"
	"testing"

	"groupstay/pkg/model"
)

func intPtr(v int) *int { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
	}
	out := make(map[string]string, len(verrs))
	for _, e := range verrs {
		out[e.Field] = e.Message
	}
	return out
}

func TestValidateScope(t *testing.T) {
	v := NewInventoryValidator()

	tests := []struct {
		name       string
		scope      model.Scope
		wantFields []string
	}{
		{"valid", model.Scope{ID: "gala-2026", Name: "Gala", Date: "2026-11-20"}, nil},
		{"missing id", model.Scope{Name: "Gala"}, []string{"eventId"}},
		{"id with slash", model.Scope{ID: "a/b", Name: "Gala"}, []string{"eventId"}},
		{"blank name", model.Scope{ID: "gala", Name: "   "}, []string{"eventName"}},
		{"bad date", model.Scope{ID: "gala", Name: "Gala", Date: "20/11/2026"}, []string{"eventDate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateScope(&tt.scope)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fields := fieldsOf(t, err)
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("expected error on %s, got %v", f, fields)
				}
			}
		})
	}
}

func TestValidatePool(t *testing.T) {
	v := NewInventoryValidator()

	if err := v.ValidatePool(&model.PoolInput{Kind: "rooms", Label: "Deluxe", Capacity: intPtr(10)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fields := fieldsOf(t, v.ValidatePool(&model.PoolInput{Kind: "parking", Label: "", Capacity: intPtr(-1)}))
	for _, f := range []string{"kind", "label", "capacity"} {
		if _, ok := fields[f]; !ok {
			t.Errorf("expected error on %s, got %v", f, fields)
		}
	}

	fields = fieldsOf(t, v.ValidatePool(&model.PoolInput{Kind: "room", Label: "Deluxe"}))
	if fields["capacity"] != "is required" {
		t.Errorf("capacity message = %q", fields["capacity"])
	}
}

func TestValidateAllocation(t *testing.T) {
	v := NewInventoryValidator()

	if err := v.ValidateAllocation(&model.AllocationInput{Delta: intPtr(-2)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fields := fieldsOf(t, v.ValidateAllocation(&model.AllocationInput{})); fields["delta"] == "" {
		t.Errorf("missing delta should fail")
	}
	if fields := fieldsOf(t, v.ValidateAllocation(&model.AllocationInput{Delta: intPtr(0)})); fields["delta"] == "" {
		t.Errorf("zero delta should fail")
	}
}

func TestValidationErrors_Details(t *testing.T) {
	errs := ValidationErrors{{Field: "kind", Message: "is required"}}
	fields, ok := errs.Details()["fields"].(map[string]any)
	if !ok || fields["kind"] != "is required" {
		t.Errorf("Details() = %v", errs.Details())
	}
}
