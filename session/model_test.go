package session

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestActiveOrDefaultDistinguishesAbsentFromFalse(t *testing.T) {
	f := false
	tr := true

	tests := []struct {
		name         string
		profile      *Profile
		absentActive bool
		want         bool
	}{
		{"nil profile fail open", nil, true, true},
		{"nil profile fail closed", nil, false, false},
		{"absent flag fail open", &Profile{ID: "u1"}, true, true},
		{"absent flag fail closed", &Profile{ID: "u1"}, false, false},
		{"explicit false beats fail open", &Profile{ID: "u1", Active: &f}, true, false},
		{"explicit true beats fail closed", &Profile{ID: "u1", Active: &tr}, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.ActiveOrDefault(tc.absentActive); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestProfileJSONPreservesAbsentActive(t *testing.T) {
	// A payload that never mentioned is_active must stay distinguishable
	// from one that said is_active=false across a round-trip.
	data, err := json.Marshal(&Profile{ID: "u1", Username: "casey"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "is_active") {
		t.Fatalf("absent flag must not serialize, got %s", data)
	}

	var absent Profile
	if err := json.Unmarshal([]byte(`{"id":"u1"}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Active != nil {
		t.Fatal("absent is_active should decode to nil")
	}

	var deactivated Profile
	if err := json.Unmarshal([]byte(`{"id":"u1","is_active":false}`), &deactivated); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if deactivated.Active == nil || *deactivated.Active {
		t.Fatalf("explicit false should decode to a non-nil false, got %+v", deactivated.Active)
	}
}

func TestRoleOrEmpty(t *testing.T) {
	var nilProfile *Profile
	if got := nilProfile.RoleOrEmpty(); got != "" {
		t.Fatalf("nil profile role should be empty, got %q", got)
	}
	if got := (&Profile{Role: "admin"}).RoleOrEmpty(); got != "admin" {
		t.Fatalf("expected admin, got %q", got)
	}
}

func TestProfileCloneIsDeep(t *testing.T) {
	var nilProfile *Profile
	if nilProfile.Clone() != nil {
		t.Fatal("nil clone should be nil")
	}

	active := true
	original := &Profile{ID: "u1", Active: &active}
	clone := original.Clone()

	*original.Active = false
	if !*clone.Active {
		t.Fatal("clone must not share the Active pointer")
	}
}
