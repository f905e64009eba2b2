package rbac

import (
	"errors"
	"testing"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role, permission string
		want             bool
	}{
		{RoleFreelancer, PermissionCreateMilestone, true},
		{RoleClient, PermissionCreateMilestone, false},
		{RoleClient, PermissionUpdateMilestone, true},
		{RoleAdmin, PermissionDeleteTemplate, true},
		{RoleFreelancer, PermissionDeleteTemplate, false},
		{"unknown", PermissionReadContract, false},
	}
	for _, c := range cases {
		if got := HasPermission(c.role, c.permission); got != c.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", c.role, c.permission, got, c.want)
		}
	}
}

func TestCheckPermission(t *testing.T) {
	if err := CheckPermission(RoleAdmin, PermissionDeleteTemplate); err != nil {
		t.Fatalf("admin denied: %v", err)
	}

	err := CheckPermission(RoleClient, PermissionDeleteTemplate)
	if err == nil {
		t.Fatal("expected permission denial")
	}
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("err type %T", err)
	}
	if denied.Role != RoleClient || denied.Permission != PermissionDeleteTemplate {
		t.Fatalf("denial = %+v", denied)
	}
}
