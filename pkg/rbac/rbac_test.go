package rbac

import (
	"errors"
	"testing"
)

func TestHasPermission(t *testing.T) {
	cases := []struct {
		role       string
		permission string
		want       bool
	}{
		{RoleViewer, PermissionReadProject, true},
		{RoleViewer, PermissionCreateEntry, false},
		{RoleViewer, PermissionEditPlan, false},
		{RoleForeman, PermissionCreateEntry, true},
		{RoleForeman, PermissionSyncEntries, true},
		{RoleForeman, PermissionFlagRefusal, true},
		{RoleForeman, PermissionEditPlan, false},
		{RoleForeman, PermissionDeleteProject, false},
		{RoleForeman, PermissionReplayEvents, false},
		{RoleAdmin, PermissionEditPlan, true},
		{RoleAdmin, PermissionDeleteProject, true},
		{RoleAdmin, PermissionReplayEvents, true},
		{"unknown", PermissionReadProject, false},
		{"", PermissionReadProject, false},
	}

	for _, c := range cases {
		if got := HasPermission(c.role, c.permission); got != c.want {
			t.Errorf("HasPermission(%q, %q) = %v, want %v", c.role, c.permission, got, c.want)
		}
	}
}

func TestCheckPermissionDenied(t *testing.T) {
	err := CheckPermission(RoleViewer, PermissionEditPlan)
	if err == nil {
		t.Fatal("expected error for viewer editing plan")
	}

	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %T", err)
	}
}

func TestCheckPermissionAllowed(t *testing.T) {
	if err := CheckPermission(RoleAdmin, PermissionDeleteProject); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateUserIDInPayload(t *testing.T) {
	if err := ValidateUserIDInPayload(7, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := ValidateUserIDInPayload(7, 8)
	if err == nil {
		t.Fatal("expected mismatch error")
	}

	var mismatch *UserIDMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected UserIDMismatchError, got %T", err)
	}
}
