package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"manager role", RoleManager, true},
		{"engineer role", RoleEngineer, true},
		{"legacy operator role", "operator", false},
		{"viewer role", RoleViewer, true},
		{"invalid role", "invalid", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsValidRole(tt.role)
			if result != tt.expected {
				t.Errorf("IsValidRole(%s) = %v, want %v", tt.role, result, tt.expected)
			}
		})
	}
}

func TestUser_HasPermission(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	manager := &User{Role: RoleManager}
	engineer := &User{Role: RoleEngineer}
	viewer := &User{Role: RoleViewer}

	tests := []struct {
		name     string
		user     *User
		action   string
		expected bool
	}{
		// Admin permissions - should have all permissions
		{"admin can delete user", admin, ActionDeleteUser, true},
		{"admin can manage users", admin, ActionManageUsers, true},
		{"admin can view kpis", admin, ActionViewKPIs, true},
		{"admin can regenerate data", admin, ActionRegenerateData, true},

		// Manager permissions - everything except user management
		{"manager cannot delete user", manager, ActionDeleteUser, false},
		{"manager cannot manage users", manager, ActionManageUsers, false},
		{"manager can view kpis", manager, ActionViewKPIs, true},
		{"manager can regenerate data", manager, ActionRegenerateData, true},

		// Engineer permissions - analysis and reports
		{"engineer can view failures", engineer, ActionViewFailures, true},
		{"engineer can view rca", engineer, ActionViewRCA, true},
		{"engineer can view reports", engineer, ActionViewReports, true},
		{"engineer can export reports", engineer, ActionExportReports, true},
		{"engineer cannot regenerate data", engineer, ActionRegenerateData, false},
		{"engineer cannot delete user", engineer, ActionDeleteUser, false},

		// Viewer permissions - dashboard read-only
		{"viewer can view kpis", viewer, ActionViewKPIs, true},
		{"viewer can view schedule", viewer, ActionViewSchedule, true},
		{"viewer cannot view reports", viewer, ActionViewReports, false},
		{"viewer cannot export reports", viewer, ActionExportReports, false},
		{"viewer cannot regenerate data", viewer, ActionRegenerateData, false},

		{"unknown role has nothing", &User{Role: "guest"}, ActionViewKPIs, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.user.HasPermission(tt.action)
			if result != tt.expected {
				t.Errorf("User with role %s HasPermission(%s) = %v, want %v",
					tt.user.Role, tt.action, result, tt.expected)
			}
		})
	}
}

func TestUser_JSONHidesPasswordHash(t *testing.T) {
	login := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)
	user := User{
		Username:     "reliability.eng",
		Email:        "eng@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         RoleEngineer,
		IsActive:     true,
		LastLogin:    &login,
	}

	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	body := string(raw)
	if strings.Contains(body, "hash") {
		t.Errorf("password hash leaked into JSON: %s", body)
	}
	if !strings.Contains(body, `"role":"engineer"`) {
		t.Errorf("expected engineer role in JSON, got %s", body)
	}
	if !strings.Contains(body, `"last_login":"2024-06-15T08:30:00Z"`) {
		t.Errorf("expected last_login in JSON, got %s", body)
	}
}
