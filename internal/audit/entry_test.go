package audit

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
)

func TestAddedCapturesNewValues(t *testing.T) {
	role := model.Role{ID: uuid.New(), Name: "Auditor", Description: "Read-only"}

	entry := Added("roles", &role)

	if entry.Type != model.TrailCreate {
		t.Errorf("type = %q, want Create", entry.Type)
	}
	if entry.NewValues["Name"] != "Auditor" {
		t.Errorf("NewValues[Name] = %v", entry.NewValues["Name"])
	}
	if _, ok := entry.NewValues["ID"]; ok {
		t.Error("primary key must not appear in NewValues")
	}
	if entry.PrimaryKey["ID"] != role.ID {
		t.Errorf("PrimaryKey[ID] = %v", entry.PrimaryKey["ID"])
	}
}

func TestModifiedDiffsChangedFieldsOnly(t *testing.T) {
	before := model.Role{ID: uuid.New(), Name: "Auditor", Description: "Read-only"}
	after := before
	after.Description = "Read-only reviewer"

	entry, changed := Modified("roles", &before, &after)
	if !changed {
		t.Fatal("Modified() reported no change")
	}

	if entry.Type != model.TrailUpdate {
		t.Errorf("type = %q, want Update", entry.Type)
	}
	if len(entry.AffectedColumns) != 1 || entry.AffectedColumns[0] != "Description" {
		t.Errorf("affected = %v, want [Description]", entry.AffectedColumns)
	}
	if entry.OldValues["Description"] != "Read-only" {
		t.Errorf("old = %v", entry.OldValues["Description"])
	}
	if entry.NewValues["Description"] != "Read-only reviewer" {
		t.Errorf("new = %v", entry.NewValues["Description"])
	}
}

func TestModifiedNoChange(t *testing.T) {
	role := model.Role{ID: uuid.New(), Name: "Auditor"}
	copy := role

	if _, changed := Modified("roles", &role, &copy); changed {
		t.Error("identical snapshots must report no change")
	}
}

func TestModifiedReclassifiesSoftDeleteAsDelete(t *testing.T) {
	before := model.User{ID: uuid.New(), Username: "jane", Email: "jane@example.com", IsActive: true}
	after := before
	now := time.Now().UTC()
	after.MarkDeleted(uuid.New(), now)
	after.IsActive = false

	entry, changed := Modified("users", &before, &after)
	if !changed {
		t.Fatal("Modified() reported no change")
	}
	// Storage sees an update; the trail records the logical delete.
	if entry.Type != model.TrailDelete {
		t.Errorf("type = %q, want Delete", entry.Type)
	}
}

func TestDeletedCapturesOldValues(t *testing.T) {
	fn := model.Function{ID: uuid.New(), Name: "Reports", SortOrder: 5}

	entry := Deleted("functions", &fn)

	if entry.Type != model.TrailDelete {
		t.Errorf("type = %q, want Delete", entry.Type)
	}
	if entry.OldValues["Name"] != "Reports" {
		t.Errorf("OldValues[Name] = %v", entry.OldValues["Name"])
	}
	if len(entry.NewValues) != 0 {
		t.Errorf("NewValues = %v, want empty", entry.NewValues)
	}
}

func TestTrailSerialization(t *testing.T) {
	userID := uuid.New()
	role := model.Role{ID: uuid.New(), Name: "Auditor"}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	trail := Added("roles", &role).Trail(userID, at)

	if trail.UserID != userID {
		t.Errorf("UserID = %v", trail.UserID)
	}
	if trail.DateTime != at {
		t.Errorf("DateTime = %v", trail.DateTime)
	}
	if trail.OldValues != "" {
		t.Errorf("OldValues = %q, want absent for Create", trail.OldValues)
	}

	var newValues map[string]interface{}
	if err := json.Unmarshal([]byte(trail.NewValues), &newValues); err != nil {
		t.Fatalf("NewValues is not valid JSON: %v", err)
	}
	if newValues["Name"] != "Auditor" {
		t.Errorf("NewValues JSON = %v", newValues)
	}

	if !strings.Contains(trail.AffectedColumns, "Name") {
		t.Errorf("AffectedColumns = %q", trail.AffectedColumns)
	}
}

func TestAssociationsAreNotAudited(t *testing.T) {
	user := model.User{
		ID:       uuid.New(),
		Username: "jane",
		Roles:    []model.Role{{Name: "Basic"}},
	}

	entry := Added("users", &user)
	if _, ok := entry.NewValues["Roles"]; ok {
		t.Error("association slice leaked into audited values")
	}
}
