package staticdata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/medicoord/coordinator-go/internal/infra/staticdata"
)

func TestPatientDirectory_KnownPatient(t *testing.T) {
	dir, err := staticdata.NewPatientDirectory("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec, err := dir.LookupPatient(context.Background(), "patient_123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if rec.Name != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got '%s'", rec.Name)
	}
	if len(rec.Conditions) != 1 || rec.Conditions[0] != "pregnancy" {
		t.Errorf("unexpected conditions: %v", rec.Conditions)
	}
}

func TestPatientDirectory_UnknownResolvesToUnknownRecord(t *testing.T) {
	dir, err := staticdata.NewPatientDirectory("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec, err := dir.LookupPatient(context.Background(), "patient_999")
	if err != nil {
		t.Fatalf("expected no error for unknown patient, got %v", err)
	}
	if rec.Name != "Unknown" {
		t.Errorf("expected 'Unknown', got '%s'", rec.Name)
	}
	if len(rec.Allergies) != 0 || len(rec.Medications) != 0 || len(rec.Conditions) != 0 {
		t.Error("expected all-empty record for unknown patient")
	}
}

func TestPatientDirectory_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patients.yaml")
	data := `
- id: patient_777
  name: Ada Ferris
  age: 44
  allergies: [latex]
  current_medications: [lisinopril]
  conditions: [diabetes]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	dir, err := staticdata.NewPatientDirectory(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec, _ := dir.LookupPatient(context.Background(), "patient_777")
	if rec.Name != "Ada Ferris" {
		t.Errorf("expected 'Ada Ferris', got '%s'", rec.Name)
	}
	if rec.Age != 44 {
		t.Errorf("expected age 44, got %d", rec.Age)
	}
}

func TestInventory_SnapshotIsACopy(t *testing.T) {
	inv, err := staticdata.NewInventory("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	first, _ := inv.CurrentInventory(context.Background())
	if first["blood_o_positive"] != 50 {
		t.Errorf("expected 50 units, got %d", first["blood_o_positive"])
	}

	first["blood_o_positive"] = 0

	second, _ := inv.CurrentInventory(context.Background())
	if second["blood_o_positive"] != 50 {
		t.Error("mutating a snapshot must not affect the provider")
	}
}

func TestInventory_FromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	data := "ventilators: 4\nsurgical_gloves: 250\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	inv, err := staticdata.NewInventory(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	snapshot, _ := inv.CurrentInventory(context.Background())
	if snapshot["ventilators"] != 4 {
		t.Errorf("expected 4 ventilators, got %d", snapshot["ventilators"])
	}
	if len(snapshot) != 2 {
		t.Errorf("expected 2 items, got %d", len(snapshot))
	}
}
