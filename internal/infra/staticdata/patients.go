// Package staticdata provides the seeded read-only data providers:
// the patient directory and the inventory snapshot. Both stand in for a
// real backing store behind the port interfaces, so one can be substituted
// without touching responder logic.
package staticdata

import (
	"context"
	"fmt"
	"os"

	"github.com/medicoord/coordinator-go/internal/domain"

	"gopkg.in/yaml.v3"
)

// seedPatients are the built-in demo records, fixed at process start.
var seedPatients = map[string]domain.PatientRecord{
	"patient_123": {
		ID:          "patient_123",
		Name:        "Jane Doe",
		Age:         32,
		Allergies:   []string{},
		Medications: []string{},
		Conditions:  []string{"pregnancy"},
	},
	"patient_302": {
		ID:          "patient_302",
		Name:        "Robert Miles",
		Age:         58,
		Allergies:   []string{"penicillin"},
		Medications: []string{"metoprolol"},
		Conditions:  []string{"post_surgical_recovery", "hypertension"},
	},
}

// PatientDirectory is an in-memory, read-only patient lookup.
type PatientDirectory struct {
	patients map[string]domain.PatientRecord
}

// NewPatientDirectory returns a directory seeded with the built-in records.
// If path is non-empty, records are loaded from that YAML file instead.
func NewPatientDirectory(path string) (*PatientDirectory, error) {
	if path == "" {
		return &PatientDirectory{patients: seedPatients}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patients file: %w", err)
	}

	var records []domain.PatientRecord
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse patients file: %w", err)
	}

	patients := make(map[string]domain.PatientRecord, len(records))
	for _, rec := range records {
		patients[rec.ID] = rec
	}
	return &PatientDirectory{patients: patients}, nil
}

// LookupPatient resolves a patient id. Unknown ids resolve to an all-empty
// record named "Unknown" rather than an error; missing context degrades
// the prompt, not the call.
func (d *PatientDirectory) LookupPatient(_ context.Context, patientID string) (*domain.PatientRecord, error) {
	if rec, ok := d.patients[patientID]; ok {
		copied := rec
		return &copied, nil
	}
	return &domain.PatientRecord{
		ID:          patientID,
		Name:        "Unknown",
		Allergies:   []string{},
		Medications: []string{},
		Conditions:  []string{},
	}, nil
}
