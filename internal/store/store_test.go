package store_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"patient-records/internal/config"
	"patient-records/internal/db"
	"patient-records/internal/model"
	"patient-records/internal/store"
)

func setup(t *testing.T) (*store.PatientStore, *store.ExamStore) {
	t.Helper()
	_ = godotenv.Load("../../.env")
	if os.Getenv("DB_ADDRESS") == "" {
		t.Skip("DB_ADDRESS not set")
	}
	cfg := config.FromMap(map[string]string{
		"DB_SCHEMA":   os.Getenv("DB_SCHEMA"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
		"DB_ADDRESS":  os.Getenv("DB_ADDRESS"),
		"DB_PORT":     os.Getenv("DB_PORT"),
	})
	provider := db.NewPostgres(cfg)
	return store.NewPatientStore(provider), store.NewExamStore(provider)
}

// nationalID returns a unique identification number so tests can rerun
// against a shared database without tripping the uniqueness constraint.
func nationalID() string {
	return fmt.Sprintf("test-%s", uuid.New().String()[:13])
}

func createPatient(t *testing.T, patients *store.PatientStore, name string) *model.Patient {
	t.Helper()
	p := &model.Patient{Name: name, NationalID: nationalID()}
	patients.Create(context.Background(), p)
	if p.ID == 0 {
		t.Fatalf("patient %q was not created", name)
	}
	return p
}

func TestCreateAndFindPatient(t *testing.T) {
	patients, _ := setup(t)
	ctx := context.Background()

	p := createPatient(t, patients, "Create Find")

	got := patients.FindByID(ctx, p.ID)
	if got == nil {
		t.Fatal("created patient not found")
	}
	if got.Name != p.Name {
		t.Errorf("name: got %q, want %q", got.Name, p.Name)
	}
	if got.NationalID != p.NationalID {
		t.Errorf("national id: got %q, want %q", got.NationalID, p.NationalID)
	}
}

func TestCreatePatientValidation(t *testing.T) {
	patients, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		patient model.Patient
	}{
		{"missing name", model.Patient{NationalID: nationalID()}},
		{"missing national id", model.Patient{Name: "No Document"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(patients.FindAll(ctx))
			p := tt.patient
			patients.Create(ctx, &p)
			if p.ID != 0 {
				t.Errorf("expected no id assignment, got %d", p.ID)
			}
			if after := len(patients.FindAll(ctx)); after != before {
				t.Errorf("patient count changed: %d -> %d", before, after)
			}
		})
	}
}

func TestCreatePatientDuplicateNationalID(t *testing.T) {
	patients, _ := setup(t)
	ctx := context.Background()

	first := createPatient(t, patients, "Original Holder")

	before := len(patients.FindAll(ctx))
	dup := &model.Patient{Name: "Impostor", NationalID: first.NationalID}
	patients.Create(ctx, dup)

	if dup.ID != 0 {
		t.Errorf("duplicate national id got id %d", dup.ID)
	}
	if after := len(patients.FindAll(ctx)); after != before {
		t.Errorf("patient count changed on duplicate: %d -> %d", before, after)
	}
}

func TestFindByIDAbsent(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	const missing = int64(1) << 60
	if p := patients.FindByID(ctx, missing); p != nil {
		t.Errorf("expected nil for absent patient, got %+v", p)
	}
	if e := exams.FindByID(ctx, missing); e != nil {
		t.Errorf("expected nil for absent exam, got %+v", e)
	}
}

func TestUpdatePatient(t *testing.T) {
	patients, _ := setup(t)
	ctx := context.Background()

	p := createPatient(t, patients, "Before Edit")
	p.Name = "After Edit"
	p.NationalID = nationalID()
	patients.Update(ctx, p)

	got := patients.FindByID(ctx, p.ID)
	if got == nil {
		t.Fatal("updated patient not found")
	}
	if got.Name != "After Edit" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.NationalID != p.NationalID {
		t.Errorf("national id: got %q, want %q", got.NationalID, p.NationalID)
	}
}

func TestCreatePatientWithAttachedExams(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	p := &model.Patient{
		Name:       "With Exams",
		NationalID: nationalID(),
		Exams: []model.Exam{
			{Description: "X-ray"},
			{Description: "ECG"},
		},
	}
	patients.Create(ctx, p)
	if p.ID == 0 {
		t.Fatal("patient was not created")
	}

	for i, e := range p.Exams {
		if e.ID == 0 {
			t.Errorf("attached exam %d got no id", i)
		}
		if e.PatientID != p.ID {
			t.Errorf("attached exam %d references patient %d, want %d", i, e.PatientID, p.ID)
		}
	}

	var count int
	for _, e := range exams.FindAll(ctx) {
		if e.PatientID == p.ID {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected 2 stored exams for patient, got %d", count)
	}
}

func TestCreateExamDefaultsTimestamp(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	p := createPatient(t, patients, "Exam Default")

	before := time.Now()
	e := &model.Exam{Description: "Ultrasound", PatientID: p.ID}
	exams.Create(ctx, e)
	if e.ID == 0 {
		t.Fatal("exam was not created")
	}
	if e.TakenAt.Before(before.Add(-time.Second)) || e.TakenAt.After(time.Now().Add(time.Second)) {
		t.Errorf("expected timestamp near now, got %v", e.TakenAt)
	}

	got := exams.FindByID(ctx, e.ID)
	if got == nil {
		t.Fatal("created exam not found")
	}
	if diff := got.TakenAt.Sub(e.TakenAt); diff > time.Second || diff < -time.Second {
		t.Errorf("stored timestamp drifted: %v vs %v", got.TakenAt, e.TakenAt)
	}
}

func TestUpdateExamAdvancesTimestamp(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	p := createPatient(t, patients, "Touch On Edit")
	e := &model.Exam{Description: "Bloodwork", PatientID: p.ID}
	exams.Create(ctx, e)
	if e.ID == 0 {
		t.Fatal("exam was not created")
	}

	before := exams.FindByID(ctx, e.ID)
	if before == nil {
		t.Fatal("exam not found after create")
	}
	time.Sleep(10 * time.Millisecond)

	// same description, timestamp must still advance
	exams.Update(ctx, e)

	after := exams.FindByID(ctx, e.ID)
	if after == nil {
		t.Fatal("exam not found after update")
	}
	if after.TakenAt.Before(before.TakenAt) {
		t.Errorf("timestamp went backwards: %v -> %v", before.TakenAt, after.TakenAt)
	}
	if !after.TakenAt.After(before.TakenAt) {
		t.Errorf("timestamp was not touched: %v", after.TakenAt)
	}
}

func TestDeletePatientCascadesExams(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	p := createPatient(t, patients, "Cascade Target")
	for _, desc := range []string{"MRI", "CT scan"} {
		e := &model.Exam{Description: desc, PatientID: p.ID}
		exams.Create(ctx, e)
		if e.ID == 0 {
			t.Fatalf("exam %q was not created", desc)
		}
	}

	patients.Delete(ctx, p)

	if got := patients.FindByID(ctx, p.ID); got != nil {
		t.Fatal("patient still present after delete")
	}
	for _, e := range exams.FindAll(ctx) {
		if e.PatientID == p.ID {
			t.Errorf("exam %d survived the cascade", e.ID)
		}
	}
}

func TestPatientExamLifecycle(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	alice := &model.Patient{Name: "Alice", NationalID: nationalID()}
	patients.Create(ctx, alice)
	if alice.ID == 0 {
		t.Fatal("alice was not created")
	}

	e := &model.Exam{Description: "Bloodwork", TakenAt: time.Now(), PatientID: alice.ID}
	exams.Create(ctx, e)
	if e.ID == 0 {
		t.Fatal("exam was not created")
	}

	var matched []model.Exam
	for _, x := range exams.FindAll(ctx) {
		if x.PatientID == alice.ID {
			matched = append(matched, x)
		}
	}
	if len(matched) != 1 {
		t.Fatalf("expected exactly 1 exam for alice, got %d", len(matched))
	}
	if matched[0].Description != "Bloodwork" {
		t.Errorf("description: got %q", matched[0].Description)
	}

	patients.Delete(ctx, alice)
	for _, x := range exams.FindAll(ctx) {
		if x.PatientID == alice.ID {
			t.Errorf("exam %d still references deleted patient", x.ID)
		}
	}
}

func TestUpdateMissingRowsAreSilent(t *testing.T) {
	patients, exams := setup(t)
	ctx := context.Background()

	// zero rows affected is informational, nothing should blow up
	patients.Update(ctx, &model.Patient{ID: int64(1) << 60, Name: "Ghost", NationalID: nationalID()})
	patients.Delete(ctx, &model.Patient{ID: int64(1) << 60})
	exams.Update(ctx, &model.Exam{ID: int64(1) << 60, Description: "Ghost", PatientID: 1})
	exams.Delete(ctx, &model.Exam{ID: int64(1) << 60})
}
