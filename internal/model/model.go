package model

import "time"

// Patient is one row of the patients table. ID is zero until the store
// assigns one on create.
type Patient struct {
	ID         int64
	Name       string
	NationalID string
	Exams      []Exam
}

// Exam belongs to exactly one patient. TakenAt is stamped on create and
// re-stamped on every update (last-touched semantics).
type Exam struct {
	ID          int64
	Description string
	TakenAt     time.Time
	PatientID   int64
}
