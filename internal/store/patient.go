package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"patient-records/internal/db"
	"patient-records/internal/model"
)

// PatientStore performs patient CRUD. Every method acquires its own
// connection and releases it before returning; store failures are logged
// and swallow the operation rather than propagating.
type PatientStore struct {
	db    db.Provider
	exams *ExamStore
}

func NewPatientStore(p db.Provider) *PatientStore {
	return &PatientStore{db: p, exams: NewExamStore(p)}
}

// Create inserts the patient and writes the generated id back into the
// record. Records carrying pre-attached exams get those created too,
// after the patient row exists.
func (s *PatientStore) Create(ctx context.Context, p *model.Patient) {
	if p.Name == "" || p.NationalID == "" {
		log.Error().Msg("name and national id are required to register a patient")
		return
	}

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("create patient: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	err = conn.QueryRow(ctx,
		`INSERT INTO patients (name, national_id) VALUES ($1,$2) RETURNING id`,
		p.Name, p.NationalID,
	).Scan(&p.ID)
	if err != nil {
		log.Error().Err(err).Str("national_id", p.NationalID).Msg("create patient")
		return
	}

	for i := range p.Exams {
		p.Exams[i].PatientID = p.ID
		s.exams.Create(ctx, &p.Exams[i])
	}
}

// FindByID returns nil when no patient has the given id; absence is a
// normal outcome, not an error.
func (s *PatientStore) FindByID(ctx context.Context, id int64) *model.Patient {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("find patient: acquire connection")
		return nil
	}
	defer s.db.Release(ctx, conn)

	p := &model.Patient{}
	err = conn.QueryRow(ctx,
		`SELECT id, name, national_id FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.NationalID)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Info().Int64("id", id).Msg("no patient with that id")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("find patient")
		return nil
	}
	return p
}

func (s *PatientStore) FindAll(ctx context.Context) []model.Patient {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list patients: acquire connection")
		return nil
	}
	defer s.db.Release(ctx, conn)

	rows, err := conn.Query(ctx,
		`SELECT id, name, national_id FROM patients ORDER BY id`)
	if err != nil {
		log.Error().Err(err).Msg("list patients")
		return nil
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.NationalID); err != nil {
			log.Error().Err(err).Msg("scan patient row")
			return out
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("list patients")
	}
	return out
}

// Update overwrites name and national id keyed by id. Zero rows affected
// is informational, not an error.
func (s *PatientStore) Update(ctx context.Context, p *model.Patient) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("update patient: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	tag, err := conn.Exec(ctx,
		`UPDATE patients SET name = $1, national_id = $2 WHERE id = $3`,
		p.Name, p.NationalID, p.ID,
	)
	if err != nil {
		log.Error().Err(err).Int64("id", p.ID).Msg("update patient")
		return
	}
	if tag.RowsAffected() == 0 {
		log.Info().Int64("id", p.ID).Msg("no patient updated")
	}
}

// Delete removes the row by id; the exams table's ON DELETE CASCADE
// removes the dependent exam rows.
func (s *PatientStore) Delete(ctx context.Context, p *model.Patient) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("delete patient: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	tag, err := conn.Exec(ctx, `DELETE FROM patients WHERE id = $1`, p.ID)
	if err != nil {
		log.Error().Err(err).Int64("id", p.ID).Msg("delete patient")
		return
	}
	if tag.RowsAffected() == 0 {
		log.Info().Int64("id", p.ID).Msg("no patient deleted")
	}
}
