package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"patient-records/internal/db"
	"patient-records/internal/model"
)

// ExamStore performs exam CRUD with the same per-call connection
// discipline as PatientStore.
type ExamStore struct {
	db db.Provider
}

func NewExamStore(p db.Provider) *ExamStore {
	return &ExamStore{db: p}
}

// Create inserts the exam and writes the generated id back. A zero
// TakenAt defaults to the current moment.
func (s *ExamStore) Create(ctx context.Context, e *model.Exam) {
	if e.TakenAt.IsZero() {
		e.TakenAt = time.Now()
	}

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("create exam: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	err = conn.QueryRow(ctx,
		`INSERT INTO exams (description, taken_at, patient_id) VALUES ($1,$2,$3) RETURNING id`,
		e.Description, e.TakenAt, e.PatientID,
	).Scan(&e.ID)
	if err != nil {
		log.Error().Err(err).Int64("patient_id", e.PatientID).Msg("create exam")
	}
}

func (s *ExamStore) FindByID(ctx context.Context, id int64) *model.Exam {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("find exam: acquire connection")
		return nil
	}
	defer s.db.Release(ctx, conn)

	e := &model.Exam{}
	err = conn.QueryRow(ctx,
		`SELECT id, description, taken_at, patient_id FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Description, &e.TakenAt, &e.PatientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("find exam")
		return nil
	}
	return e
}

func (s *ExamStore) FindAll(ctx context.Context) []model.Exam {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list exams: acquire connection")
		return nil
	}
	defer s.db.Release(ctx, conn)

	rows, err := conn.Query(ctx,
		`SELECT id, description, taken_at, patient_id FROM exams ORDER BY id`)
	if err != nil {
		log.Error().Err(err).Msg("list exams")
		return nil
	}
	defer rows.Close()

	var out []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Description, &e.TakenAt, &e.PatientID); err != nil {
			log.Error().Err(err).Msg("scan exam row")
			return out
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("list exams")
	}
	return out
}

// Update overwrites the row and unconditionally re-stamps taken_at with
// the current moment, even when the description did not change. The new
// timestamp is written back into the record.
func (s *ExamStore) Update(ctx context.Context, e *model.Exam) {
	e.TakenAt = time.Now()

	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("update exam: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	tag, err := conn.Exec(ctx,
		`UPDATE exams SET description = $1, taken_at = $2, patient_id = $3 WHERE id = $4`,
		e.Description, e.TakenAt, e.PatientID, e.ID,
	)
	if err != nil {
		log.Error().Err(err).Int64("id", e.ID).Msg("update exam")
		return
	}
	if tag.RowsAffected() == 0 {
		log.Info().Int64("id", e.ID).Msg("no exam updated")
	}
}

func (s *ExamStore) Delete(ctx context.Context, e *model.Exam) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Msg("delete exam: acquire connection")
		return
	}
	defer s.db.Release(ctx, conn)

	tag, err := conn.Exec(ctx, `DELETE FROM exams WHERE id = $1`, e.ID)
	if err != nil {
		log.Error().Err(err).Int64("id", e.ID).Msg("delete exam")
		return
	}
	if tag.RowsAffected() == 0 {
		log.Info().Int64("id", e.ID).Msg("no exam deleted")
	}
}
