package repository

import (
	"context"
	"log"

	"github.com/noirlang/medremind/internal/database"
	"github.com/noirlang/medremind/internal/models"
)

type MedicationRepository struct {
	db *database.DB
}

func NewMedicationRepository(db *database.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

const medicationColumns = `medication_id, name, dose, scheduled_date, scheduled_time, recurrence, anchor_date, completed, meal_timing, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMedication maps one row onto a Medication. An unparseable stored time
// leaves the zero TimeOfDay in place instead of failing the whole query; the
// evaluator treats such records as exact-date-only.
func scanMedication(row rowScanner) (*models.Medication, error) {
	var med models.Medication
	var timeStr, rec, meal string
	if err := row.Scan(&med.MedicationID, &med.Name, &med.Dose, &med.ScheduledDate, &timeStr,
		&rec, &med.AnchorDate, &med.Completed, &meal, &med.CreatedAt); err != nil {
		return nil, err
	}

	tod, err := models.ParseTimeOfDay(timeStr)
	if err != nil {
		log.Printf("medication %d: %v", med.MedicationID, err)
	} else {
		med.ScheduledTime = tod
	}
	med.Recurrence = models.Recurrence(rec)
	med.MealTiming = models.MealTiming(meal)
	return &med, nil
}

func (r *MedicationRepository) Create(ctx context.Context, med *models.Medication) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO medications (name, dose, scheduled_date, scheduled_time, recurrence, anchor_date, completed, meal_timing)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING medication_id, created_at`,
		med.Name, med.Dose, med.ScheduledDate, med.ScheduledTime.String(),
		string(med.Recurrence), med.AnchorDate, med.Completed, string(med.MealTiming),
	).Scan(&med.MedicationID, &med.CreatedAt)
}

func (r *MedicationRepository) GetByID(ctx context.Context, id int) (*models.Medication, error) {
	return scanMedication(r.db.Pool.QueryRow(ctx,
		`SELECT `+medicationColumns+` FROM medications WHERE medication_id = $1`,
		id,
	))
}

// ListAll returns every medication. Ordering is irrelevant to callers: the
// recurrence evaluator re-sorts whatever it gets.
func (r *MedicationRepository) ListAll(ctx context.Context) ([]*models.Medication, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+medicationColumns+` FROM medications`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meds []*models.Medication
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	return meds, rows.Err()
}

func (r *MedicationRepository) SetCompleted(ctx context.Context, id int, completed bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE medications SET completed = $1 WHERE medication_id = $2`,
		completed, id,
	)
	return err
}

func (r *MedicationRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM medications WHERE medication_id = $1`,
		id,
	)
	return err
}
