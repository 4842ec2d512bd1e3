package reminder

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sereno/sereno/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, rem *Reminder) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO remind_medicine (sufferer_id, medicine_name, medicine_detail, start_date, end_date)
			VALUES ($1, $2, NULLIF($3, ''), $4::date, $5::date)
			RETURNING id, created_at`,
			rem.SuffererID, rem.MedicineName, rem.MedicineDetails, rem.StartDate, rem.EndDate,
		).Scan(&rem.ID, &rem.CreatedAt)
		if err != nil {
			return err
		}
		return r.insertTimes(ctx, rem.ID, rem.Times)
	})
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	rem, err := r.scanReminder(r.conn(ctx).QueryRow(ctx, `
		SELECT id, sufferer_id, medicine_name, medicine_detail,
		       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'), created_at
		FROM remind_medicine WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	times, err := r.timesFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	rem.Times = times[id]
	rem.decorate()
	return rem, nil
}

func (r *repoPG) ListBySufferer(ctx context.Context, suffererID int64, f ListFilter) ([]*Reminder, error) {
	query := `
		SELECT id, sufferer_id, medicine_name, medicine_detail,
		       to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'), created_at
		FROM remind_medicine WHERE sufferer_id = $1`
	args := []interface{}{suffererID}

	if f.StartDate != "" {
		args = append(args, f.StartDate)
		query += ` AND start_date >= $` + strconv.Itoa(len(args)) + `::date`
	}
	if f.EndDate != "" {
		args = append(args, f.EndDate)
		query += ` AND end_date <= $` + strconv.Itoa(len(args)) + `::date`
	}
	query += ` ORDER BY start_date ASC, id ASC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		reminders []*Reminder
		ids       []int64
	)
	for rows.Next() {
		rem, err := r.scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
		ids = append(ids, rem.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		return []*Reminder{}, nil
	}

	times, err := r.timesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rem := range reminders {
		rem.Times = times[rem.ID]
		rem.decorate()
	}
	return reminders, nil
}

func (r *repoPG) Update(ctx context.Context, rem *Reminder) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		tag, err := r.conn(ctx).Exec(ctx, `
			UPDATE remind_medicine
			SET medicine_name = $1, medicine_detail = NULLIF($2, ''),
			    start_date = $3::date, end_date = $4::date, updated_at = NOW()
			WHERE id = $5`,
			rem.MedicineName, rem.MedicineDetails, rem.StartDate, rem.EndDate, rem.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM reminder_times WHERE remind_medicine_id = $1`, rem.ID); err != nil {
			return err
		}
		return r.insertTimes(ctx, rem.ID, rem.Times)
	})
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		if _, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM reminder_times WHERE remind_medicine_id = $1`, id); err != nil {
			return err
		}
		tag, err := r.conn(ctx).Exec(ctx,
			`DELETE FROM remind_medicine WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *repoPG) RecordIntake(ctx context.Context, in *Intake) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medicine_intake (remind_medicine_id, intake_date, intake_time)
		VALUES ($1, $2::date, $3)
		RETURNING id, created_at`,
		in.ReminderID, in.Date, in.Time,
	).Scan(&in.ID, &in.RecordedAt)
}

func (r *repoPG) insertTimes(ctx context.Context, reminderID int64, times []string) error {
	for _, t := range times {
		if _, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO reminder_times (remind_medicine_id, reminder_time)
			VALUES ($1, $2)`, reminderID, t); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) timesFor(ctx context.Context, ids []int64) (map[int64][]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT remind_medicine_id, reminder_time
		FROM reminder_times
		WHERE remind_medicine_id = ANY($1)
		ORDER BY reminder_time ASC`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]string)
	for rows.Next() {
		var (
			id int64
			t  string
		)
		if err := rows.Scan(&id, &t); err != nil {
			return nil, err
		}
		out[id] = append(out[id], t)
	}
	return out, rows.Err()
}

func (r *repoPG) scanReminder(row pgx.Row) (*Reminder, error) {
	var (
		rem    Reminder
		detail *string
	)
	err := row.Scan(&rem.ID, &rem.SuffererID, &rem.MedicineName, &detail,
		&rem.StartDate, &rem.EndDate, &rem.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if detail != nil {
		rem.MedicineDetails = *detail
	}
	return &rem, nil
}
