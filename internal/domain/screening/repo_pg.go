package screening

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

// =========== Question Repository ===========

type questionRepoPG struct{ pool *pgxpool.Pool }

func NewQuestionRepoPG(pool *pgxpool.Pool) QuestionRepository {
	return &questionRepoPG{pool: pool}
}

func (r *questionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *questionRepoPG) List(ctx context.Context) ([]*Question, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT q.id, q.sequence, q.text, o.position, o.value, o.label
		FROM screening_question q
		JOIN screening_question_option o ON o.question_id = q.id
		ORDER BY q.sequence ASC, o.position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		questions []*Question
		current   *Question
	)
	for rows.Next() {
		var (
			id       int64
			sequence int
			text     string
			position int
			value    string
			label    string
		)
		if err := rows.Scan(&id, &sequence, &text, &position, &value, &label); err != nil {
			return nil, err
		}

		if current == nil || current.ID != id {
			current = &Question{ID: id, Sequence: sequence, Text: text}
			questions = append(questions, current)
		}
		current.Options = append(current.Options, Option{
			Value: value,
			Label: label,
			Score: position,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

// =========== Log Repository ===========

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository {
	return &logRepoPG{pool: pool}
}

func (r *logRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

// Insert writes the log row and its answer rows in one transaction so a
// failed answer write never leaves an orphaned result.
func (r *logRepoPG) Insert(ctx context.Context, entry *LogEntry, answers []Answer) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		err := r.conn(ctx).QueryRow(ctx, `
			INSERT INTO screening_log (sufferer_id, test_type, score, classification)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`,
			entry.SuffererID, entry.TestType, entry.Score, entry.Classification,
		).Scan(&entry.ID, &entry.CreatedAt)
		if err != nil {
			return err
		}

		for _, ans := range answers {
			if _, err := r.conn(ctx).Exec(ctx, `
				INSERT INTO screening_answer (log_id, question_id, selected_option)
				VALUES ($1, $2, $3)`,
				entry.ID, ans.QuestionID, ans.SelectedOption,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

const logCols = `id, sufferer_id, test_type, score, classification, created_at`

func (r *logRepoPG) scanEntry(row pgx.Row) (*LogEntry, error) {
	var e LogEntry
	err := row.Scan(&e.ID, &e.SuffererID, &e.TestType, &e.Score, &e.Classification, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *logRepoPG) GetByID(ctx context.Context, id int64) (*LogEntry, error) {
	return r.scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+logCols+` FROM screening_log WHERE id = $1`, id))
}

func (r *logRepoPG) ListBySufferer(ctx context.Context, suffererID int64, testType string, limit, offset int) ([]*LogEntry, int, error) {
	where := `WHERE sufferer_id = $1`
	args := []interface{}{suffererID}
	if testType != "" && testType != "all" {
		where += ` AND test_type = $2`
		args = append(args, testType)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM screening_log `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + logCols + ` FROM screening_log ` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.SuffererID, &e.TestType, &e.Score, &e.Classification, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
