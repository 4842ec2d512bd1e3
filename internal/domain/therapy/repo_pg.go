package therapy

import (
	"context"
	"errors"

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

const materialCols = `id, type, title, description, created_by, duration, image_url, video_url, pdf_url, created_at`

// =========== Material Repository ===========

type materialRepoPG struct{ pool *pgxpool.Pool }

func NewMaterialRepoPG(pool *pgxpool.Pool) MaterialRepository {
	return &materialRepoPG{pool: pool}
}

func (r *materialRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *materialRepoPG) ListByType(ctx context.Context, materialType string) ([]*Material, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+materialCols+` FROM therapy_material WHERE type = $1 ORDER BY id ASC`,
		materialType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Material{}
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *materialRepoPG) GetByID(ctx context.Context, id int64, materialType string) (*Material, error) {
	return scanMaterial(r.conn(ctx).QueryRow(ctx,
		`SELECT `+materialCols+` FROM therapy_material WHERE id = $1 AND type = $2`,
		id, materialType))
}

func scanMaterial(row pgx.Row) (*Material, error) {
	var (
		m                  Material
		description        *string
		author             *string
		duration           *int
		image, video, epdf *string
	)
	err := row.Scan(&m.ID, &m.Type, &m.Title, &description, &author, &duration,
		&image, &video, &epdf, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if description != nil {
		m.Description = *description
	}
	if author != nil {
		m.Author = *author
	}
	if duration != nil {
		m.Duration = *duration
	}
	if image != nil {
		m.ImageURL = *image
	}
	if video != nil {
		m.VideoURL = *video
	}
	if epdf != nil {
		m.PDFURL = *epdf
	}
	return &m, nil
}

// =========== Chat Repository ===========

type chatRepoPG struct{ pool *pgxpool.Pool }

func NewChatRepoPG(pool *pgxpool.Pool) ChatRepository {
	return &chatRepoPG{pool: pool}
}

func (r *chatRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *chatRepoPG) InsertExchange(ctx context.Context, user, ai *ChatEntry) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		for _, entry := range []*ChatEntry{user, ai} {
			err := r.conn(ctx).QueryRow(ctx, `
				INSERT INTO therapy_chat_log (sufferer_id, sender, message)
				VALUES ($1, $2, $3)
				RETURNING id, created_at`,
				entry.SuffererID, entry.Sender, entry.Message,
			).Scan(&entry.ID, &entry.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *chatRepoPG) ListBySufferer(ctx context.Context, suffererID int64, limit, offset int) ([]*ChatEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM therapy_chat_log WHERE sufferer_id = $1`,
		suffererID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, sufferer_id, sender, message, created_at
		FROM therapy_chat_log
		WHERE sufferer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		suffererID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []*ChatEntry
	for rows.Next() {
		var e ChatEntry
		if err := rows.Scan(&e.ID, &e.SuffererID, &e.Sender, &e.Message, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, &e)
	}
	return entries, total, rows.Err()
}
