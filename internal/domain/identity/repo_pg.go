package identity

import (
	"context"
	"errors"
	"strconv"
	"strings"

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

const userCols = `id, name, gender, username, email, dob, password, photo, role_id, created_at, updated_at`

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

func (r *repoPG) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (name, gender, username, email, dob, password, role_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		RETURNING id, created_at, updated_at`,
		u.FullName, u.Gender, u.Mobile, u.Email, u.DOB, u.PasswordHash, u.RoleID,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByMobile(ctx context.Context, mobile string) (*User, error) {
	return r.scanUser(r.conn(ctx).QueryRow(ctx,
		`SELECT `+userCols+` FROM users WHERE username = $1`, mobile))
}

// Update builds the SET clause from the non-nil patch fields only, so a
// partial body never clears the untouched columns.
func (r *repoPG) Update(ctx context.Context, id int64, p *Patch) (*User, error) {
	if p.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []interface{}
	)
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}

	if p.FullName != nil {
		add("name", *p.FullName)
	}
	if p.Gender != nil {
		add("gender", NormalizeGender(*p.Gender))
	}
	if p.Mobile != nil {
		add("username", *p.Mobile)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.DOB != nil {
		add("dob", *p.DOB)
	}
	if p.Password != nil {
		add("password", *p.Password)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $` + strconv.Itoa(len(args)) +
		` RETURNING ` + userCols

	return r.scanUser(r.conn(ctx).QueryRow(ctx, query, args...))
}

func (r *repoPG) SetPhotoURL(ctx context.Context, id int64, url string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE users SET photo = $1, updated_at = NOW() WHERE id = $2`, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) scanUser(row pgx.Row) (*User, error) {
	var (
		u     User
		email *string
		dob   *string
		photo *string
	)
	err := row.Scan(&u.ID, &u.FullName, &u.Gender, &u.Mobile, &email, &dob,
		&u.PasswordHash, &photo, &u.RoleID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	if dob != nil {
		u.DOB = *dob
	}
	if photo != nil {
		u.PhotoURL = *photo
	}
	return &u, nil
}
