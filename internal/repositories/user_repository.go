package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalogapi/internal/db"
	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/pagination"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = "id, email, first_name, last_name, status, created_at, updated_at"

// UserRepository is the identity store.
type UserRepository struct {
	Conn
}

func notFound(resource string) error {
	return domain.NotFoundError{Resource: resource}
}

// uniqueViolation reports whether err is a unique index rejecting a write, for
// any of the supported drivers.
func uniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func emailTaken(err error) error {
	return domain.ConflictError{Msg: "User with this email already exists", Err: err}
}

func scanUser(s scanner) (models.User, error) {
	var (
		u        models.User
		lastName sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Email, &u.FirstName, &lastName, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return u, err
	}
	u.LastName = db.StringPtr(lastName)
	return u, nil
}

// Create inserts u with a fresh id and timestamps. u.PasswordHash must already
// be hashed.
func (r UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	now := r.now()
	u.ID = r.newID()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.DB.ExecContext(ctx, r.q(`
		INSERT INTO users (id, email, password_hash, first_name, last_name, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), u.ID, u.Email, u.PasswordHash, u.FirstName, db.NullableString(u.LastName), u.Status, u.CreatedAt, u.UpdatedAt)
	if uniqueViolation(err) {
		return models.User{}, emailTaken(err)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByID(ctx, u.ID)
}

func (r UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, r.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// FindByEmail is the only lookup that loads the password hash.
func (r UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u        models.User
		lastName sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, r.q(`
		SELECT id, email, password_hash, first_name, last_name, status, created_at, updated_at
		FROM users WHERE email = ?
	`), email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &lastName, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, notFound("User")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user by email: %w", err)
	}
	u.LastName = db.StringPtr(lastName)
	return u, nil
}

func (r UserRepository) FindMany(ctx context.Context, q pagination.Query) ([]models.User, int, error) {
	users := []models.User{}
	total, err := r.findPage(ctx,
		`SELECT `+userColumns+` FROM users%s ORDER BY created_at, id LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM users`,
		q,
		func(rows *sql.Rows) error {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			users = append(users, u)
			return nil
		},
	)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	return users, total, nil
}

// Update applies the non-nil fields of req and returns the stored row.
func (r UserRepository) Update(ctx context.Context, id string, req models.UpdateUserRequest) (models.User, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, val any) {
		sets = append(sets, column+" = ?")
		args = append(args, val)
	}

	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.FirstName != nil {
		add("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		add("last_name", *req.LastName)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	add("updated_at", r.now())
	args = append(args, id)

	_, err := r.DB.ExecContext(ctx, r.q(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if uniqueViolation(err) {
		return models.User{}, emailTaken(err)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "User", `DELETE FROM users WHERE id = ?`, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
