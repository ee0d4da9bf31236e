package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalogapi/internal/db"
	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/pagination"
)

const categoryColumns = "id, name, user_id, created_at"

type CategoryRepository struct {
	Conn
}

func scanCategory(s scanner) (models.Category, error) {
	var (
		c      models.Category
		userID sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Name, &userID, &c.CreatedAt); err != nil {
		return c, err
	}
	c.UserID = db.StringPtr(userID)
	return c, nil
}

func (r CategoryRepository) Create(ctx context.Context, c models.Category) (models.Category, error) {
	c.ID = r.newID()
	c.CreatedAt = r.now()

	_, err := r.DB.ExecContext(ctx, r.q(`INSERT INTO categories (id, name, user_id, created_at) VALUES (?, ?, ?, ?)`),
		c.ID, c.Name, db.NullableString(c.UserID), c.CreatedAt)
	if err != nil {
		return models.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return r.FindByID(ctx, c.ID)
}

func (r CategoryRepository) FindByID(ctx context.Context, id string) (models.Category, error) {
	c, err := scanCategory(r.DB.QueryRowContext(ctx, r.q(`SELECT `+categoryColumns+` FROM categories WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, notFound("Category")
	}
	if err != nil {
		return models.Category{}, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (r CategoryRepository) FindMany(ctx context.Context, q pagination.Query) ([]models.Category, int, error) {
	categories := []models.Category{}
	total, err := r.findPage(ctx,
		`SELECT `+categoryColumns+` FROM categories%s ORDER BY created_at, id LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM categories`,
		q,
		func(rows *sql.Rows) error {
			c, err := scanCategory(rows)
			if err != nil {
				return err
			}
			categories = append(categories, c)
			return nil
		},
	)
	if err != nil {
		return nil, 0, fmt.Errorf("find categories: %w", err)
	}
	return categories, total, nil
}

func (r CategoryRepository) Update(ctx context.Context, id, name string) (models.Category, error) {
	if _, err := r.DB.ExecContext(ctx, r.q(`UPDATE categories SET name = ? WHERE id = ?`), name, id); err != nil {
		return models.Category{}, fmt.Errorf("update category: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r CategoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "Category", `DELETE FROM categories WHERE id = ?`, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
