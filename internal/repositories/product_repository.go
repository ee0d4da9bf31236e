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
)

// productSelect loads a product with its category and owner. Filter columns
// for products are qualified with the "p." alias.
const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.category_id, p.user_id, p.created_at,
	       c.id, c.name, c.created_at,
	       u.id, u.email, u.first_name, u.last_name, u.status, u.created_at, u.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN users u ON u.id = p.user_id`

type ProductRepository struct {
	Conn
}

func scanProduct(s scanner) (models.Product, error) {
	var (
		p                          models.Product
		description, userID        sql.NullString
		catID, catName             sql.NullString
		catCreated                 sql.NullTime
		uID, uEmail, uFirst, uLast sql.NullString
		uStatus                    sql.NullBool
		uCreated, uUpdated         sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.Name, &description, &p.Price, &p.CategoryID, &userID, &p.CreatedAt,
		&catID, &catName, &catCreated,
		&uID, &uEmail, &uFirst, &uLast, &uStatus, &uCreated, &uUpdated,
	)
	if err != nil {
		return p, err
	}
	p.Description = db.StringPtr(description)
	p.UserID = db.StringPtr(userID)

	if catID.Valid {
		p.Category = &models.Category{
			ID:        catID.String,
			Name:      catName.String,
			CreatedAt: catCreated.Time,
		}
	}
	if uID.Valid {
		p.User = &models.User{
			ID:        uID.String,
			Email:     uEmail.String,
			FirstName: uFirst.String,
			LastName:  db.StringPtr(uLast),
			Status:    uStatus.Bool,
			CreatedAt: uCreated.Time,
			UpdatedAt: uUpdated.Time,
		}
	}
	return p, nil
}

func (r ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = r.newID()
	p.CreatedAt = r.now()

	_, err := r.DB.ExecContext(ctx, r.q(`
		INSERT INTO products (id, name, description, price, category_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.Name, db.NullableString(p.Description), p.Price, p.CategoryID, db.NullableString(p.UserID), p.CreatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return r.FindByID(ctx, p.ID)
}

func (r ProductRepository) FindByID(ctx context.Context, id string) (models.Product, error) {
	p, err := scanProduct(r.DB.QueryRowContext(ctx, r.q(productSelect+` WHERE p.id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, notFound("Product")
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (r ProductRepository) FindMany(ctx context.Context, q pagination.Query) ([]models.Product, int, error) {
	products := []models.Product{}
	total, err := r.findPage(ctx,
		productSelect+`%s ORDER BY p.created_at, p.id LIMIT ? OFFSET ?`,
		`SELECT COUNT(*) FROM products p`,
		q,
		func(rows *sql.Rows) error {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			products = append(products, p)
			return nil
		},
	)
	if err != nil {
		return nil, 0, fmt.Errorf("find products: %w", err)
	}
	return products, total, nil
}

// CountByCategory is used to refuse deleting a category that still has products.
func (r ProductRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM products WHERE category_id = ?`), categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// Update applies the non-nil fields of req and returns the stored row.
func (r ProductRepository) Update(ctx context.Context, id string, req models.UpdateProductRequest) (models.Product, error) {
	sets := []string{}
	args := []any{}
	add := func(column string, val any) {
		sets = append(sets, column+" = ?")
		args = append(args, val)
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.CategoryID != nil {
		add("category_id", *req.CategoryID)
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}
	args = append(args, id)

	if _, err := r.DB.ExecContext(ctx, r.q(`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...); err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return r.FindByID(ctx, id)
}

func (r ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.execOne(ctx, "Product", `DELETE FROM products WHERE id = ?`, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
