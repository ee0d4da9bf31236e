// Package seed loads users, categories and products from a YAML file. Seeding
// is idempotent: rows that already exist are left untouched.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"catalogapi/internal/auth"
	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/filter"
	"catalogapi/internal/pagination"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

type File struct {
	Users      []User     `yaml:"users"`
	Categories []Category `yaml:"categories"`
	Products   []Product  `yaml:"products"`
}

type User struct {
	Email     string  `yaml:"email"`
	Password  string  `yaml:"password"`
	FirstName string  `yaml:"first_name"`
	LastName  *string `yaml:"last_name"`
	Status    *bool   `yaml:"status"`
}

type Category struct {
	Name  string `yaml:"name"`
	Owner string `yaml:"owner"`
}

type Product struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
	Price       float64 `yaml:"price"`
	Category    string  `yaml:"category"`
	Owner       string  `yaml:"owner"`
}

// Default returns the seed shipped with the binary.
func Default() (File, error) {
	return Load(bytes.NewReader(defaultSeed))
}

// Load decodes a seed file. Unknown keys are rejected.
func Load(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("decode seed: %w", err)
	}
	return f, f.validate()
}

func (f File) validate() error {
	verrs := domain.ValidationErrors{}
	emails := map[string]bool{}
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || len(u.Password) < 6 || strings.TrimSpace(u.FirstName) == "" {
			verrs.Add(fmt.Sprintf("users[%d]", i), "email, first_name and a password of at least 6 characters are required")
		}
		emails[strings.ToLower(u.Email)] = true
	}
	categories := map[string]bool{}
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			verrs.Add(fmt.Sprintf("categories[%d]", i), "name is required")
		}
		categories[c.Name] = true
	}
	for i, p := range f.Products {
		field := fmt.Sprintf("products[%d]", i)
		if strings.TrimSpace(p.Name) == "" || p.Price <= 0 {
			verrs.Add(field, "name and a positive price are required")
		}
		if !categories[p.Category] {
			verrs.Add(field, "unknown category "+p.Category)
		}
		if p.Owner != "" && !emails[strings.ToLower(p.Owner)] {
			verrs.Add(field, "unknown owner "+p.Owner)
		}
	}
	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type CategoryStore interface {
	Create(ctx context.Context, c models.Category) (models.Category, error)
	FindMany(ctx context.Context, q pagination.Query) ([]models.Category, int, error)
}

type ProductStore interface {
	Create(ctx context.Context, p models.Product) (models.Product, error)
	FindMany(ctx context.Context, q pagination.Query) ([]models.Product, int, error)
}

type Seeder struct {
	Users      UserStore
	Categories CategoryStore
	Products   ProductStore
	Log        *zap.Logger
}

// Report counts what Run created and skipped.
type Report struct {
	UsersCreated, UsersSkipped           int
	CategoriesCreated, CategoriesSkipped int
	ProductsCreated, ProductsSkipped     int
}

var (
	categoryByName = filter.Whitelist{{Param: "name", Column: "name", Kind: filter.Exact}}
	productByName  = filter.Whitelist{
		{Param: "name", Column: "p.name", Kind: filter.Exact},
		{Param: "category", Column: "p.category_id", Kind: filter.Exact},
	}
)

func (s Seeder) Run(ctx context.Context, f File) (Report, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	var rep Report

	owners := map[string]string{}
	for _, su := range f.Users {
		email := strings.ToLower(strings.TrimSpace(su.Email))
		existing, err := s.Users.FindByEmail(ctx, email)
		if err == nil {
			owners[email] = existing.ID
			rep.UsersSkipped++
			continue
		}
		if !domain.IsNotFound(err) {
			return rep, fmt.Errorf("seed user %s: %w", email, err)
		}
		hash, err := auth.HashPassword(su.Password)
		if err != nil {
			return rep, fmt.Errorf("seed user %s: %w", email, err)
		}
		status := true
		if su.Status != nil {
			status = *su.Status
		}
		u, err := s.Users.Create(ctx, models.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			Status:       status,
		})
		if err != nil {
			return rep, fmt.Errorf("seed user %s: %w", email, err)
		}
		owners[email] = u.ID
		rep.UsersCreated++
	}

	categories := map[string]string{}
	for _, sc := range f.Categories {
		found, _, err := s.Categories.FindMany(ctx, pagination.Query{
			Filters: categoryByName.Build(url.Values{"name": {sc.Name}}),
			Take:    1,
		})
		if err != nil {
			return rep, fmt.Errorf("seed category %s: %w", sc.Name, err)
		}
		if len(found) > 0 {
			categories[sc.Name] = found[0].ID
			rep.CategoriesSkipped++
			continue
		}
		c, err := s.Categories.Create(ctx, models.Category{Name: sc.Name, UserID: ownerRef(owners, sc.Owner)})
		if err != nil {
			return rep, fmt.Errorf("seed category %s: %w", sc.Name, err)
		}
		categories[sc.Name] = c.ID
		rep.CategoriesCreated++
	}

	for _, sp := range f.Products {
		categoryID := categories[sp.Category]
		_, total, err := s.Products.FindMany(ctx, pagination.Query{
			Filters: productByName.Build(url.Values{"name": {sp.Name}, "category": {categoryID}}),
			Take:    1,
		})
		if err != nil {
			return rep, fmt.Errorf("seed product %s: %w", sp.Name, err)
		}
		if total > 0 {
			rep.ProductsSkipped++
			continue
		}
		_, err = s.Products.Create(ctx, models.Product{
			Name:        sp.Name,
			Description: sp.Description,
			Price:       sp.Price,
			CategoryID:  categoryID,
			UserID:      ownerRef(owners, sp.Owner),
		})
		if err != nil {
			return rep, fmt.Errorf("seed product %s: %w", sp.Name, err)
		}
		rep.ProductsCreated++
	}

	log.Info("seed finished",
		zap.Int("users_created", rep.UsersCreated),
		zap.Int("users_skipped", rep.UsersSkipped),
		zap.Int("categories_created", rep.CategoriesCreated),
		zap.Int("categories_skipped", rep.CategoriesSkipped),
		zap.Int("products_created", rep.ProductsCreated),
		zap.Int("products_skipped", rep.ProductsSkipped),
	)
	return rep, nil
}

func ownerRef(owners map[string]string, email string) *string {
	id, ok := owners[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil
	}
	return &id
}
