package services

import (
	"context"
	"fmt"
	"net/url"

	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/filter"
	"catalogapi/internal/pagination"
	"catalogapi/internal/utils"

	"go.uber.org/zap"
)

var UserFilters = filter.Whitelist{
	{Param: "email", Column: "email", Kind: filter.Contains},
	{Param: "first_name", Column: "first_name", Kind: filter.Contains},
	{Param: "last_name", Column: "last_name", Kind: filter.Contains},
	{Param: "status", Column: "status", Kind: filter.Bool},
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindMany(ctx context.Context, q pagination.Query) ([]models.User, int, error)
	Update(ctx context.Context, id string, req models.UpdateUserRequest) (models.User, error)
	Delete(ctx context.Context, id string) error
}

type UserService struct {
	Users UserStore
	Log   *zap.Logger
}

func (s UserService) List(ctx context.Context, query url.Values) (pagination.Result[models.UserResponse], error) {
	return pagination.Paginate(ctx, s.Users.FindMany, UserFilters.Build(query),
		query.Get("page"), query.Get("limit"), pagination.Pure(models.ToUserResponse))
}

func (s UserService) Get(ctx context.Context, id string) (models.UserResponse, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return models.UserResponse{}, err
	}
	return models.ToUserResponse(u), nil
}

func (s UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest) (models.UserResponse, error) {
	if _, err := s.Users.FindByID(ctx, id); err != nil {
		return models.UserResponse{}, err
	}
	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if err := ensureEmailFree(ctx, s.Users, email, id); err != nil {
			return models.UserResponse{}, err
		}
		req.Email = &email
	}

	u, err := s.Users.Update(ctx, id, req)
	if err != nil {
		return models.UserResponse{}, fmt.Errorf("update user: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "users", "update", "user_id="+id)
	return models.ToUserResponse(u), nil
}

func (s UserService) Delete(ctx context.Context, id string) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("delete user: %w", err)
	}
	utils.LogEvent(ctx, s.Log, "users", "delete", "user_id="+id)
	return nil
}
