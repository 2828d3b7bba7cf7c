package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, name, password_hash, phone, district, status,
			created_at, updated_at
		) VALUES (
			:id, :email, :name, :password_hash, :phone, :district, :status,
			:created_at, :updated_at
		)
	`
	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, email, name, password_hash, phone, district, status,
			   last_login_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, name, password_hash, phone, district, status,
			   last_login_at, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	var user model.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = :email,
			name = :name,
			password_hash = :password_hash,
			phone = :phone,
			district = :district,
			status = :status,
			last_login_at = :last_login_at,
			updated_at = :updated_at
		WHERE id = :id
	`
	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *userRepository) GetRoles(ctx context.Context, userID uuid.UUID) (model.RoleList, error) {
	query := `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`

	var roles model.RoleList
	err := r.db.SelectContext(ctx, &roles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	return roles, nil
}

func (r *userRepository) AssignRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, role) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

func (r *userRepository) RemoveRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	query := `DELETE FROM user_roles WHERE user_id = $1 AND role = $2`
	_, err := r.db.ExecContext(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("failed to remove role: %w", err)
	}
	return nil
}
