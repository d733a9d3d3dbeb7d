package services

import (
	"context"
	"fmt"
	"strings"

	"medexpenses/internal/apperr"
	"medexpenses/internal/codec"
	"medexpenses/internal/models"
	"medexpenses/internal/repository"
)

type UserService interface {
	List(ctx context.Context) ([]models.AppUserSummary, error)
	Get(ctx context.Context, id uint) (*models.AppUserDetail, error)
	Create(ctx context.Context, input models.AppUserInput) (*models.AppUserDetail, error)
	Update(ctx context.Context, id uint, patch models.AppUserPatch) (*models.AppUserDetail, error)
	Delete(ctx context.Context, id uint) (*models.AppUserDetail, error)
	Roles(ctx context.Context) ([]models.UserRole, error)
}

type userService struct {
	store repository.Store
	codec *codec.Codec
}

func NewUserService(store repository.Store, c *codec.Codec) UserService {
	return &userService{store: store, codec: c}
}

func (s *userService) List(ctx context.Context) ([]models.AppUserSummary, error) {
	users, err := s.store.Users().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	roles, err := loadRoleNames(ctx, s.store.Lookups())
	if err != nil {
		return nil, err
	}

	out := make([]models.AppUserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, models.AppUserSummary{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			RoleName: labelOr(roles, u.RoleID),
		})
	}
	return out, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*models.AppUserDetail, error) {
	u, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(u)
}

func (s *userService) Create(ctx context.Context, input models.AppUserInput) (*models.AppUserDetail, error) {
	if input.RoleID == nil {
		return nil, fmt.Errorf("role_id is required: %w", apperr.ErrInvalidInput)
	}
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, fmt.Errorf("username and password are required: %w", apperr.ErrInvalidInput)
	}

	sealed, err := s.codec.SealPassword(input.Password)
	if err != nil {
		return nil, err
	}
	u := &models.AppUser{
		Username: username,
		Password: sealed,
		Email:    strings.TrimSpace(input.Email),
		RoleID:   *input.RoleID,
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkRole(ctx, tx.Lookups(), u.RoleID); err != nil {
			return err
		}
		if err := checkUserUnique(ctx, tx.Users(), u); err != nil {
			return err
		}
		return tx.Users().Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	return &models.AppUserDetail{
		ID:       u.ID,
		Username: u.Username,
		Password: codec.Digest(input.Password),
		Email:    u.Email,
		RoleID:   u.RoleID,
	}, nil
}

func (s *userService) Update(ctx context.Context, id uint, patch models.AppUserPatch) (*models.AppUserDetail, error) {
	var updated *models.AppUser

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Username != nil {
			u.Username = strings.TrimSpace(*patch.Username)
			if u.Username == "" {
				return fmt.Errorf("username cannot be empty: %w", apperr.ErrInvalidInput)
			}
		}
		if patch.Email != nil {
			u.Email = strings.TrimSpace(*patch.Email)
		}
		if patch.Password != nil {
			if *patch.Password == "" {
				return fmt.Errorf("password cannot be empty: %w", apperr.ErrInvalidInput)
			}
			if u.Password, err = s.codec.SealPassword(*patch.Password); err != nil {
				return err
			}
		}
		if patch.RoleID != nil {
			u.RoleID = *patch.RoleID
			if err := checkRole(ctx, tx.Lookups(), u.RoleID); err != nil {
				return err
			}
		}
		if patch.Username != nil || patch.Email != nil {
			if err := checkUserUnique(ctx, tx.Users(), u); err != nil {
				return err
			}
		}

		if err := tx.Users().Save(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.detail(updated)
}

func (s *userService) Delete(ctx context.Context, id uint) (*models.AppUserDetail, error) {
	var last *models.AppUserDetail

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		u, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		last = &models.AppUserDetail{ID: u.ID, Username: u.Username, Email: u.Email, RoleID: u.RoleID}
		if digest, err := s.codec.Decrypt(u.Password); err == nil {
			last.Password = digest
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (s *userService) Roles(ctx context.Context) ([]models.UserRole, error) {
	return s.store.Lookups().Roles(ctx)
}

func (s *userService) detail(u *models.AppUser) (*models.AppUserDetail, error) {
	digest, err := s.codec.Decrypt(u.Password)
	if err != nil {
		return nil, fmt.Errorf("user %d password: %w", u.ID, err)
	}
	return &models.AppUserDetail{
		ID:       u.ID,
		Username: u.Username,
		Password: digest,
		Email:    u.Email,
		RoleID:   u.RoleID,
	}, nil
}

func checkRole(ctx context.Context, lookups repository.LookupRepository, id uint) error {
	ok, err := lookups.RoleExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("role %d does not exist: %w", id, apperr.ErrInvalidReference)
	}
	return nil
}

func checkUserUnique(ctx context.Context, users repository.UserRepository, u *models.AppUser) error {
	taken, err := users.UsernameTaken(ctx, u.Username, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("username %q already exists: %w", u.Username, apperr.ErrConflict)
	}
	taken, err = users.EmailTaken(ctx, u.Email, u.ID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("email %q already registered: %w", u.Email, apperr.ErrConflict)
	}
	return nil
}
