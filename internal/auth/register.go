package auth

import (
	"context"
	"strings"

	"github.com/DevStdio379/settisfy-web/internal/accounts"
	"github.com/DevStdio379/settisfy-web/internal/users"
	"github.com/DevStdio379/settisfy-web/pkg/config"
	"github.com/DevStdio379/settisfy-web/pkg/db"
	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	"github.com/DevStdio379/settisfy-web/pkg/enums"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/security"
	"gorm.io/gorm"
)

// RegisterService creates operator accounts.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if req.Role == enums.AccountRoleAdmin && req.UserID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin accounts do not act for a user")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hash password")
	}

	var resp RegisterResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		accountRepo := accounts.NewRepository(tx)
		userRepo := users.NewRepository(tx)

		if _, err := accountRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return err
		}

		var user *models.User
		if req.Role != enums.AccountRoleAdmin {
			user, err = s.resolveUser(ctx, userRepo, email, req)
			if err != nil {
				return err
			}
		}

		account := &models.OperatorAccount{
			Email:        email,
			PasswordHash: passwordHash,
			Role:         req.Role,
			IsActive:     true,
		}
		if user != nil {
			account.UserID = &user.ID
			resp.User = users.FromModel(user)
		}
		if err := accountRepo.Create(ctx, account); err != nil {
			return err
		}
		resp.Account = accountFromModel(account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// resolveUser links an existing marketplace user of the matching type or
// creates one from the request names.
func (s *registerService) resolveUser(ctx context.Context, userRepo *users.Repository, email string, req RegisterRequest) (*models.User, error) {
	if req.UserID != nil {
		user, err := userRepo.FindByID(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		if user.AccountType != string(req.Role) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "user account type does not match role")
		}
		return user, nil
	}

	if strings.TrimSpace(req.FirstName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first_name is required")
	}
	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user email already registered")
	} else if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		return nil, err
	}
	return userRepo.Create(ctx, users.CreateUserDTO{
		Email:       email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		AccountType: string(req.Role),
	})
}
