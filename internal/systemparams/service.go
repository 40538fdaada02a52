package systemparams

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DevStdio379/settisfy-web/pkg/db/models"
	dbtypes "github.com/DevStdio379/settisfy-web/pkg/db/types"
	pkgerrors "github.com/DevStdio379/settisfy-web/pkg/errors"
	"github.com/DevStdio379/settisfy-web/pkg/logger"
	"github.com/DevStdio379/settisfy-web/pkg/types"
	"github.com/shopspring/decimal"
)

// ParametersDTO is the transport shape of the system parameters.
type ParametersDTO struct {
	PlatformFee                   decimal.Decimal         `json:"platformFee"`
	PlatformFeeIsActive           bool                    `json:"platformFeeIsActive"`
	ShowAdminApproveBookingButton bool                    `json:"showAdminApproveBookingButton"`
	ShowAssignSettlerButton       bool                    `json:"showAssignSettlerButton"`
	FAQLink                       string                  `json:"faqLink"`
	CustomerSupportLink           string                  `json:"customerSupportLink"`
	SettlerResources              []types.SettlerResource `json:"settlerResources"`
	UpdatedAt                     time.Time               `json:"updatedAt"`
}

// UpdateInput patches the parameters; nil fields are left unchanged.
type UpdateInput struct {
	PlatformFee                   *decimal.Decimal         `json:"platformFee"`
	PlatformFeeIsActive           *bool                    `json:"platformFeeIsActive"`
	ShowAdminApproveBookingButton *bool                    `json:"showAdminApproveBookingButton"`
	ShowAssignSettlerButton       *bool                    `json:"showAssignSettlerButton"`
	FAQLink                       *string                  `json:"faqLink" validate:"omitempty,url"`
	CustomerSupportLink           *string                  `json:"customerSupportLink" validate:"omitempty,url"`
	SettlerResources              *[]types.SettlerResource `json:"settlerResources"`
}

func FromModel(m *models.SystemParameter) ParametersDTO {
	resources := m.SettlerResources.Val
	if resources == nil {
		resources = []types.SettlerResource{}
	}
	return ParametersDTO{
		PlatformFee:                   m.PlatformFee,
		PlatformFeeIsActive:           m.PlatformFeeIsActive,
		ShowAdminApproveBookingButton: m.ShowAdminApproveBookingButton,
		ShowAssignSettlerButton:       m.ShowAssignSettlerButton,
		FAQLink:                       m.FAQLink,
		CustomerSupportLink:           m.CustomerSupportLink,
		SettlerResources:              resources,
		UpdatedAt:                     m.UpdatedAt,
	}
}

type repository interface {
	Get(ctx context.Context) (*models.SystemParameter, error)
	Save(ctx context.Context, params *models.SystemParameter) error
}

type Service interface {
	Get(ctx context.Context) (*ParametersDTO, error)
	Update(ctx context.Context, input UpdateInput) (*ParametersDTO, error)
}

type service struct {
	repo   repository
	logger *logger.Logger
}

func NewService(repo repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("system parameters repository required")
	}
	return &service{repo: repo, logger: logg}, nil
}

func (s *service) Get(ctx context.Context) (*ParametersDTO, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*ParametersDTO, error) {
	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.PlatformFee != nil {
		if input.PlatformFee.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform fee cannot be negative")
		}
		row.PlatformFee = input.PlatformFee.Round(2)
	}
	if input.PlatformFeeIsActive != nil {
		row.PlatformFeeIsActive = *input.PlatformFeeIsActive
	}
	if input.ShowAdminApproveBookingButton != nil {
		row.ShowAdminApproveBookingButton = *input.ShowAdminApproveBookingButton
	}
	if input.ShowAssignSettlerButton != nil {
		row.ShowAssignSettlerButton = *input.ShowAssignSettlerButton
	}
	if input.FAQLink != nil {
		row.FAQLink = strings.TrimSpace(*input.FAQLink)
	}
	if input.CustomerSupportLink != nil {
		row.CustomerSupportLink = strings.TrimSpace(*input.CustomerSupportLink)
	}
	if input.SettlerResources != nil {
		for i, res := range *input.SettlerResources {
			if strings.TrimSpace(res.Title) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("settler resource %d requires a title", i))
			}
		}
		row.SettlerResources = dbtypes.NewJSON(*input.SettlerResources)
	}

	if err := s.repo.Save(ctx, row); err != nil {
		return nil, err
	}
	if s.logger != nil {
		logCtx := s.logger.WithFields(ctx, map[string]any{
			"platform_fee":        row.PlatformFee.StringFixed(2),
			"platform_fee_active": row.PlatformFeeIsActive,
		})
		s.logger.Info(logCtx, "system_parameters.updated")
	}
	dto := FromModel(row)
	return &dto, nil
}
