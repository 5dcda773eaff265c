package service

import (
	"context"
	"errors"
	"fmt"

	"consultation/infras/otel"
	"consultation/infras/zoom"
	"consultation/internal/domains/zoom/model"
	"consultation/internal/domains/zoom/model/dto"
	"consultation/internal/domains/zoom/repository"
	"consultation/shared"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	gModel "consultation/shared/model"
	"consultation/shared/secret"
	"consultation/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrCredentialExists   = failure.BadRequestFromString("Zoom keys already exist")
	ErrCredentialNotFound = failure.NotFound("Zoom keys not found")
	ErrEmptyUpdate        = failure.BadRequestFromString("update request cannot be empty")
)

type Credential interface {
	GetAll(ctx context.Context) ([]dto.CredentialResponse, error)
	Create(ctx context.Context, req dto.CreateCredentialRequest) (dto.CredentialResponse, error)
	Update(ctx context.Context, req dto.UpdateCredentialRequest, id string) error
	Delete(ctx context.Context, id string) error
	// Credentials returns the opened key pair for a staff member, falling back to the
	// organisation-wide set.
	Credentials(ctx context.Context, organisation string, staffID *string) (zoom.Credentials, error)
}

type serviceImpl struct {
	repo repository.Credential
	box  secret.Box
	otel otel.Otel
}

func New(repo repository.Credential, box secret.Box, otel otel.Otel) Credential {
	return &serviceImpl{
		repo: repo,
		box:  box,
		otel: otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context) (res []dto.CredentialResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".zoom.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	models, err := s.repo.GetAll(ctx, gDto.QueryParams{}, shared.FilterActiveByOrganisation(actor.Organisation, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get zoom credentials")

		return nil, fmt.Errorf("failed to get zoom credentials: %w", err)
	}

	res = make([]dto.CredentialResponse, len(models))
	for i, mod := range models {
		opened, err := s.box.Open(mod.SecretKey)
		if err != nil {
			log.Warn().Err(err).Str("credential_id", mod.ID).Msg("failed to open zoom secret")
		}

		res[i].FromModel(mod, opened)
	}

	return res, nil
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateCredentialRequest) (res dto.CredentialResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".zoom.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	if req.StaffID != nil && *req.StaffID == constant.Empty {
		req.StaffID = nil
	}

	exist, err := s.repo.Exist(ctx, shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, byStaff(req.StaffID)))
	if err != nil {
		log.Error().Err(err).Msg("failed to check zoom credentials")

		return res, fmt.Errorf("failed to check zoom credentials: %w", err)
	}

	if exist {
		return res, ErrCredentialExists
	}

	sealed, err := s.box.Seal(req.SecretKey)
	if err != nil {
		return res, fmt.Errorf("failed to seal zoom secret: %w", err)
	}

	credential := model.Credential{
		ID:           uuid.NewString(),
		Organisation: actor.Organisation,
		StaffID:      req.StaffID,
		APIKey:       req.APIKey,
		SecretKey:    sealed,
		SoftDelete:   gModel.SoftDelete{IsActive: true},
		Metadata:     gModel.NewMetadata(timezone.Now(), actor.UserID),
	}

	if err = s.repo.Insert(ctx, credential); err != nil {
		log.Error().Err(err).Msg("failed to create zoom credentials")

		return res, fmt.Errorf("failed to create zoom credentials: %w", err)
	}

	res.FromModel(credential, req.SecretKey)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateCredentialRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".zoom.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateCredentialRequest{}) {
		return ErrEmptyUpdate
	}

	actor := gModel.ActorFromContext(ctx)

	fields := map[string]any{
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.UserID,
	}

	if req.APIKey != constant.Empty {
		fields[model.FieldAPIKey] = req.APIKey
	}

	if req.SecretKey != constant.Empty {
		sealed, err := s.box.Seal(req.SecretKey)
		if err != nil {
			return fmt.Errorf("failed to seal zoom secret: %w", err)
		}

		fields[model.FieldSecretKey] = sealed
	}

	affected, err := s.repo.Update(ctx, fields, byID(actor.Organisation, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to update zoom credentials")

		return fmt.Errorf("failed to update zoom credentials: %w", err)
	}

	if affected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".zoom.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	affected, err := s.repo.Update(ctx, shared.SoftDeleteFields(actor.UserID), byID(actor.Organisation, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to delete zoom credentials")

		return fmt.Errorf("failed to delete zoom credentials: %w", err)
	}

	if affected == 0 {
		return ErrCredentialNotFound
	}

	return nil
}

func (s *serviceImpl) Credentials(ctx context.Context, organisation string, staffID *string) (creds zoom.Credentials, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".zoom.Credentials")
	defer scope.End()
	defer scope.TraceIfError(err)

	lookups := []*string{nil}
	if staffID != nil && *staffID != constant.Empty {
		lookups = []*string{staffID, nil}
	}

	for _, staff := range lookups {
		credential, err := s.repo.Get(ctx, shared.FilterActiveByOrganisation(organisation, model.TableName, byStaff(staff)))
		if err != nil {
			return creds, fmt.Errorf("failed to get zoom credentials: %w", err)
		}

		if credential.ID == constant.Empty {
			continue
		}

		opened, err := s.box.Open(credential.SecretKey)
		if err != nil {
			return creds, fmt.Errorf("failed to open zoom secret: %w", err)
		}

		return zoom.Credentials{APIKey: credential.APIKey, SecretKey: opened}, nil
	}

	return creds, errors.Join(ErrCredentialNotFound, fmt.Errorf("no zoom credentials for organisation %s", organisation))
}

func byStaff(staffID *string) gDto.Filter {
	if staffID == nil {
		return gDto.Filter{Field: model.FieldStaffID, Operator: gDto.FilterIsNull, Table: model.TableName}
	}

	return gDto.Filter{Field: model.FieldStaffID, Value: *staffID, Operator: gDto.FilterOperatorEq, Table: model.TableName}
}

func byID(organisation, id string) gDto.FilterGroup {
	return shared.FilterActiveByOrganisation(organisation, model.TableName, gDto.Filter{
		Field:    model.FieldID,
		Value:    id,
		Operator: gDto.FilterOperatorEq,
		Table:    model.TableName,
	})
}
