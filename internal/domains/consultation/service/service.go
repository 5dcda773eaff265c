package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"consultation/config"
	"consultation/infras/otel"
	"consultation/infras/s3"
	categoryModel "consultation/internal/domains/category/model"
	categoryRepo "consultation/internal/domains/category/repository"
	"consultation/internal/domains/consultation/model"
	"consultation/internal/domains/consultation/model/dto"
	"consultation/internal/domains/consultation/pricing"
	"consultation/internal/domains/consultation/repository"
	"consultation/shared"
	"consultation/shared/cache"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	gModel "consultation/shared/model"
	"consultation/shared/timezone"
	"consultation/shared/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetConsultation    = "consultation:get"
	cacheGetAllConsultation = "consultation:gets"
)

var (
	ErrMissingCategory          = failure.BadRequestFromString("Please provide category id")
	ErrConsultationExists       = failure.BadRequestFromString("Consultation already exist")
	ErrInvalidCategory          = failure.BadRequestFromString("Invalid category")
	ErrInvalidConsultationData  = failure.BadRequestFromString("Invalid consultation data")
	ErrNoMode                   = failure.BadRequestFromString("Select atleast one mode")
	ErrInvalidName              = failure.BadRequestFromString("Invalid name")
	ErrInvalidDuration          = failure.BadRequestFromString("Invalid duration")
	ErrInvalidMeetingType       = failure.BadRequestFromString("Invalid meeting type")
	ErrInvalidStaff             = failure.BadRequestFromString("Invalid staff")
	ErrInvalidStaffSpecialPrice = failure.BadRequestFromString("Invalid staff special price")
	ErrConsultationNotFound     = failure.NotFound("Consultation not found")
)

type Consultation interface {
	Create(ctx context.Context, req dto.ConsultationRequest) (dto.ConsultationResponse, error)
	Update(ctx context.Context, req dto.ConsultationRequest, id string) (dto.ConsultationResponse, error)
	GetAll(ctx context.Context, organisation, categoryID string, params gDto.QueryParams) (dto.GetConsultationsResponse, error)
	Get(ctx context.Context, organisation, id string) (dto.ConsultationResponse, error)
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (dto.ConsultationResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Consultation
	offeringRepo repository.Offering
	categoryRepo categoryRepo.Category
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	s3           s3.S3
}

func New(
	repo repository.Consultation,
	offeringRepo repository.Offering,
	categoryRepo categoryRepo.Category,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Consultation {
	return &serviceImpl{
		repo:         repo,
		offeringRepo: offeringRepo,
		categoryRepo: categoryRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		s3:           s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.ConsultationRequest) (res dto.ConsultationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	duration, err := s.validate(ctx, actor.Organisation, req, constant.Empty)
	if err != nil {
		return res, err
	}

	now := timezone.Now()
	consultation := model.Consultation{
		ID:             uuid.NewString(),
		Organisation:   actor.Organisation,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		Image:          req.Image,
		Duration:       duration,
		IsStaffEnabled: req.IsStaffEnabled,
		SoftDelete:     gModel.SoftDelete{IsActive: true},
		Metadata:       gModel.NewMetadata(now, actor.UserID),
	}

	offerings, err := buildOfferings(consultation, req, actor.UserID)
	if err != nil {
		return res, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, consultation); err != nil {
			return err
		}

		return s.offeringRepo.InsertBulkTx(ctx, tx, offerings)
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create consultation")

		return res, fmt.Errorf("failed to create consultation: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	res.FromModel(consultation, offerings)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.ConsultationRequest, id string) (res dto.ConsultationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	consultation, err := s.find(ctx, actor.Organisation, id)
	if err != nil {
		return res, err
	}

	duration, err := s.validate(ctx, actor.Organisation, req, id)
	if err != nil {
		return res, err
	}

	consultation.CategoryID = req.CategoryID
	consultation.Name = req.Name
	consultation.Description = req.Description
	consultation.Duration = duration
	consultation.IsStaffEnabled = req.IsStaffEnabled
	consultation.ModifiedAt = timezone.Now()
	consultation.ModifiedBy = actor.UserID

	fields := map[string]any{
		model.FieldCategoryID:     consultation.CategoryID,
		model.FieldName:           consultation.Name,
		model.FieldDescription:    consultation.Description,
		model.FieldDuration:       consultation.Duration,
		model.FieldIsStaffEnabled: consultation.IsStaffEnabled,
		constant.FieldModifiedAt:  consultation.ModifiedAt,
		constant.FieldModifiedBy:  consultation.ModifiedBy,
	}

	if req.Image != constant.Empty {
		consultation.Image = req.Image
		fields[model.FieldImage] = req.Image
	}

	offerings, err := buildOfferings(consultation, req, actor.UserID)
	if err != nil {
		return res, err
	}

	err = s.repo.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.repo.UpdateTx(ctx, tx, fields, byID(model.TableName, id, actor.Organisation)); err != nil {
			return err
		}

		if _, err := s.offeringRepo.UpdateTx(ctx, tx, shared.SoftDeleteFields(actor.UserID), offeringsOf(actor.Organisation, id)); err != nil {
			return err
		}

		return s.offeringRepo.InsertBulkTx(ctx, tx, offerings)
	})
	if err != nil {
		log.Error().Err(err).Str("consultation_id", id).Msg("failed to update consultation")

		return res, fmt.Errorf("failed to update consultation: %w", err)
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetConsultation, actor.Organisation, id))

	res.FromModel(consultation, offerings)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, organisation, categoryID string, params gDto.QueryParams) (res dto.GetConsultationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	var extra []any
	if categoryID != constant.Empty {
		extra = append(extra, gDto.Filter{Field: model.FieldCategoryID, Value: categoryID, Operator: gDto.FilterOperatorEq, Table: model.TableName})
	}

	filter := shared.FilterActiveByOrganisation(organisation, model.TableName, extra...)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllConsultation, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count consultations")

		return res, fmt.Errorf("failed to count consultations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get consultations")

		return res, fmt.Errorf("failed to get consultations: %w", err)
	}

	ids := make([]string, len(models))
	for i, mod := range models {
		ids[i] = mod.ID
	}

	offerings, err := s.offerings(ctx, organisation, ids...)
	if err != nil {
		return res, err
	}

	res.FromModels(models, offerings, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save consultations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, organisation, id string) (res dto.ConsultationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetConsultation, organisation, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	consultation, err := s.find(ctx, organisation, id)
	if err != nil {
		return res, err
	}

	offerings, err := s.offerings(ctx, organisation, id)
	if err != nil {
		return res, err
	}

	res.FromModel(consultation, offerings)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save consultation to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (res dto.ConsultationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.UploadImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	consultation, err := s.find(ctx, actor.Organisation, id)
	if err != nil {
		return res, err
	}

	url, err := s.s3.UploadFile(ctx, model.EntityName, req.ImageFile, req.Image, uuid.NewString()+filepath.Ext(req.Image.Filename))
	if err != nil {
		log.Error().Err(err).Msg("failed to upload consultation image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	fields := map[string]any{
		model.FieldImage:         url,
		constant.FieldModifiedAt: timezone.Now(),
		constant.FieldModifiedBy: actor.UserID,
	}

	if _, err = s.repo.Update(ctx, fields, byID(model.TableName, id, actor.Organisation)); err != nil {
		if delErr := s.s3.DeleteByURL(context.WithoutCancel(ctx), url); delErr != nil {
			log.Error().Err(delErr).Str("url", url).Msg("failed to remove orphaned consultation image")
		}

		return res, fmt.Errorf("failed to update consultation image: %w", err)
	}

	if consultation.Image != constant.Empty {
		if delErr := s.s3.DeleteByURL(ctx, consultation.Image); delErr != nil {
			log.Warn().Err(delErr).Str("url", consultation.Image).Msg("failed to remove previous consultation image")
		}
	}

	offerings, err := s.offerings(ctx, actor.Organisation, id)
	if err != nil {
		return res, err
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetConsultation, actor.Organisation, id))

	consultation.Image = url
	res.FromModel(consultation, offerings)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".consultation.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	err = s.repo.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		affected, err := s.repo.UpdateTx(ctx, tx, shared.SoftDeleteFields(actor.UserID), byID(model.TableName, id, actor.Organisation))
		if err != nil {
			return err
		}

		if affected == 0 {
			return ErrConsultationNotFound
		}

		_, err = s.offeringRepo.UpdateTx(ctx, tx, shared.SoftDeleteFields(actor.UserID), offeringsOf(actor.Organisation, id))

		return err
	})
	if err != nil {
		log.Error().Err(err).Str("consultation_id", id).Msg("failed to delete consultation")

		return fmt.Errorf("failed to delete consultation: %w", err)
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetConsultation, actor.Organisation, id))

	return nil
}

// validate applies the consultation payload rules and returns the parsed duration.
func (s *serviceImpl) validate(ctx context.Context, organisation string, req dto.ConsultationRequest, exceptID string) (int, error) {
	if req.CategoryID == constant.Empty {
		return 0, ErrMissingCategory
	}

	nameFilter := []any{gDto.Filter{Field: model.FieldName, Value: req.Name, Operator: gDto.FilterOperatorEq, Table: model.TableName}}
	if exceptID != constant.Empty {
		nameFilter = append(nameFilter, gDto.Filter{Field: model.FieldID, Value: exceptID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName})
	}

	exist, err := s.repo.Exist(ctx, shared.FilterActiveByOrganisation(organisation, model.TableName, nameFilter...))
	if err != nil {
		return 0, fmt.Errorf("failed to check consultation name: %w", err)
	}

	if exist {
		return 0, ErrConsultationExists
	}

	categoryExist, err := s.categoryRepo.Exist(ctx, byID(categoryModel.TableName, req.CategoryID, organisation))
	if err != nil {
		return 0, fmt.Errorf("failed to check category: %w", err)
	}

	if !categoryExist {
		return 0, ErrInvalidCategory
	}

	if len(req.ConsultationData) > model.MaxModes {
		return 0, ErrInvalidConsultationData
	}

	if len(req.ConsultationData) == 0 {
		return 0, ErrNoMode
	}

	if validator.ValidateVar(req.Name, "name") != nil {
		return 0, ErrInvalidName
	}

	duration, err := strconv.Atoi(req.Duration.String())
	if err != nil {
		return 0, ErrInvalidDuration
	}

	modes := make(map[string]bool, len(req.ConsultationData))

	for _, data := range req.ConsultationData {
		if err := pricing.ValidateOffering(pricing.OfferingInput(data)); err != nil {
			return 0, err
		}

		if modes[data.Mode] {
			return 0, ErrInvalidConsultationData
		}

		modes[data.Mode] = true
	}

	if !req.IsStaffEnabled {
		return duration, nil
	}

	for _, data := range req.StaffData {
		if !modes[data.Mode] {
			return 0, ErrInvalidMeetingType
		}

		if data.StaffID == constant.Empty {
			return 0, ErrInvalidStaff
		}

		if data.StaffSpecialPrice == nil || *data.StaffSpecialPrice < 0 {
			return 0, ErrInvalidStaffSpecialPrice
		}
	}

	return duration, nil
}

func (s *serviceImpl) find(ctx context.Context, organisation, id string) (model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, byID(model.TableName, id, organisation))
	if err != nil {
		log.Error().Err(err).Msg("failed to get consultation")

		return consultation, fmt.Errorf("failed to get consultation: %w", err)
	}

	if consultation.ID == constant.Empty {
		return consultation, ErrConsultationNotFound
	}

	return consultation, nil
}

func (s *serviceImpl) offerings(ctx context.Context, organisation string, consultationIDs ...string) ([]model.Offering, error) {
	if len(consultationIDs) == 0 {
		return nil, nil
	}

	filter := shared.FilterActiveByOrganisation(organisation, model.OfferingTableName, gDto.Filter{
		Field:    model.FieldConsultationID,
		Value:    consultationIDs,
		Operator: gDto.FilterOperatorIn,
		Table:    model.OfferingTableName,
	})

	offerings, err := s.offeringRepo.GetAll(ctx, gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc}, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get consultation offerings")

		return nil, fmt.Errorf("failed to get consultation offerings: %w", err)
	}

	return offerings, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, key string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if key != constant.Empty {
			if err := s.cache.Delete(c, key); err != nil {
				log.Error().Err(err).Msg("failed to delete consultation cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllConsultation)
	}()
}

// buildOfferings prices the default rows and attaches staff surcharge rows when staff booking is on.
func buildOfferings(consultation model.Consultation, req dto.ConsultationRequest, user string) ([]model.Offering, error) {
	now := timezone.Now()
	offerings := make([]model.Offering, 0, len(req.ConsultationData)+len(req.StaffData))

	for _, data := range req.ConsultationData {
		finalPrice, err := pricing.Resolve(data.Price, data.DiscountType, data.DiscountValue)
		if err != nil {
			return nil, err
		}

		offerings = append(offerings, model.Offering{
			ID:             uuid.NewString(),
			Organisation:   consultation.Organisation,
			ConsultationID: consultation.ID,
			Mode:           data.Mode,
			DiscountType:   data.DiscountType,
			DiscountValue:  data.DiscountValue,
			Price:          data.Price,
			FinalPrice:     finalPrice,
			SoftDelete:     gModel.SoftDelete{IsActive: true},
			Metadata:       gModel.NewMetadata(now, user),
		})
	}

	if !consultation.IsStaffEnabled {
		return offerings, nil
	}

	for _, data := range req.StaffData {
		staffID := data.StaffID

		offerings = append(offerings, model.Offering{
			ID:                uuid.NewString(),
			Organisation:      consultation.Organisation,
			ConsultationID:    consultation.ID,
			StaffID:           &staffID,
			Mode:              data.Mode,
			IsStaffEnabled:    true,
			StaffSpecialPrice: *data.StaffSpecialPrice,
			SoftDelete:        gModel.SoftDelete{IsActive: true},
			Metadata:          gModel.NewMetadata(now, user),
		})
	}

	return offerings, nil
}

func byID(table, id, organisation string) gDto.FilterGroup {
	return shared.FilterActiveByOrganisation(organisation, table, gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: table})
}

func offeringsOf(organisation, consultationID string) gDto.FilterGroup {
	return shared.FilterActiveByOrganisation(organisation, model.OfferingTableName, gDto.Filter{
		Field:    model.FieldConsultationID,
		Value:    consultationID,
		Operator: gDto.FilterOperatorEq,
		Table:    model.OfferingTableName,
	})
}
