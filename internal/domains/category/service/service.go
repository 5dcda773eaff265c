package service

import (
	"context"
	"fmt"
	"path/filepath"

	"consultation/config"
	"consultation/infras/otel"
	"consultation/infras/s3"
	"consultation/internal/domains/category/model"
	"consultation/internal/domains/category/model/dto"
	"consultation/internal/domains/category/repository"
	"consultation/shared"
	"consultation/shared/cache"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"
	gModel "consultation/shared/model"
	"consultation/shared/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetCategory    = "category:get"
	cacheGetAllCategory = "category:gets"
)

var (
	ErrCategoryExists   = failure.BadRequestFromString("Category already exists")
	ErrCategoryNotFound = failure.NotFound("category not found")
	ErrInvalidName      = failure.BadRequestFromString("Invalid name")
	ErrEmptyUpdate      = failure.BadRequestFromString("update request cannot be empty")
)

type Category interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (dto.CategoryResponse, error)
	GetAll(ctx context.Context, organisation string, params gDto.QueryParams) (dto.GetCategoriesResponse, error)
	Get(ctx context.Context, organisation, id string) (dto.CategoryResponse, error)
	Update(ctx context.Context, req dto.UpdateCategoryRequest, id string) error
	UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (dto.CategoryResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Category
	cfg   *config.Config
	cache cache.RedisCache
	otel  otel.Otel
	s3    s3.S3
}

func New(repo repository.Category, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Category {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		otel:  otel,
		s3:    s3,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateCategoryRequest) (res dto.CategoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	if validator.ValidateVar(req.Name, "name") != nil {
		return res, ErrInvalidName
	}

	if err = s.ensureUniqueName(ctx, actor.Organisation, req.Name, constant.Empty); err != nil {
		return res, err
	}

	category := req.ToModel(actor.Organisation, actor.UserID)
	if err = s.repo.Insert(ctx, category); err != nil {
		log.Error().Err(err).Msg("failed to create category")

		return res, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidate(ctx, constant.Empty)

	res.FromModel(category)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, organisation string, params gDto.QueryParams) (res dto.GetCategoriesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterActiveByOrganisation(organisation, model.TableName)
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllCategory, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for categories")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count categories")

		return res, fmt.Errorf("failed to count categories: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get categories")

		return res, fmt.Errorf("failed to get categories: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save categories to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, organisation, id string) (res dto.CategoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetCategory, organisation, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	category, err := s.find(ctx, organisation, id)
	if err != nil {
		return res, err
	}

	res.FromModel(category)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save category to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateCategoryRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.Update")
	defer scope.End()
	defer scope.TraceIfError(err)

	if req == (dto.UpdateCategoryRequest{}) {
		return ErrEmptyUpdate
	}

	actor := gModel.ActorFromContext(ctx)

	if _, err = s.find(ctx, actor.Organisation, id); err != nil {
		return err
	}

	if req.Name != constant.Empty {
		if validator.ValidateVar(req.Name, "name") != nil {
			return ErrInvalidName
		}

		if err = s.ensureUniqueName(ctx, actor.Organisation, req.Name, id); err != nil {
			return err
		}
	}

	filter := shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, byID(id))
	if _, err = s.repo.Update(ctx, shared.TransformFields(req, actor.UserID), filter); err != nil {
		log.Error().Err(err).Msg("failed to update category")

		return fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetCategory, actor.Organisation, id))

	return nil
}

func (s *serviceImpl) UploadImage(ctx context.Context, req dto.UploadImageRequest, id string) (res dto.CategoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.UploadImage")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)

	category, err := s.find(ctx, actor.Organisation, id)
	if err != nil {
		return res, err
	}

	fileName := uuid.NewString() + filepath.Ext(req.Image.Filename)

	url, err := s.s3.UploadFile(ctx, model.EntityName, req.ImageFile, req.Image, fileName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload category image")

		return res, fmt.Errorf("failed to upload image: %w", err)
	}

	filter := shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, byID(id))
	if _, err = s.repo.Update(ctx, shared.TransformFields(dto.UpdateCategoryRequest{Image: &url}, actor.UserID), filter); err != nil {
		if delErr := s.s3.DeleteByURL(context.WithoutCancel(ctx), url); delErr != nil {
			log.Error().Err(delErr).Str("url", url).Msg("failed to remove orphaned category image")
		}

		return res, fmt.Errorf("failed to update category image: %w", err)
	}

	if category.Image != constant.Empty {
		if delErr := s.s3.DeleteByURL(ctx, category.Image); delErr != nil {
			log.Warn().Err(delErr).Str("url", category.Image).Msg("failed to remove previous category image")
		}
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetCategory, actor.Organisation, id))

	category.Image = url
	res.FromModel(category)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".category.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	actor := gModel.ActorFromContext(ctx)
	filter := shared.FilterActiveByOrganisation(actor.Organisation, model.TableName, byID(id))

	affected, err := s.repo.Update(ctx, shared.SoftDeleteFields(actor.UserID), filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete category")

		return fmt.Errorf("failed to delete category: %w", err)
	}

	if affected == 0 {
		return ErrCategoryNotFound
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetCategory, actor.Organisation, id))

	return nil
}

func (s *serviceImpl) find(ctx context.Context, organisation, id string) (model.Category, error) {
	category, err := s.repo.Get(ctx, shared.FilterActiveByOrganisation(organisation, model.TableName, byID(id)))
	if err != nil {
		log.Error().Err(err).Msg("failed to get category")

		return category, fmt.Errorf("failed to get category: %w", err)
	}

	if category.ID == constant.Empty {
		return category, ErrCategoryNotFound
	}

	return category, nil
}

func (s *serviceImpl) ensureUniqueName(ctx context.Context, organisation, name, exceptID string) error {
	extra := []any{
		gDto.Filter{Field: model.FieldName, Value: name, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}

	if exceptID != constant.Empty {
		extra = append(extra, gDto.Filter{Field: model.FieldID, Value: exceptID, Operator: gDto.FilterOperatorNotEq, Table: model.TableName})
	}

	exist, err := s.repo.Exist(ctx, shared.FilterActiveByOrganisation(organisation, model.TableName, extra...))
	if err != nil {
		log.Error().Err(err).Msg("failed to check category name")

		return fmt.Errorf("failed to check category name: %w", err)
	}

	if exist {
		return ErrCategoryExists
	}

	return nil
}

// invalidate drops the list caches and, when given, one item key.
func (s *serviceImpl) invalidate(ctx context.Context, key string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if key != constant.Empty {
			if err := s.cache.Delete(c, key); err != nil {
				log.Error().Err(err).Msg("failed to delete category cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllCategory)
	}()
}

func byID(id string) gDto.Filter {
	return gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName}
}
