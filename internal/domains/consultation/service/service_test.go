package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"consultation/config"
	"consultation/infras/otel/mocks"
	s3Mocks "consultation/infras/s3/mocks"
	categoryMocks "consultation/internal/domains/category/mocks"
	consultationMocks "consultation/internal/domains/consultation/mocks"
	"consultation/internal/domains/consultation/model"
	"consultation/internal/domains/consultation/model/dto"
	"consultation/internal/domains/consultation/pricing"
	"consultation/internal/domains/consultation/service"
	cacheMocks "consultation/shared/cache/mocks"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	gModel "consultation/shared/model"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	repo         *consultationMocks.MockConsultation
	offeringRepo *consultationMocks.MockOffering
	categoryRepo *categoryMocks.MockCategory
	cache        *cacheMocks.MockRedisCache
	svc          service.Consultation
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f := fixture{
		repo:         consultationMocks.NewMockConsultation(ctrl),
		offeringRepo: consultationMocks.NewMockOffering(ctrl),
		categoryRepo: categoryMocks.NewMockCategory(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
	}
	f.svc = service.New(f.repo, f.offeringRepo, f.categoryRepo, cfg, f.cache, mocks.NewOtel(), s3Mocks.NewMockS3(ctrl))

	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().
		WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(tx *sqlx.Tx) error) error {
			return fn(nil)
		}).
		AnyTimes()

	return f
}

func adminContext() context.Context {
	return gModel.ContextWithActor(context.Background(), gModel.Actor{
		UserID:       "admin-1",
		Organisation: "acme",
		Type:         constant.ActorAdmin,
	})
}

func haircut() dto.ConsultationRequest {
	return dto.ConsultationRequest{
		Name:       "Haircut",
		CategoryID: "cat-1",
		Duration:   json.Number("30"),
		ConsultationData: []dto.OfferingRequest{
			{Mode: model.ModeOnline, DiscountType: pricing.DiscountPercentage, DiscountValue: 10, Price: 100},
		},
	}
}

func intPtr(v int) *int {
	return &v
}

// expectValidLookups wires the name and category checks to pass.
func expectValidLookups(f fixture) {
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
	f.categoryRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
}

func TestConsultationService_Create(t *testing.T) {
	t.Run("prices default offerings", func(t *testing.T) {
		f := newFixture(t)
		expectValidLookups(f)

		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, consultation model.Consultation) error {
				assert.Equal(t, 30, consultation.Duration)
				assert.Equal(t, "acme", consultation.Organisation)

				return nil
			})
		f.offeringRepo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, offerings []model.Offering) error {
				require.Len(t, offerings, 1)
				assert.Equal(t, 90, offerings[0].FinalPrice)
				assert.Nil(t, offerings[0].StaffID)

				return nil
			})

		res, err := f.svc.Create(adminContext(), haircut())
		require.NoError(t, err)
		require.Len(t, res.ConsultationData, 1)
		assert.Equal(t, 90, res.ConsultationData[0].FinalPrice)
		assert.Empty(t, res.StaffData)
	})

	t.Run("adds staff rows when staff booking is enabled", func(t *testing.T) {
		f := newFixture(t)
		expectValidLookups(f)

		req := haircut()
		req.IsStaffEnabled = true
		req.StaffData = []dto.StaffOfferingRequest{{StaffID: "s1", Mode: model.ModeOnline, StaffSpecialPrice: intPtr(20)}}

		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		f.offeringRepo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, offerings []model.Offering) error {
				require.Len(t, offerings, 2)
				require.NotNil(t, offerings[1].StaffID)
				assert.Equal(t, "s1", *offerings[1].StaffID)
				assert.Equal(t, 20, offerings[1].StaffSpecialPrice)
				assert.True(t, offerings[1].IsStaffEnabled)

				return nil
			})

		res, err := f.svc.Create(adminContext(), req)
		require.NoError(t, err)
		assert.Len(t, res.StaffData, 1)
	})

	t.Run("transaction failure", func(t *testing.T) {
		f := newFixture(t)
		expectValidLookups(f)

		f.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("db down"))

		_, err := f.svc.Create(adminContext(), haircut())
		assert.Error(t, err)
	})
}

func TestConsultationService_CreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(req *dto.ConsultationRequest)
		setupMock func(f fixture)
		wantErr   error
	}{
		{
			name:      "missing category",
			mutate:    func(req *dto.ConsultationRequest) { req.CategoryID = "" },
			setupMock: func(_ fixture) {},
			wantErr:   service.ErrMissingCategory,
		},
		{
			name:   "duplicate name",
			mutate: func(_ *dto.ConsultationRequest) {},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
			},
			wantErr: service.ErrConsultationExists,
		},
		{
			name:   "inactive category",
			mutate: func(_ *dto.ConsultationRequest) {},
			setupMock: func(f fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
				f.categoryRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantErr: service.ErrInvalidCategory,
		},
		{
			name: "more than three modes",
			mutate: func(req *dto.ConsultationRequest) {
				req.ConsultationData = make([]dto.OfferingRequest, 4)
			},
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidConsultationData,
		},
		{
			name:      "no modes",
			mutate:    func(req *dto.ConsultationRequest) { req.ConsultationData = nil },
			setupMock: expectValidLookups,
			wantErr:   service.ErrNoMode,
		},
		{
			name:      "bad name",
			mutate:    func(req *dto.ConsultationRequest) { req.Name = "Hair -cut" },
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidName,
		},
		{
			name:      "bad duration",
			mutate:    func(req *dto.ConsultationRequest) { req.Duration = json.Number("half an hour") },
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidDuration,
		},
		{
			name: "bad discount",
			mutate: func(req *dto.ConsultationRequest) {
				req.ConsultationData[0].DiscountValue = 100
			},
			setupMock: expectValidLookups,
			wantErr:   pricing.ErrPercentageRange,
		},
		{
			name: "repeated mode",
			mutate: func(req *dto.ConsultationRequest) {
				req.ConsultationData = append(req.ConsultationData, req.ConsultationData[0])
			},
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidConsultationData,
		},
		{
			name: "staff mode not offered",
			mutate: func(req *dto.ConsultationRequest) {
				req.IsStaffEnabled = true
				req.StaffData = []dto.StaffOfferingRequest{{StaffID: "s1", Mode: model.ModeDoorstep, StaffSpecialPrice: intPtr(5)}}
			},
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidMeetingType,
		},
		{
			name: "staff without id",
			mutate: func(req *dto.ConsultationRequest) {
				req.IsStaffEnabled = true
				req.StaffData = []dto.StaffOfferingRequest{{Mode: model.ModeOnline, StaffSpecialPrice: intPtr(5)}}
			},
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidStaff,
		},
		{
			name: "staff without special price",
			mutate: func(req *dto.ConsultationRequest) {
				req.IsStaffEnabled = true
				req.StaffData = []dto.StaffOfferingRequest{{StaffID: "s1", Mode: model.ModeOnline}}
			},
			setupMock: expectValidLookups,
			wantErr:   service.ErrInvalidStaffSpecialPrice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			req := haircut()
			tt.mutate(&req)

			_, err := f.svc.Create(adminContext(), req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestConsultationService_Update(t *testing.T) {
	t.Run("replaces offerings", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consultation{ID: "c1", Organisation: "acme", Image: "img"}, nil)
		expectValidLookups(f)

		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, 30, fields[model.FieldDuration])
				assert.NotContains(t, fields, model.FieldImage)

				return 1, nil
			})
		f.offeringRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) (int64, error) {
				assert.Equal(t, false, fields[constant.FieldIsActive])

				return 2, nil
			})
		f.offeringRepo.EXPECT().InsertBulkTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		res, err := f.svc.Update(adminContext(), haircut(), "c1")
		require.NoError(t, err)
		assert.Equal(t, "img", res.Image)
	})

	t.Run("unknown consultation", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consultation{}, nil)

		_, err := f.svc.Update(adminContext(), haircut(), "c1")
		assert.ErrorIs(t, err, service.ErrConsultationNotFound)
	})
}

func TestConsultationService_Get(t *testing.T) {
	staffID := "s1"

	f := newFixture(t)
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Consultation{ID: "c1", Name: "Haircut"}, nil)
	f.offeringRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Offering{
		{ID: "o1", ConsultationID: "c1", Mode: model.ModeOnline, Price: 100, FinalPrice: 90},
		{ID: "o2", ConsultationID: "c1", Mode: model.ModeOnline, StaffID: &staffID, StaffSpecialPrice: 20},
	}, nil)

	res, err := f.svc.Get(context.Background(), "acme", "c1")
	require.NoError(t, err)
	require.Len(t, res.ConsultationData, 1)
	require.Len(t, res.StaffData, 1)
	assert.Equal(t, "s1", res.StaffData[0].StaffID)
}

func TestConsultationService_GetAll(t *testing.T) {
	f := newFixture(t)
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(2, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Consultation{{ID: "c1"}, {ID: "c2"}}, nil)
	f.offeringRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Offering{
		{ID: "o1", ConsultationID: "c2", Mode: model.ModeOffline},
	}, nil)

	res, err := f.svc.GetAll(context.Background(), "acme", "cat-1", gDto.QueryParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Consultations, 2)
	assert.Empty(t, res.Consultations[0].ConsultationData)
	assert.Len(t, res.Consultations[1].ConsultationData, 1)
}

func TestConsultationService_Delete(t *testing.T) {
	t.Run("soft deletes consultation and offerings", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		f.offeringRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(3), nil)

		assert.NoError(t, f.svc.Delete(adminContext(), "c1"))
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), nil)

		assert.ErrorIs(t, f.svc.Delete(adminContext(), "c1"), service.ErrConsultationNotFound)
	})
}
