package dto_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"consultation/shared/constant"
	"consultation/shared/dto"
	"consultation/shared/model"
	"consultation/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestMetadata_FromModel(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var metadata dto.Metadata
	metadata.FromModel(model.Metadata{
		CreatedAt:  createdAt,
		CreatedBy:  "admin-1",
		ModifiedBy: "admin-2",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  timezone.Format(createdAt, constant.DateFormat),
		CreatedBy:  "admin-1",
		ModifiedBy: "admin-2",
	}, metadata)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		withDefaults bool
		want         dto.QueryParams
	}{
		{
			name:  "all values",
			query: "page=2&limit=20&sort_by=name&sort_dir=asc",
			want:  dto.QueryParams{Page: 2, Limit: 20, SortBy: "name", SortDir: dto.SortDirAsc},
		},
		{
			name:         "defaults fill gaps",
			withDefaults: true,
			want: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit,
				SortBy:  constant.DefaultValueSortBy,
				SortDir: constant.DefaultValueSortDir,
			},
		},
		{
			name:  "malformed values ignored",
			query: "page=abc&limit=-5&sort_dir=sideways",
			want:  dto.QueryParams{},
		},
		{
			name:  "limit capped",
			query: "limit=5000",
			want:  dto.QueryParams{Limit: constant.MaxValueLimit},
		},
		{
			name:         "explicit values beat defaults",
			query:        "page=3&sort_dir=ASC",
			withDefaults: true,
			want: dto.QueryParams{
				Page:    3,
				Limit:   constant.DefaultValueLimit,
				SortBy:  constant.DefaultValueSortBy,
				SortDir: dto.SortDirAsc,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/v1/consultations/category?"+tt.query, nil)

			var params dto.QueryParams
			params.FromRequest(request, tt.withDefaults)

			assert.Equal(t, tt.want, params)
		})
	}
}

func TestFilter_GetWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		filter    dto.Filter
		wantWhere string
		wantArgs  map[string]any
	}{
		{
			name:      "equality with table",
			filter:    dto.Filter{Field: "slot", Value: "10:30", Operator: dto.FilterOperatorEq, Table: "appointments"},
			wantWhere: "appointments.slot = :slot",
			wantArgs:  map[string]any{"slot": "10:30"},
		},
		{
			name:      "custom arg name",
			filter:    dto.Filter{ArgName: "other_id", Field: "id", Value: "c-1", Operator: dto.FilterOperatorNotEq},
			wantWhere: "id != :other_id",
			wantArgs:  map[string]any{"other_id": "c-1"},
		},
		{
			name:      "like is case insensitive",
			filter:    dto.Filter{Field: "name", Value: "derm", Operator: dto.FilterOperatorLike},
			wantWhere: "LOWER(name) LIKE LOWER(:name)",
			wantArgs:  map[string]any{"name": "%derm%"},
		},
		{
			name:      "in expands slices",
			filter:    dto.Filter{Field: "mode", Value: []string{"ON_LINE", "OFF_LINE"}, Operator: dto.FilterOperatorIn},
			wantWhere: "mode IN (:mode_0, :mode_1)",
			wantArgs:  map[string]any{"mode_0": "ON_LINE", "mode_1": "OFF_LINE"},
		},
		{
			name:      "empty in matches nothing",
			filter:    dto.Filter{Field: "mode", Value: []string{}, Operator: dto.FilterOperatorIn},
			wantWhere: "FALSE",
			wantArgs:  map[string]any{},
		},
		{
			name:      "null check",
			filter:    dto.Filter{Field: "staff_id", Operator: dto.FilterIsNull, Table: "appointments"},
			wantWhere: "appointments.staff_id IS NULL",
			wantArgs:  map[string]any{},
		},
		{
			name:      "unknown operator",
			filter:    dto.Filter{Field: "x", Operator: "between"},
			wantWhere: "",
			wantArgs:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := tt.filter.GetWhereClause()

			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "organisation", Value: "org-1", Operator: dto.FilterOperatorEq},
			dto.Filter{Field: "ignored", Operator: "between"},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "staff_id", Operator: dto.FilterIsNull},
					dto.Filter{Field: "staff_id", ArgName: "staff", Value: "s-1", Operator: dto.FilterOperatorEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(organisation = :organisation AND (staff_id IS NULL OR staff_id = :staff))", where)
	assert.Equal(t, map[string]any{"organisation": "org-1", "staff": "s-1"}, args)

	empty := dto.FilterGroup{}
	where, _ = empty.GetWhereClause()
	assert.Empty(t, where)
}
