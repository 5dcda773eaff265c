package shared

import (
	"context"
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"consultation/shared/cache"
	"consultation/shared/constant"
	"consultation/shared/dto"
	gModel "consultation/shared/model"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
)

func ConvertStringToBool(value string) *bool {
	if value == "" {
		return nil
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Error().Err(err).Msg("failed to convert string to bool")

		return nil
	}

	return &boolValue
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero fields of a struct into a column map for an update.
func TransformFields(data interface{}, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		if field.Kind() == reflect.Pointer {
			updatedFields[fieldName] = field.Elem().Interface()

			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

// SoftDeleteFields is the column map that deactivates a row.
func SoftDeleteFields(username string) map[string]any {
	now := timezone.Now()

	return map[string]any{
		constant.FieldIsActive:   false,
		constant.FieldDeletedAt:  now,
		constant.FieldDeletedBy:  username,
		constant.FieldModifiedAt: now,
		constant.FieldModifiedBy: username,
	}
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterActiveByOrganisation scopes a query to the live rows of one tenant.
func FilterActiveByOrganisation(organisation, table string, extra ...any) dto.FilterGroup {
	filters := []any{
		dto.Filter{
			Field:    constant.FieldOrganisation,
			Value:    organisation,
			Operator: dto.FilterOperatorEq,
			Table:    table,
		},
		dto.Filter{
			Field:    constant.FieldIsActive,
			Value:    true,
			Operator: dto.FilterOperatorEq,
			Table:    table,
		},
	}

	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters:  append(filters, extra...),
	}
}

func BuildCacheKey(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}

	return prefix + ":" + strings.Join(parts, ":")
}

// BuildCacheKeyWithQuery hashes the query and filter so list caches stay keyed per request shape.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	raw, err := json.Marshal(struct {
		Params dto.QueryParams `json:"params"`
		Where  string          `json:"where"`
		Args   map[string]any  `json:"args"`
	}{params, where, args})
	if err != nil {
		raw = []byte(fmt.Sprintf("%v%s%v", params, where, args))
	}

	sum := sha1.Sum(raw) //nolint:gosec

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:]))
}

// InvalidateCaches removes every key under prefix.
func InvalidateCaches(ctx context.Context, redisCache cache.RedisCache, prefix string) {
	if err := redisCache.Clear(ctx, prefix+"*"); err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to invalidate caches")
	}
}

// OrganisationFromRequest is the caller's organisation, or the org query parameter on
// unauthenticated catalogue reads.
func OrganisationFromRequest(r *http.Request) string {
	if organisation := gModel.ActorFromContext(r.Context()).Organisation; organisation != "" {
		return organisation
	}

	return r.URL.Query().Get(constant.RequestParamOrganisation)
}
