// Package slotguard decides whether a staff member's slot on a date is still free.
package slotguard

//go:generate go run go.uber.org/mock/mockgen -source=./slotguard.go -destination=../mocks/slotguard_mock.go -package=mocks

import (
	"context"
	"fmt"

	"consultation/infras/otel"
	"consultation/infras/postgres"
	"consultation/internal/domains/appointment/model"
	"consultation/shared/constant"
	gDto "consultation/shared/dto"
	"consultation/shared/failure"

	"github.com/rs/zerolog/log"
)

var ErrSlotUnavailable = failure.BadRequestFromString("Slot is not available")

// Finder is the part of the appointment store the guard reads.
type Finder interface {
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
}

type Guard interface {
	// Check fails with ErrSlotUnavailable when an active appointment already holds the
	// slot. A nil staffID only collides with other unassigned bookings.
	Check(ctx context.Context, staffID *string, date, slot, organisation string) error
}

type guardImpl struct {
	finder Finder
	otel   otel.Otel
}

func New(finder Finder, otel otel.Otel) Guard {
	return &guardImpl{
		finder: finder,
		otel:   otel,
	}
}

func (g *guardImpl) Check(ctx context.Context, staffID *string, date, slot, organisation string) (err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".slotguard.Check")
	defer scope.End()
	defer scope.TraceIfError(err)

	taken, err := g.finder.Exist(ctx, Filter(staffID, date, slot, organisation))
	if err != nil {
		log.Error().Err(err).Str("organisation", organisation).Msg("failed to check slot")

		return fmt.Errorf("failed to check slot: %w", err)
	}

	if taken {
		return ErrSlotUnavailable
	}

	return nil
}

// Filter matches the active appointments that occupy a slot.
func Filter(staffID *string, date, slot, organisation string) gDto.FilterGroup {
	staff := gDto.Filter{Field: model.FieldStaffID, Operator: gDto.FilterIsNull, Table: model.TableName}
	if staffID != nil {
		staff = gDto.Filter{Field: model.FieldStaffID, Value: *staffID, Operator: gDto.FilterOperatorEq, Table: model.TableName}
	}

	return gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{Field: constant.FieldOrganisation, Value: organisation, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: constant.FieldIsActive, Value: true, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			staff,
			gDto.Filter{Field: model.FieldDate, Value: date, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldSlot, Value: slot, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}
}

// Translate turns a lost race on the slot index into ErrSlotUnavailable.
func Translate(err error) error {
	if postgres.IsUniqueViolation(err, model.SlotIndexName) {
		return ErrSlotUnavailable
	}

	return err
}
