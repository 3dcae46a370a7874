package handler

import (
	"context"
	"net/http"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler/dto"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type Location struct {
	service LocationService
	l       logger.Logger
}

type LocationService interface {
	Report(ctx context.Context, tripID uuid.UUID, lat, lon, speedKph float64, heading *float64) error
	Latest(ctx context.Context, tripID uuid.UUID) (*models.Location, error)
}

func NewLocation(service LocationService, l logger.Logger) *Location {
	return &Location{
		service: service,
		l:       l,
	}
}

// Report godoc
//
//	@Summary	Driver reports the trip's current position
//	@Tags		locations
//	@Router		/trips/{trip_id}/location [put]
func (h *Location) Report(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "report_location")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		badRequestResponse(w, "invalid trip uuid format")
		return
	}
	ctx = wrap.WithRouteID(ctx, tripID.String())

	var reportReq dto.ReportLocationRequest
	if err := readJSON(w, r, &reportReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	reportReq.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	if err := h.service.Report(ctx, tripID, reportReq.Latitude, reportReq.Longitude, reportReq.SpeedKph, reportReq.Heading); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to report location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "position recorded"}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Latest godoc
//
//	@Summary	Latest reported position of a trip
//	@Tags		locations
//	@Router		/trips/{trip_id}/location [get]
func (h *Location) Latest(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "latest_location")

	tripID, err := uuid.Parse(r.PathValue("trip_id"))
	if err != nil {
		badRequestResponse(w, "invalid trip uuid format")
		return
	}

	loc, err := h.service.Latest(wrap.WithRouteID(ctx, tripID.String()), tripID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get latest location", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	// No report yet is an answer, not an error.
	response := envelope{"position": loc}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
