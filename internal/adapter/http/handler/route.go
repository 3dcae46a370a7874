package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/adapter/http/handler/dto"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/validator"
)

type Route struct {
	service RouteService
	l       logger.Logger
}

type RouteService interface {
	Create(ctx context.Context, route *models.Route) (*models.Route, error)
	Get(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]models.RouteCard, error)
	ActiveForDriver(ctx context.Context) ([]models.DriverRouteView, error)
	Start(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	Complete(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
	Cancel(ctx context.Context, routeID uuid.UUID) (*models.Route, error)
}

func NewRoute(service RouteService, l logger.Logger) *Route {
	return &Route{
		service: service,
		l:       l,
	}
}

// Create godoc
//
//	@Summary	Publish a new route
//	@Tags		routes
//	@Router		/routes [post]
func (h *Route) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_route")

	var createReq dto.CreateRouteRequest
	if err := readJSON(w, r, &createReq); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	v := validator.New()
	createReq.Validate(v)
	if !v.Valid() {
		h.l.Warn(ctx, "invalid request data")
		failedValidationResponse(w, v.Errors)
		return
	}

	route, err := createReq.ToModel()
	if err != nil {
		badRequestResponse(w, err.Error())
		return
	}

	created, err := h.service.Create(ctx, route)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"route": created}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithRouteID(ctx, created.ID.String()), "route created successfully")
}

// Search godoc
//
//	@Summary	Search upcoming routes
//	@Tags		routes
//	@Router		/routes [get]
func (h *Route) Search(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "search_routes")

	query := r.URL.Query()
	searchReq := dto.SearchRoutesRequest{
		Origin:      query.Get("origin"),
		Destination: query.Get("destination"),
	}
	if raw := query.Get("min_seats"); raw != "" {
		minSeats, err := strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, "min_seats must be an integer")
			return
		}
		searchReq.MinSeats = minSeats
	}

	v := validator.New()
	searchReq.Validate(v)
	if !v.Valid() {
		failedValidationResponse(w, v.Errors)
		return
	}

	cards, err := h.service.Search(ctx, models.SearchFilter{
		Origin:      searchReq.Origin,
		Destination: searchReq.Destination,
		MinSeats:    searchReq.MinSeats,
	})
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to search routes", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"routes": cards}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Get godoc
//
//	@Summary	Get one route
//	@Tags		routes
//	@Router		/routes/{route_id} [get]
func (h *Route) Get(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "get_route")

	routeID, err := uuid.Parse(r.PathValue("route_id"))
	if err != nil {
		badRequestResponse(w, "invalid route uuid format")
		return
	}

	route, err := h.service.Get(wrap.WithRouteID(ctx, routeID.String()), routeID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to get route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"route": route}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// ActiveForDriver godoc
//
//	@Summary	Driver dashboard: non-cancelled routes with passengers
//	@Tags		routes
//	@Router		/drivers/me/routes [get]
func (h *Route) ActiveForDriver(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "active_routes_for_driver")

	views, err := h.service.ActiveForDriver(ctx)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list active routes", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"routes": views}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}

// Start godoc
//
//	@Summary	Start an upcoming route
//	@Tags		routes
//	@Router		/routes/{route_id}/start [post]
func (h *Route) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start_route", h.service.Start)
}

// Complete godoc
//
//	@Summary	Complete an ongoing route
//	@Tags		routes
//	@Router		/routes/{route_id}/complete [post]
func (h *Route) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete_route", h.service.Complete)
}

// Cancel godoc
//
//	@Summary	Cancel a route irreversibly
//	@Tags		routes
//	@Router		/routes/{route_id}/cancel [post]
func (h *Route) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel_route", h.service.Cancel)
}

func (h *Route) transition(w http.ResponseWriter, r *http.Request, action string, op func(context.Context, uuid.UUID) (*models.Route, error)) {
	ctx := wrap.WithAction(r.Context(), action)

	routeID, err := uuid.Parse(r.PathValue("route_id"))
	if err != nil {
		badRequestResponse(w, "invalid route uuid format")
		return
	}
	ctx = wrap.WithRouteID(ctx, routeID.String())

	route, err := op(ctx, routeID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to transition route", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"route": route}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "route transitioned successfully", "status", route.Status)
}
