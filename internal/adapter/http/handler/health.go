package handler

import (
	"net/http"
	"time"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
)

type Health struct {
	startedAt time.Time
	l         logger.Logger
}

func NewHealth(l logger.Logger) *Health {
	return &Health{
		startedAt: time.Now(),
		l:         l,
	}
}

func (h *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := envelope{
		"status": "available",
		"uptime": time.Since(h.startedAt).String(),
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		internalErrorResponse(w, err.Error())
	}
}
