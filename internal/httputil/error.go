package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/courtside/internal/bracket"
	"github.com/AdamBeresnev/courtside/internal/match"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/AdamBeresnev/courtside/internal/store"
)

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	WriteError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	WriteError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	WriteError(w, http.StatusConflict, msg)
}

// ServiceError writes the response for an error returned by a service.
// Caller mistakes keep their message; anything else is logged and hidden.
func ServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(w, err.Error(), err)

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, score.ErrInvalidFormat),
		errors.Is(err, match.ErrInvalidPlayer),
		errors.Is(err, bracket.ErrInsufficientPlayers),
		errors.Is(err, bracket.ErrInvalidSeed),
		errors.Is(err, bracket.ErrNotInMatch):
		BadRequest(w, err.Error(), err)

	case errors.Is(err, store.ErrStaleSnapshot),
		errors.Is(err, service.ErrMatchNotStarted),
		errors.Is(err, service.ErrMatchAlreadyStarted),
		errors.Is(err, service.ErrMatchFinished),
		errors.Is(err, service.ErrNodeNotReady),
		errors.Is(err, service.ErrBracketLocked),
		errors.Is(err, bracket.ErrAlreadyDecided),
		errors.Is(err, bracket.ErrDoubleAdvancement):
		Conflict(w, err.Error(), err)

	default:
		InternalServerError(w, msg, err)
	}
}
