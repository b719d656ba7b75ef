package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/N3z3d/FortniteProject-sub000/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type jsonResponse map[string]interface{}

const maxBodyBytes = 1_048_576

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBodyBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			// uuid.UUID reports malformed ids through its own UnmarshalText error.
			return fmt.Errorf("body contains invalid value: %w", err)
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// responder writes error envelopes and logs what the client does not see.
type responder struct {
	logger *slog.Logger
}

func (rs responder) errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		rs.logger.ErrorContext(r.Context(), "Failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (rs responder) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.logger.ErrorContext(r.Context(), "Internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	rs.errorResponse(w, r, http.StatusInternalServerError, message)
}

func (rs responder) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	rs.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (rs responder) unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	rs.errorResponse(w, r, http.StatusUnauthorized, message)
}

// tradeErrorBody is the error envelope for business rule failures.
type tradeErrorBody struct {
	Kind    services.Kind `json:"kind"`
	Reason  string        `json:"reason"`
	Message string        `json:"message"`
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindUnauthorized:
		return http.StatusForbidden
	case services.KindInvalidState, services.KindOwnershipMismatch:
		return http.StatusConflict
	case services.KindLimitExceeded, services.KindDeadlinePassed, services.KindTradingDisabled:
		return http.StatusUnprocessableEntity
	case services.KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// mapServiceErrorToHTTP turns service errors into HTTP responses by kind.
func (rs responder) mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var tradeErr *services.TradeError
	if !errors.As(err, &tradeErr) {
		rs.serverErrorResponse(w, r, err)
		return
	}

	status := statusForKind(tradeErr.Kind)
	if status == http.StatusInternalServerError {
		rs.serverErrorResponse(w, r, err)
		return
	}
	reason := ""
	if tradeErr.Reason != nil {
		reason = tradeErr.Reason.Error()
	}
	rs.errorResponse(w, r, status, tradeErrorBody{
		Kind:    tradeErr.Kind,
		Reason:  reason,
		Message: tradeErr.Error(),
	})
}

func getUUIDFromURL(r *http.Request, paramName string) (uuid.UUID, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}
	return id, nil
}
