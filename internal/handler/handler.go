package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"ott-webapp/internal/middleware"
	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.GetRequestID(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", code).
		Str("message", message).
		Int("status", status).
		Str("request_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
	})
}

// writeServiceError maps a service error to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var de *model.DomainError
	if errors.As(err, &de) {
		writeError(w, r, domainStatus(de.Code), de.Code, de.Message, logger)
		return
	}

	var ce *model.CommerceError
	if errors.As(err, &ce) {
		status := http.StatusBadGateway
		switch ce.Kind {
		case model.KindNotFound:
			status = http.StatusNotFound
		case model.KindValidation:
			status = http.StatusUnprocessableEntity
		}
		writeError(w, r, status, "UPSTREAM_"+upperKind(ce.Kind), ce.Message, logger)
		return
	}

	logger.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected service error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func domainStatus(code string) int {
	switch code {
	case model.ErrCodeSessionNotFound, model.ErrCodeMediaNotFound:
		return http.StatusNotFound
	case model.ErrCodeMissingField, model.ErrCodeInvalidJSON, model.ErrCodeOfferRequired:
		return http.StatusBadRequest
	case model.ErrCodeOrderNotReady, model.ErrCodeSuperseded:
		return http.StatusConflict
	case model.ErrCodeUnsupportedPaymentMethod:
		return http.StatusUnprocessableEntity
	case model.ErrCodeSeriesError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func upperKind(k model.ErrorKind) string {
	switch k {
	case model.KindNotFound:
		return "NOT_FOUND"
	case model.KindValidation:
		return "VALIDATION"
	case model.KindProcessing:
		return "PROCESSING"
	default:
		return "UNKNOWN"
	}
}

// decodeJSON decodes the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
