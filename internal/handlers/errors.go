package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/MYTEGROUP/MyteHomeAssistant/internal/service"
	"github.com/MYTEGROUP/MyteHomeAssistant/internal/validation"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// respondWithServiceError maps service layer errors to HTTP responses
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var ve validation.ValidationError
	switch {
	case errors.Is(err, service.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, service.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, service.ErrAIDisabled):
		http.Error(w, "AI features are not configured", http.StatusServiceUnavailable)
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}
