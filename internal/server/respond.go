package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Headers are already out; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func respondError(logger *zap.Logger, w http.ResponseWriter, err error) {
	var handlerErr ierr.Error
	if errors.As(err, &handlerErr) {
		respondMessage(w, handlerErr.HTTPStatus(), handlerErr.Message)
		return
	}

	logger.Error("internal error in http handler", zap.Error(err))
	respondMessage(w, http.StatusInternalServerError, "internal server error")
}
