package handler

import (
	"net/http"

	"doctor-scheduling/internal/usecase"
	"doctor-scheduling/pkg/response"
)

// statusByKind maps a usecase error classification to its HTTP status
var statusByKind = map[usecase.ErrorKind]int{
	usecase.KindNotFound:            http.StatusNotFound,
	usecase.KindValidation:          http.StatusBadRequest,
	usecase.KindPastBooking:         http.StatusBadRequest,
	usecase.KindHorizon:             http.StatusBadRequest,
	usecase.KindOutsideAvailability: http.StatusUnprocessableEntity,
	usecase.KindSlotTaken:           http.StatusConflict,
	usecase.KindInvalidState:        http.StatusConflict,
}

// writeError renders err with the status of its kind. Unclassified errors become a 500 with fallback as message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	kind := usecase.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		response.InternalServerError(w, fallback)
		return
	}

	response.Error(w, status, err.Error(), map[string]string{"kind": string(kind)})
}
