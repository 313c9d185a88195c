package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	customError "github.com/hrops/staff-loan-ledger/pkg/errors"
	"github.com/hrops/staff-loan-ledger/pkg/response"
)

// respondError classifies a service error into an HTTP response. Client
// errors surface their message; everything else is logged and answered with
// a generic 500.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := customError.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error", zap.Error(err))
		response.InternalServerError(w, "Internal server error")
		return
	}

	message := err.Error()
	var be *customError.BusinessError
	if errors.As(err, &be) {
		message = be.Message
	}
	response.Error(w, status, message)
}
