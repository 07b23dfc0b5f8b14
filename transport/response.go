package transport

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/stocklane/inventory/constant"
	cerr "github.com/stocklane/inventory/utils/errors"
)

type responseEnvelope struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Data    interface{}            `json:"data,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Code:    constant.ErrorTypeCode[constant.Successful],
		Message: constant.ErrorTypeMessage[constant.Successful],
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	var ce cerr.CustomError
	if !stderrors.As(err, &ce) {
		ce = cerr.SetCustomError(constant.ErrInternal)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.ErrorHTTPCode())
	_ = json.NewEncoder(w).Encode(responseEnvelope{
		Code:    ce.ErrorCode(),
		Message: ce.Error(),
		Details: ce.Details(),
	})
}
