package errors

import "github.com/stocklane/inventory/constant"

type CustomError struct {
	errType constant.ErrorType
	details map[string]interface{}
}

func (c CustomError) Error() string {
	return constant.ErrorTypeMessage[c.errType]
}

func (c CustomError) ErrorCode() string {
	return constant.ErrorTypeCode[c.errType]
}

func (c CustomError) ErrorHTTPCode() int {
	return constant.ErrorTypeHTTPCode[c.errType]
}

func (c CustomError) ErrorType() constant.ErrorType {
	return c.errType
}

// Details carries machine-readable context, e.g. available vs requested on
// insufficient-stock errors, so callers can offer a quantity adjustment.
func (c CustomError) Details() map[string]interface{} {
	return c.details
}

func SetCustomError(errorType constant.ErrorType) CustomError {
	return CustomError{
		errType: errorType,
	}
}

func SetCustomErrorDetails(errorType constant.ErrorType, details map[string]interface{}) CustomError {
	return CustomError{
		errType: errorType,
		details: details,
	}
}

// SetInsufficientStock builds the shortage error with the counts the UI needs.
func SetInsufficientStock(available, requested int64) CustomError {
	return SetCustomErrorDetails(constant.ErrInsufficientStock, map[string]interface{}{
		"available": available,
		"requested": requested,
	})
}
