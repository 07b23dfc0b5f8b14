package constant

import "net/http"

type ErrorType int

const (
	Successful ErrorType = iota
	ErrInternal
	ErrNotFound
	ErrInvalidRequest
	ErrUnauthorize
	ErrInsufficientStock
	ErrConcurrencyConflict
	ErrReservationNotFound
	ErrReservationNotActive
)

var ErrorTypeMessage = map[ErrorType]string{
	Successful:              "success",
	ErrInternal:             "error internal",
	ErrNotFound:             "data not found",
	ErrInvalidRequest:       "invalid request",
	ErrUnauthorize:          "unauthorize request",
	ErrInsufficientStock:    "insufficient stock",
	ErrConcurrencyConflict:  "too many concurrent updates, please retry",
	ErrReservationNotFound:  "reservation not found",
	ErrReservationNotActive: "reservation is not active",
}

var ErrorTypeHTTPCode = map[ErrorType]int{
	Successful:              http.StatusOK,
	ErrInternal:             http.StatusInternalServerError,
	ErrNotFound:             http.StatusBadRequest,
	ErrInvalidRequest:       http.StatusBadRequest,
	ErrUnauthorize:          http.StatusUnauthorized,
	ErrInsufficientStock:    http.StatusConflict,
	ErrConcurrencyConflict:  http.StatusConflict,
	ErrReservationNotFound:  http.StatusBadRequest,
	ErrReservationNotActive: http.StatusConflict,
}

var ErrorTypeCode = map[ErrorType]string{
	Successful:              "0000",
	ErrInternal:             "0001",
	ErrNotFound:             "0002",
	ErrInvalidRequest:       "0003",
	ErrUnauthorize:          "0004",
	ErrInsufficientStock:    "0005",
	ErrConcurrencyConflict:  "0006",
	ErrReservationNotFound:  "0007",
	ErrReservationNotActive: "0008",
}
