package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"clinic-workflow/pkg/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(w http.ResponseWriter, statusCode int, message string, data interface{}, meta *Meta) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message, nil)
}

// FromError writes the envelope for an error returned by a usecase. Errors that
// are not *apperror.Error are reported as 500 without leaking their text.
func FromError(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		InternalServerError(w, "")
		return
	}

	message := appErr.Message
	if appErr.Op != "" {
		message = appErr.Op + ": " + message
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		var fields interface{}
		if len(appErr.Fields) > 0 {
			fields = appErr.Fields
		}
		Error(w, http.StatusBadRequest, message, fields)
	case apperror.KindInvalidTransition:
		Error(w, http.StatusConflict, message, nil)
	case apperror.KindNotFound:
		NotFound(w, message)
	case apperror.KindPermission:
		Forbidden(w, message)
	case apperror.KindDependency:
		// The store's own message may name tables; only the code goes out.
		var detail interface{}
		if appErr.Code != "" {
			detail = map[string]string{"code": appErr.Code}
		}
		Error(w, http.StatusBadGateway, appErr.Op+": dependency failure", detail)
	default:
		InternalServerError(w, "")
	}
}
