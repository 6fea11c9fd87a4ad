package response

import "github.com/cleverframework/clever-v0-galleries/internal/domain/models"

type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ValidationErrorResponse список нарушенных ограничений полей
type ValidationErrorResponse struct {
	Status string              `json:"status"`
	Error  string              `json:"error"`
	Errors []models.FieldError `json:"errors"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Status: "success",
		Data:   data,
	}
}

func ErrorResponseWithDetails(err, details string) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Error:   err,
		Details: details,
	}
}

func ValidationFailed(verr *models.ValidationError) ValidationErrorResponse {
	return ValidationErrorResponse{
		Status: "error",
		Error:  "validation_failed",
		Errors: verr.Errors,
	}
}
