package utils

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// ConflictResponse carries the colliding entity's name plus the submitted
// values so the caller can redisplay the form.
type ConflictResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Code      int         `json:"code"`
	Name      string      `json:"name"`
	Submitted interface{} `json:"submitted,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

// SendNotFound hides permission failures behind the same response as a
// missing resource. Never send 403 from a handler.
func SendNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: "Not found",
		Code:  http.StatusNotFound,
	})
}

func SendValidationError(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Validation failed",
		Message: err,
		Code:    http.StatusBadRequest,
	})
}

// SendConflict reports a duplicate slug within the same parent scope
func SendConflict(c *gin.Context, name string, submitted interface{}) {
	c.JSON(http.StatusBadRequest, ConflictResponse{
		Error:     "Conflict",
		Message:   fmt.Sprintf("An entry with the name %q already exists here", name),
		Code:      http.StatusBadRequest,
		Name:      name,
		Submitted: submitted,
	})
}

// SendReferentialIntegrityError reports a deletion blocked by dependent rows
func SendReferentialIntegrityError(c *gin.Context, entity string, count int64) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "Cannot delete",
		Message: fmt.Sprintf("%d dependent %s must be removed first", count, entity),
		Code:    http.StatusBadRequest,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
		Data:    data,
	}
	c.JSON(http.StatusCreated, response)
}

func SendPaginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}
