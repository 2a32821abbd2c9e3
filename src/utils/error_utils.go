// error_utils.go
package utils

import (
	"Backend-Feedback-Portal/src/models"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

// AppError คือ error ที่ service ส่งกลับ พร้อม HTTP status
type AppError struct {
	Status  int
	Message string
}

func (e *AppError) Error() string { return e.Message }

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Status: fiber.StatusUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Status: fiber.StatusForbidden, Message: message}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *AppError {
	return &AppError{Status: fiber.StatusConflict, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Message: message}
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

func HandleError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
	})
}

// ErrorHandler ส่ง error ทุกชนิดออกไปในรูป ErrorResponse เดียวกัน
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HandleError(c, appErr.Status, appErr.Message)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return HandleError(c, fiberErr.Code, fiberErr.Message)
	}

	log.Printf("❌ unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	return HandleError(c, fiber.StatusInternalServerError, "Internal server error")
}
