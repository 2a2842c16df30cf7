package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"public-complaint-api/models"
	"public-complaint-api/services"
	"public-complaint-api/utils"
)

func respondSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, models.Response{
		Status:  models.ResponseSuccess,
		Message: message,
		Data:    data,
	})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, models.Response{Status: models.ResponseError, Message: message})
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, models.Response{
			Status:  models.ResponseError,
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
	case errors.Is(err, services.ErrUnauthenticated):
		respondMessage(c, http.StatusUnauthorized, "Unauthenticated.")
	case errors.Is(err, services.ErrForbidden):
		respondMessage(c, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "Data tidak ditemukan")
	case errors.Is(err, services.ErrConflict):
		respondMessage(c, http.StatusConflict, "Data sudah ada")
	case errors.Is(err, services.ErrStorage):
		log.Printf("[http] %s %s storage error: %v", c.Request.Method, c.FullPath(), err)
		respondMessage(c, http.StatusInternalServerError, "Terjadi kesalahan pada server, silakan coba lagi")
	default:
		log.Printf("[http] %s %s unexpected error: %v", c.Request.Method, c.FullPath(), err)
		respondMessage(c, http.StatusInternalServerError, "Terjadi kesalahan pada server, silakan coba lagi")
	}
}

// respondBindError reports a malformed request body as a validation failure.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, models.Response{
		Status:  models.ResponseError,
		Message: "Validation failed",
		Errors:  utils.FieldErrors(err),
	})
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusNotFound, "Data tidak ditemukan")
		return 0, false
	}
	return uint(id), true
}

func queryPage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
