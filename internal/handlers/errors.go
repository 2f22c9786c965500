package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/services"
)

// StatusFor maps a service error to the HTTP status returned to callers.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrImportRunning), errors.Is(err, services.ErrJobNotRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrJobNotFound), apierrors.IsNotFound(err):
		return http.StatusNotFound
	}

	switch apierrors.KindOf(err) {
	case apierrors.KindValidation:
		return http.StatusBadRequest
	case apierrors.KindConfiguration:
		return http.StatusInternalServerError
	case apierrors.KindRemote:
		if apierrors.StatusCode(err) == http.StatusTooManyRequests {
			return http.StatusTooManyRequests
		}
		return http.StatusBadGateway
	case apierrors.KindTransport:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the failure envelope for err.
func respondError(c *gin.Context, err error) {
	envelope := catalog.WriteResultFromError(err)
	body := gin.H{
		"success": envelope.Success,
		"error":   envelope.Error,
	}
	if kind := apierrors.KindOf(err); kind != apierrors.KindUnknown {
		body["kind"] = kind
	}
	if envelope.StatusCode != 0 {
		body["statusCode"] = envelope.StatusCode
	}
	var validationErr *apierrors.ValidationError
	if errors.As(err, &validationErr) {
		body["errors"] = validationErr.Errors
	}
	_ = c.Error(err)
	c.JSON(StatusFor(err), body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}
