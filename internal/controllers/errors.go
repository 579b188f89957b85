package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkshort/internal/problemdetails"
	"linkshort/internal/service"
)

// problemFor maps a service error to its response. Storage details stay in
// the server log.
func problemFor(err error) *problemdetails.ProblemDetail {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return problemdetails.New(http.StatusInternalServerError, problemdetails.TypeStorageFailure,
			"Storage Failure", "the request could not be completed")
	}

	switch svcErr.Kind {
	case service.KindUnauthorized:
		return problemdetails.New(http.StatusUnauthorized, problemdetails.TypeUnauthorized,
			"Unauthorized", "authentication is required")
	case service.KindInvalidInput:
		detail := svcErr.Field + " is invalid"
		if svcErr.Err != nil {
			detail = svcErr.Err.Error()
		}
		return problemdetails.NewInvalidInput(svcErr.Field, detail)
	case service.KindNotFound:
		return problemdetails.New(http.StatusNotFound, problemdetails.TypeNotFound,
			"Not Found", "short link not found")
	case service.KindExpired:
		return problemdetails.New(http.StatusGone, problemdetails.TypeExpired,
			"Expired", "short link expired")
	case service.KindCodeAlreadyExists:
		return problemdetails.New(http.StatusConflict, problemdetails.TypeCodeAlreadyExists,
			"Code Already Exists", "shortCode already exists")
	case service.KindCodeExhausted:
		return problemdetails.New(http.StatusServiceUnavailable, problemdetails.TypeCodeExhausted,
			"Code Exhausted", "could not generate a unique shortCode, try again")
	default:
		return problemdetails.New(http.StatusInternalServerError, problemdetails.TypeStorageFailure,
			"Storage Failure", "the request could not be completed")
	}
}

// respondError records err on the context for the request logger and writes
// the problem response
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	p := problemFor(err)
	c.Header("Content-Type", problemdetails.ContentType)
	c.AbortWithStatusJSON(p.Status, p)
}
