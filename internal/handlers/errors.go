package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-authgate/realmgate/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorKind is one of the four protocol error classes.
type errorKind int

const (
	kindNotFound errorKind = iota + 1
	kindBadRequest
	kindUnauthorized
	kindInternal
)

func (k errorKind) status() int {
	switch k {
	case kindNotFound:
		return http.StatusNotFound
	case kindBadRequest:
		return http.StatusBadRequest
	case kindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

const internalErrorMessage = "internal server error"

// appError is an error ready to be written as {"error": message}.
type appError struct {
	kind    errorKind
	message string
	err     error // logged for internal errors, never sent
}

func (e *appError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *appError) Unwrap() error { return e.err }

func notFound(msg string) *appError     { return &appError{kind: kindNotFound, message: msg} }
func badRequest(msg string) *appError   { return &appError{kind: kindBadRequest, message: msg} }
func unauthorized(msg string) *appError { return &appError{kind: kindUnauthorized, message: msg} }

func internal(err error) *appError {
	return &appError{kind: kindInternal, message: internalErrorMessage, err: err}
}

func realmNotFound(name string) *appError {
	return notFound(fmt.Sprintf("realm '%s' not found", name))
}

// clientErrors are service errors whose message is safe to return as a 400.
var clientErrors = []error{
	services.ErrUnsupportedResponseType,
	services.ErrCodeChallengeRequired,
	services.ErrCodeChallengeMethodRequired,
	services.ErrUnsupportedChallengeMethod,
	services.ErrUnknownClient,
	services.ErrRedirectURINotRegistered,
	services.ErrInvalidScope,
	services.ErrStateTooLong,
	services.ErrNonceTooLong,
	services.ErrUnsupportedGrantType,
	services.ErrCodeRequired,
	services.ErrRedirectURIRequired,
	services.ErrCodeVerifierRequired,
	services.ErrRefreshTokenRequired,
	services.ErrInvalidAuthCode,
	services.ErrPKCEVerificationFailed,
	services.ErrInvalidRefreshToken,
	services.ErrNewPasswordRequired,
	services.ErrCurrentPasswordIncorrect,
}

// classify maps a service error onto its protocol error.
func classify(err error) *appError {
	var ae *appError
	if errors.As(err, &ae) {
		return ae
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return badRequest(target.Error())
		}
	}
	switch {
	case errors.Is(err, services.ErrInvalidAccessToken), errors.Is(err, services.ErrUserNotFound):
		return unauthorized(services.ErrInvalidAccessToken.Error())
	case errors.Is(err, services.ErrRealmNotFound):
		return notFound(err.Error())
	default:
		return internal(err)
	}
}

// respondError writes err as a JSON error body and aborts the request.
func respondError(c *gin.Context, err error) {
	ae := classify(err)
	switch ae.kind {
	case kindInternal:
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("realm", c.Param("realm")),
			zap.Error(ae.err),
		)
		_ = c.Error(ae.err)
	case kindUnauthorized:
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(ae.kind.status(), gin.H{"error": ae.message})
}
