package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stwalsh4118/motopark/api/internal/middleware"
)

// Postgres SQLSTATE codes the translator understands.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgInvalidText         = "22P02"
	pgNoDataFound         = "P0002"
)

// Handler is the centralized error translator. Handlers and middleware
// record failures with c.Error and abort; after the chain returns, the last
// recorded error is classified and rendered unless a response was already
// written. In development the cause of a 500 is included in the response.
func Handler(env string) gin.HandlerFunc {
	development := env == "development"

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		e := Classify(c.Errors.Last().Err)
		if development && e.Kind == KindInternal && e.Err != nil {
			e = e.WithDetails(map[string]interface{}{"cause": e.Err.Error()})
		}
		Respond(c, e)
	}
}

// Classify maps any error to an *Error. Unrecognized errors become a
// generic internal error wrapping the cause.
func Classify(err error) *Error {
	if err == nil {
		return New(KindInternal, "Internal server error")
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return fromValidation(validationErrs)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return Wrap(KindConflict, "Resource already exists", err)
		case pgForeignKeyViolation, pgNoDataFound:
			return Wrap(KindNotFound, "Referenced resource not found", err)
		case pgCheckViolation, pgInvalidText:
			return Wrap(KindBadRequest, "Invalid value", err)
		}
		return Wrap(KindInternal, "Internal server error", err)
	}

	if errors.Is(err, middleware.ErrRateLimited) {
		return Wrap(KindTooManyRequests, "Too many requests from this IP, please try again later.", err)
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return Wrap(KindUnauthorized, "Token expired", err)
	}
	if isTokenError(err) {
		return Wrap(KindUnauthorized, "Invalid token", err)
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return FileTooLarge(maxBytesErr.Limit, err)
	}

	if isMalformedBody(err) {
		return Wrap(KindBadRequest, "Invalid request body", err)
	}

	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return Wrap(KindBadRequest, "Invalid query parameters", err)
	}

	return Wrap(KindInternal, "Internal server error", err)
}

func isTokenError(err error) bool {
	for _, target := range []error{
		jwt.ErrTokenMalformed,
		jwt.ErrTokenUnverifiable,
		jwt.ErrTokenSignatureInvalid,
		jwt.ErrTokenInvalidClaims,
		jwt.ErrTokenNotValidYet,
		jwt.ErrTokenUsedBeforeIssued,
		jwt.ErrTokenInvalidIssuer,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isMalformedBody(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
