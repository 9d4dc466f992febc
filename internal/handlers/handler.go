package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/stwalsh4118/motopark/api/internal/errors"
)

// fail records err for the error translator and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// validID reports whether id is a UUID. Malformed path ids are reported as
// missing resources rather than bad input.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(message string) *apierrors.Error {
	return apierrors.New(apierrors.KindNotFound, message)
}

func badRequest(message string) *apierrors.Error {
	return apierrors.New(apierrors.KindBadRequest, message)
}
