package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a domain rule violation. Infrastructure failures
// (datastore down, bad SQL) are never a Kind: they stay plain errors
// and surface as 500s.
type Kind string

const (
	KindNotFound  Kind = "not_found"
	KindCapacity  Kind = "capacity"
	KindDuplicate Kind = "duplicate"
	KindOverlap   Kind = "overlap"
	KindForbidden Kind = "forbidden"
	KindInvalid   Kind = "invalid_input"
)

// DomainError is a rule violation with a message safe to return to the
// client verbatim.
type DomainError struct {
	Kind    Kind
	Message string
}

func (e *DomainError) Error() string { return e.Message }

func errNotFound(msg string) *DomainError  { return &DomainError{Kind: KindNotFound, Message: msg} }
func errCapacity(msg string) *DomainError  { return &DomainError{Kind: KindCapacity, Message: msg} }
func errDuplicate(msg string) *DomainError { return &DomainError{Kind: KindDuplicate, Message: msg} }
func errOverlap(msg string) *DomainError   { return &DomainError{Kind: KindOverlap, Message: msg} }
func errForbidden(msg string) *DomainError { return &DomainError{Kind: KindForbidden, Message: msg} }
func errInvalid(msg string) *DomainError   { return &DomainError{Kind: KindInvalid, Message: msg} }

// respondError maps domain violations to 400 with the rule's message
// and everything else to a generic 500. Clients must never see raw
// infrastructure errors.
func (a *App) respondError(c *gin.Context, err error) {
	var de *DomainError
	if errors.As(err, &de) {
		c.JSON(http.StatusBadRequest, gin.H{"message": de.Message, "error": string(de.Kind)})
		return
	}
	a.Log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}
