// Package errs defines the business outcomes returned by the game and
// friendship services. They are values, not faults: controllers map each
// kind to a status code and a stable response body.
package errs

import (
	"errors"
	"net/http"
)

type Kind string

const (
	NoLinkedProfile     Kind = "no_linked_profile"
	NotFound            Kind = "not_found"
	AccessDenied        Kind = "access_denied"
	Forbidden           Kind = "forbidden"
	NotOpen             Kind = "not_open"
	Full                Kind = "full"
	OwnerCannotLeave    Kind = "owner_cannot_leave"
	SelfInvite          Kind = "self_invite"
	SelfRequest         Kind = "self_request"
	SelfBlock           Kind = "self_block"
	AlreadyMember       Kind = "already_member"
	DuplicateInvitation Kind = "duplicate_invitation"
	DuplicatePending    Kind = "duplicate_pending"
	AlreadyFriends      Kind = "already_friends"
	Blocked             Kind = "blocked"
	NotFriends          Kind = "not_friends"
	Validation          Kind = "validation_error"
)

// Error is a tagged business outcome.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of a business error anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is a business error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

var statusByKind = map[Kind]int{
	NoLinkedProfile:     http.StatusBadRequest,
	NotFound:            http.StatusNotFound,
	AccessDenied:        http.StatusForbidden,
	Forbidden:           http.StatusForbidden,
	NotOpen:             http.StatusConflict,
	Full:                http.StatusConflict,
	OwnerCannotLeave:    http.StatusConflict,
	SelfInvite:          http.StatusBadRequest,
	SelfRequest:         http.StatusBadRequest,
	SelfBlock:           http.StatusBadRequest,
	AlreadyMember:       http.StatusConflict,
	DuplicateInvitation: http.StatusConflict,
	DuplicatePending:    http.StatusConflict,
	AlreadyFriends:      http.StatusConflict,
	Blocked:             http.StatusBadRequest,
	NotFriends:          http.StatusBadRequest,
	Validation:          http.StatusUnprocessableEntity,
}

// HTTPStatus maps a kind to its transport status. Unknown kinds are 500.
func HTTPStatus(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
