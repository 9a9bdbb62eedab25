package store

import domainerrors "github.com/listenupapp/seriesd/internal/errors"

// Sentinel errors. They carry domain error codes, so errors.Is matches any
// error of the same code: every *NotFound sentinel satisfies
// errors.Is(err, domainerrors.ErrNotFound).
var (
	ErrNotFound           = domainerrors.NotFound("resource not found")
	ErrSeriesNotFound     = domainerrors.NotFound("series not found")
	ErrWorkNotFound       = domainerrors.NotFound("work not found")
	ErrPseudNotFound      = domainerrors.NotFound("pseud not found")
	ErrUserNotFound       = domainerrors.NotFound("user not found")
	ErrTagNotFound        = domainerrors.NotFound("tag not found")
	ErrMembershipNotFound = domainerrors.NotFound("work is not part of the series")

	ErrAlreadyExists    = domainerrors.AlreadyExists("resource already exists")
	ErrMembershipExists = domainerrors.AlreadyExists("work is already part of the series")

	ErrConflict = domainerrors.Conflict("concurrent modification, retry the request")
)
