package model

import "errors"

// Data errors raised while loading the site and leak registry.
var (
	ErrUnknownFacility   = errors.New("unknown facility")
	ErrLocationOutOfGrid = errors.New("location outside deployment grid")
	ErrDuplicateSite     = errors.New("duplicate site")
)
