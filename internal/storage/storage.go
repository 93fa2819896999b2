package storage

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrTrackNotFound   = errors.New("track not found")
	ErrClipNotFound    = errors.New("clip not found")

	ErrAssetWrongProject = errors.New("asset belongs to another project")
	ErrBadTrackOrder     = errors.New("track order is not a permutation")
	ErrConstraint        = errors.New("constraint violation")
	ErrOrderConflict     = errors.New("track order conflict")
)
