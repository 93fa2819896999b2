package service

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrProjectNotFound = errors.New("project not found")
	ErrAssetNotFound   = errors.New("asset not found")
	ErrTrackNotFound   = errors.New("track not found")
	ErrClipNotFound    = errors.New("clip not found")

	ErrTrackLocked       = errors.New("track is locked")
	ErrInvalidTrim       = errors.New("invalid trim window")
	ErrInvalidStart      = errors.New("negative start time")
	ErrAssetWrongProject = errors.New("asset belongs to another project")
	ErrBadTrackOrder     = errors.New("track order is not a permutation")

	ErrFileNotExists = errors.New("file does not exist")
)
