package utils

import "errors"

var (
	ErrorRecordNotFound   = errors.New("record not found")
	ErrorPermissionDenied = errors.New("permission denied")
)
