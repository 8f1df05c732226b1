package backend

import "errors"

var (
	ErrUnexpectedStatus = errors.New("unexpected backend status")
	ErrNoBaseURL        = errors.New("backend base url is empty")
)
