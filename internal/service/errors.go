package service

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrMatchNotStarted     = errors.New("match has not been started")
	ErrMatchAlreadyStarted = errors.New("match has already been started")
	ErrMatchFinished       = errors.New("match is already finished")
	ErrNodeNotReady        = errors.New("bracket node does not have two players yet")
	ErrBracketLocked       = errors.New("bracket can no longer be regenerated")
)
