package service

import "errors"

var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrChoiceNotFound     = errors.New("choice not found")
	ErrNotInPollingPeriod = errors.New("question is not in the polling period")
	ErrChoiceNotSelected  = errors.New("no choice selected")
	ErrInvalidChoice      = errors.New("choice does not belong to question")
	ErrInvalidQuestion    = errors.New("end_at must not be before publish_at")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("username or email already registered")
	ErrImageStoreDisabled = errors.New("image storage is not configured")
)
