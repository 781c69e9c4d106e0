package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")
	ErrEmptyAttempts   = errors.New("quiz has no attempts")
	ErrInvalidAttempt  = errors.New("attempt missing question or correct option id")
	ErrHistoryWrite    = errors.New("failed to persist quiz result history")
)
