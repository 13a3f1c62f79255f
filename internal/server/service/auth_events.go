package service

import (
	"context"
	"log/slog"
)

// AuthEventLogger receives authentication outcomes from AuthService
type AuthEventLogger interface {
	LoginSucceeded(ctx context.Context, username, clientIP string)
	LoginFailed(ctx context.Context, username, clientIP string)
	LoggedOut(ctx context.Context, username, clientIP string)
}

// SlogAuthEventLogger writes auth events to a slog logger
type SlogAuthEventLogger struct {
	Logger *slog.Logger
}

func NewSlogAuthEventLogger(logger *slog.Logger) *SlogAuthEventLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAuthEventLogger{Logger: logger.With("component", "auth")}
}

func (l *SlogAuthEventLogger) LoginSucceeded(ctx context.Context, username, clientIP string) {
	l.Logger.InfoContext(ctx, "User logged in", "username", username, "ip", clientIP)
}

func (l *SlogAuthEventLogger) LoginFailed(ctx context.Context, username, clientIP string) {
	l.Logger.WarnContext(ctx, "Login failed", "username", username, "ip", clientIP)
}

func (l *SlogAuthEventLogger) LoggedOut(ctx context.Context, username, clientIP string) {
	l.Logger.InfoContext(ctx, "User logged out", "username", username, "ip", clientIP)
}

type NopAuthEventLogger struct{}

func (NopAuthEventLogger) LoginSucceeded(context.Context, string, string) {}
func (NopAuthEventLogger) LoginFailed(context.Context, string, string)    {}
func (NopAuthEventLogger) LoggedOut(context.Context, string, string)      {}

// AuthEventLoggers fans every event out to each logger in order
type AuthEventLoggers []AuthEventLogger

func (ls AuthEventLoggers) LoginSucceeded(ctx context.Context, username, clientIP string) {
	for _, l := range ls {
		l.LoginSucceeded(ctx, username, clientIP)
	}
}

func (ls AuthEventLoggers) LoginFailed(ctx context.Context, username, clientIP string) {
	for _, l := range ls {
		l.LoginFailed(ctx, username, clientIP)
	}
}

func (ls AuthEventLoggers) LoggedOut(ctx context.Context, username, clientIP string) {
	for _, l := range ls {
		l.LoggedOut(ctx, username, clientIP)
	}
}
