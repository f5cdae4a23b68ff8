// Package ctxutil provides type-safe context value management for tracing
// fields carried through webhook event processing.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	chatIDKey    contextKey = "ctxutil.chatID"
	requestIDKey contextKey = "ctxutil.requestID"
	eventIDKey   contextKey = "ctxutil.eventID"
)

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func getValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// WithUserID adds the LINE user ID to the context.
// Empty IDs leave the context unchanged.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, userIDKey, userID)
}

// GetUserID retrieves the user ID from the context, or "" if absent.
func GetUserID(ctx context.Context) string {
	return getValue(ctx, userIDKey)
}

// WithChatID adds the chat ID (user, group, or room) to the context.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return withValue(ctx, chatIDKey, chatID)
}

// GetChatID retrieves the chat ID from the context, or "" if absent.
func GetChatID(ctx context.Context) string {
	return getValue(ctx, chatIDKey)
}

// WithRequestID adds a request ID to the context for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return withValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID := getValue(ctx, requestIDKey)
	return requestID, requestID != ""
}

// WithEventID adds the LINE webhook event ID to the context.
func WithEventID(ctx context.Context, eventID string) context.Context {
	return withValue(ctx, eventIDKey, eventID)
}

// GetEventID retrieves the webhook event ID from the context, or "" if absent.
func GetEventID(ctx context.Context) string {
	return getValue(ctx, eventIDKey)
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for event processing that continues after the webhook HTTP response
// has been sent and the request context is canceled.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()
	newCtx = WithUserID(newCtx, GetUserID(ctx))
	newCtx = WithChatID(newCtx, GetChatID(ctx))
	newCtx = WithEventID(newCtx, GetEventID(ctx))
	if requestID, ok := GetRequestID(ctx); ok {
		newCtx = WithRequestID(newCtx, requestID)
	}
	return newCtx
}
