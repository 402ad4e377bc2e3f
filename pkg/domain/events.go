package domain

import (
	"context"
	"time"
)

// Outcome of a single mapping entry.
type Outcome string

const (
	OutcomeResolved Outcome = "resolved"
	OutcomeOmitted  Outcome = "omitted"
)

// EntryEvent describes how one mapping entry was handled.
type EntryEvent struct {
	Timestamp time.Time `json:"timestamp"`
	TargetKey string    `json:"target_key"`
	Path      string    `json:"path"`
	Outcome   Outcome   `json:"outcome"`
}

// ConversionEvent describes one complete Load → Transform → Write invocation.
type ConversionEvent struct {
	Timestamp   time.Time     `json:"timestamp"`
	Destination string        `json:"destination"`
	Duration    time.Duration `json:"duration"`
	Resolved    int           `json:"resolved"`
	Omitted     int           `json:"omitted"`
	Err         error         `json:"-"`
}

// TransformHooks defines callbacks for conversion observability.
// Nil callbacks are skipped.
type TransformHooks struct {
	OnEntry      func(context.Context, *EntryEvent)
	OnConversion func(context.Context, *ConversionEvent)
}

// Merge returns hooks that call h first and then other.
func (h TransformHooks) Merge(other TransformHooks) TransformHooks {
	return TransformHooks{
		OnEntry: func(ctx context.Context, e *EntryEvent) {
			if h.OnEntry != nil {
				h.OnEntry(ctx, e)
			}
			if other.OnEntry != nil {
				other.OnEntry(ctx, e)
			}
		},
		OnConversion: func(ctx context.Context, e *ConversionEvent) {
			if h.OnConversion != nil {
				h.OnConversion(ctx, e)
			}
			if other.OnConversion != nil {
				other.OnConversion(ctx, e)
			}
		},
	}
}
