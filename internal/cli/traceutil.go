package cli

import (
	"context"
	"runtime/trace"
)

const traceCategory = "bootimage"

func withTraceRegion[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	defer trace.StartRegion(ctx, traceCategory+"."+name).End()
	return fn()
}

func withTraceRegionErr(ctx context.Context, name string, fn func() error) error {
	defer trace.StartRegion(ctx, traceCategory+"."+name).End()
	if err := fn(); err != nil {
		trace.Log(ctx, traceCategory, err.Error())
		return err
	}
	return nil
}
