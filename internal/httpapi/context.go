package httpapi

import "context"

// serverBaseCtx is canceled when the process begins shutting down.
var serverBaseCtx = context.Background()

// SetBaseContext ties in-flight inference to the process lifetime; nil
// resets it to Background.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	serverBaseCtx = ctx
}

// joinContexts derives from req a context that is also canceled when base
// is done. Call the returned cancel when the handler returns.
func joinContexts(base, req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(req)
	stop := context.AfterFunc(base, func() { cancel(context.Cause(base)) })
	return ctx, func() {
		stop()
		cancel(context.Canceled)
	}
}
