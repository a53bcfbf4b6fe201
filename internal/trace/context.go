package trace

import "context"

type ctxKey struct{}

// active is what a context carries: the tracer and the innermost open span.
type active struct {
	tracer Tracer
	span   uint64
}

func fromContext(ctx context.Context) active {
	if ctx != nil {
		if a, ok := ctx.Value(ctxKey{}).(active); ok {
			return a
		}
	}
	return active{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return fromContext(ctx).tracer
}

// WithTracer attaches t to ctx. Spans started from the result are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, active{tracer: t})
}

// Start opens a span on the tracer of ctx, parented to the span already
// open in ctx. The returned context carries the new span.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	a := fromContext(ctx)
	span := Begin(a.tracer, scope, name, a.span)
	if span.id == 0 || ctx == nil {
		return ctx, span
	}
	return context.WithValue(ctx, ctxKey{}, active{tracer: a.tracer, span: span.id}), span
}
