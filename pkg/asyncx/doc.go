// Package asyncx holds the small set of concurrency helpers the service
// layer uses: futures for fan-out over heterogeneous calls, ordered
// fan-out over homogeneous ones, and detached best-effort work.
//
// Every helper recovers panics from the supplied function and reports them
// as a *PanicError, so a misbehaving provider call cannot take the process
// down.
//
// # Futures
//
//	users := asyncx.Run(ctx, func(ctx context.Context) ([]identity.Profile, error) {
//	    return idp.ListUsers(ctx, opts)
//	})
//	total := asyncx.Run(ctx, func(ctx context.Context) (int, error) {
//	    return idp.CountUsers(ctx)
//	})
//
//	list, err := users.Await(ctx)
//
// # Detached work
//
// [Detach] runs work that must outlive the request, such as operator
// alerts, with its own deadline.
package asyncx
