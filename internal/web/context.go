package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/csvimport/internal/core"
)

// withRequestMetadata adds the client address and User-Agent for import logs.
// RemoteAddr has already been rewritten by chi's RealIP middleware.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithClientIP(ctx, r.RemoteAddr)
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	return ctx
}
