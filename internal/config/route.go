package config

import (
	"fmt"
	"strings"

	"github.com/roach88/kiln/internal/route"
)

// Route specs.
const (
	RouteIdentity = "identity"
	RouteNone     = "none"
	routeExt      = "ext:"
	routePath     = "path:"
	routeChain    = "|"
)

// ParseRoute turns a route spec into a route function:
//
//	identity      the item's own path (default)
//	none          never written
//	ext:.html     the item's path with its extension replaced
//	path:feed.xml a fixed path
//
// Specs joined with "|" are applied left to right, each one routing the
// path produced by the previous: "path:blog/index.md | ext:.html".
func ParseRoute(spec string) (route.Func, error) {
	parts := strings.Split(spec, routeChain)
	if len(parts) == 1 {
		return parseRouteStep(spec)
	}
	var fn route.Func
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("route %q has an empty step", spec)
		}
		next, err := parseRouteStep(part)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			fn = next
			continue
		}
		fn = route.Compose(fn, next)
	}
	return fn, nil
}

func parseRouteStep(spec string) (route.Func, error) {
	switch {
	case spec == "" || spec == RouteIdentity:
		return route.Identity, nil
	case spec == RouteNone:
		return route.None, nil
	case strings.HasPrefix(spec, routeExt):
		return route.SetExtension(strings.TrimPrefix(spec, routeExt)), nil
	case strings.HasPrefix(spec, routePath):
		p := strings.TrimPrefix(spec, routePath)
		if p == "" {
			return nil, fmt.Errorf("route %q has an empty path", spec)
		}
		return route.Constant(p), nil
	}
	return nil, fmt.Errorf("unknown route %q", spec)
}
