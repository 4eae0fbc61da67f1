package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// MountedHandler owns a router of its own, served under the given path
// prefixes. Used when its routes would collide with wildcard segments of the
// main router.
type MountedHandler interface {
	Handler
	MountPoints() []string
}
