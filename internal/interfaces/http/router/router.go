package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where every domain group is mounted
const APIPrefix = "/api/v1"

// Router mounts domain groups under APIPrefix behind a shared middleware chain
type Router struct {
	engine     *gin.Engine
	middleware []gin.HandlerFunc
	groups     []*DomainGroup
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIMiddleware adds middleware that runs for API routes only, after the
// engine-wide chain
func WithAPIMiddleware(middleware ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, middleware...)
	}
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues groups for Setup
func (r *Router) Register(groups ...*DomainGroup) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Setup mounts the queued groups on the engine
func (r *Router) Setup() {
	api := r.engine.Group(APIPrefix, r.middleware...)
	for _, g := range r.groups {
		g.mount(api)
	}
}

// Route is one registered endpoint, relative to APIPrefix
type Route struct {
	Method string
	Path   string
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

// Routes lists every endpoint the queued groups will mount
func (r *Router) Routes() []Route {
	var routes []Route
	for _, g := range r.groups {
		routes = append(routes, g.Routes()...)
	}
	return routes
}

// DomainGroup collects the endpoints of one resource under a common prefix
type DomainGroup struct {
	name   string
	prefix string
	routes []routeDefinition
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

func (dg *DomainGroup) Name() string { return dg.name }

func (dg *DomainGroup) handle(method, relativePath string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: relativePath, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, relativePath, handlers)
}

func (dg *DomainGroup) POST(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, relativePath, handlers)
}

func (dg *DomainGroup) PUT(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, relativePath, handlers)
}

func (dg *DomainGroup) PATCH(relativePath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, relativePath, handlers)
}

// Routes lists the group's endpoints with the group prefix applied
func (dg *DomainGroup) Routes() []Route {
	routes := make([]Route, 0, len(dg.routes))
	for _, rd := range dg.routes {
		routes = append(routes, Route{Method: rd.method, Path: joinPath(dg.prefix, rd.path)})
	}
	return routes
}

func (dg *DomainGroup) mount(api *gin.RouterGroup) {
	group := api.Group(dg.prefix)
	for _, rd := range dg.routes {
		group.Handle(rd.method, rd.path, rd.handlers...)
	}
}

// joinPath mirrors gin's handling of an empty relative path, which maps to
// the group root without a trailing slash
func joinPath(prefix, relativePath string) string {
	if relativePath == "" {
		return prefix
	}
	return path.Join(prefix, relativePath)
}
