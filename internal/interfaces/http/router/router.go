// Package router assembles the gin engine and the versioned API routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where every resource is mounted.
const APIPrefix = "/api/v1"

// Resource is the route table of one REST resource. Guards run before
// every route of the resource; per-route guards go in front of the
// handler in the route's own chain.
type Resource struct {
	prefix string
	guards []gin.HandlerFunc
	routes []route
}

type route struct {
	method string
	path   string
	chain  []gin.HandlerFunc
}

func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

// Use appends resource-wide guards.
func (r *Resource) Use(guards ...gin.HandlerFunc) *Resource {
	r.guards = append(r.guards, guards...)
	return r
}

func (r *Resource) add(method, path string, chain []gin.HandlerFunc) *Resource {
	r.routes = append(r.routes, route{method: method, path: path, chain: chain})
	return r
}

func (r *Resource) GET(path string, chain ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodGet, path, chain)
}

func (r *Resource) POST(path string, chain ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPost, path, chain)
}

func (r *Resource) PUT(path string, chain ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPut, path, chain)
}

func (r *Resource) PATCH(path string, chain ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPatch, path, chain)
}

func (r *Resource) DELETE(path string, chain ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodDelete, path, chain)
}

// Mount registers each resource under rg.
func Mount(rg *gin.RouterGroup, resources ...*Resource) {
	for _, res := range resources {
		g := rg.Group(res.prefix, res.guards...)
		for _, rt := range res.routes {
			g.Handle(rt.method, rt.path, rt.chain...)
		}
	}
}
