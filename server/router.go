// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/mux"
)

var errAlreadyReserved = errors.New("route is either already aliased or already maps to a handle")

type router struct {
	lock   sync.RWMutex
	router *mux.Router

	routes set.Set[string]
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
	}
}

func (r *router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(writer, request)
}

func (r *router) GetHandler(path string) (http.Handler, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	route := r.router.Get(path)
	if route == nil {
		return nil, fmt.Errorf("no handler at %q", path)
	}
	return route.GetHandler(), nil
}

func (r *router) AddRouter(path string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.routes.Contains(path) {
		return fmt.Errorf("%w: %s", errAlreadyReserved, path)
	}
	r.routes.Add(path)
	r.router.Handle(path, handler).Name(path)
	return nil
}
