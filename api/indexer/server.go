// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package indexer

import (
	"net/http"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/counterprogram/api"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/trace"
)

const (
	Name     = "indexer"
	Endpoint = "/indexer"
)

var _ api.HandlerFactory[api.Backend] = (*apiFactory)(nil)

type apiFactory struct {
	path    string
	name    string
	indexer *Indexer
}

// NewHandlerFactory serves [indexer] under [Endpoint].
func NewHandlerFactory(indexer *Indexer) api.HandlerFactory[api.Backend] {
	return &apiFactory{
		path:    Endpoint,
		name:    Name,
		indexer: indexer,
	}
}

func (f *apiFactory) New(backend api.Backend) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(f.name, NewServer(
		backend.Tracer(),
		f.indexer,
	))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    f.path,
		Handler: handler,
	}, nil
}

func NewServer(tracer trace.Tracer, indexer *Indexer) *Server {
	return &Server{
		tracer:  tracer,
		indexer: indexer,
	}
}

type Server struct {
	tracer  trace.Tracer
	indexer *Indexer
}

type GetTxRequest struct {
	TxID ids.ID `json:"txId"`
}

type GetTxResponse struct {
	Entry *Entry `json:"entry"`
}

func (s *Server) GetTx(req *http.Request, args *GetTxRequest, reply *GetTxResponse) error {
	ctx, span := s.tracer.Start(req.Context(), "Indexer.GetTx")
	defer span.End()

	entry, found, err := s.indexer.GetTransaction(ctx, args.TxID)
	if err != nil {
		return err
	}
	if !found {
		return ErrTxNotFound
	}
	reply.Entry = entry
	return nil
}

type GetAccountTxsRequest struct {
	Address codec.Address `json:"address"`
	Limit   int           `json:"limit"`
}

type GetAccountTxsResponse struct {
	Entries []*Entry `json:"entries"`
}

func (s *Server) GetAccountTxs(req *http.Request, args *GetAccountTxsRequest, reply *GetAccountTxsResponse) error {
	ctx, span := s.tracer.Start(req.Context(), "Indexer.GetAccountTxs")
	defer span.End()

	entries, err := s.indexer.GetAccountTransactions(ctx, args.Address, args.Limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}

type LastSequenceResponse struct {
	Sequence uint64 `json:"sequence"`
}

func (s *Server) LastSequence(req *http.Request, _ *struct{}, reply *LastSequenceResponse) error {
	ctx, span := s.tracer.Start(req.Context(), "Indexer.LastSequence")
	defer span.End()

	seq, err := s.indexer.LastSequence(ctx)
	if err != nil {
		return err
	}
	reply.Sequence = seq
	return nil
}
