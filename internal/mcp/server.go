// Package mcp exposes the panels as Model Context Protocol tools.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"rpgpanel/internal/config"
	"rpgpanel/internal/form"
	"rpgpanel/internal/panel"
	"rpgpanel/internal/resource"
	"rpgpanel/internal/view"
)

// Panel is what the tools need from an opened panel.
type Panel interface {
	Descriptor() *config.Panel
	Refresh(ctx context.Context) error
	View(filter resource.FilterState) view.View
	Record(ctx context.Context, id string) (resource.Record, error)
	SaveRecord(ctx context.Context, record resource.Record) (resource.Record, bool, error)
	Delete(ctx context.Context, id string, confirm form.Confirmer) (bool, error)
	Stats(ctx context.Context) (panel.Stats, error)
}

// Opener returns the named panel, loaded.
type Opener func(ctx context.Context, name string) (Panel, error)

type Server struct {
	schema *config.Schema
	open   Opener
	mcp    *sdk.Server
}

func NewServer(schema *config.Schema, open Opener, version string) *Server {
	s := &Server{
		schema: schema,
		open:   open,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "rpgpanel",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
