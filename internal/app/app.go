// Package app assembles the stores and the timeline from configuration.
package app

import (
	"context"

	"github.com/comigor/roomchat/internal/config"
	"github.com/comigor/roomchat/internal/history"
	"github.com/comigor/roomchat/internal/kv"
	"github.com/comigor/roomchat/internal/llm"
	"github.com/comigor/roomchat/internal/reply"
	"github.com/comigor/roomchat/internal/rooms"
	"github.com/comigor/roomchat/internal/session"
	"github.com/comigor/roomchat/internal/timeline"
)

// App is the set of components every surface (HTTP, MCP, CLI) works against.
type App struct {
	Records  kv.Store
	History  *history.Store
	Rooms    *rooms.Registry
	Sidebar  *rooms.Sidebar
	Session  *session.Manager
	Timeline *timeline.Timeline
}

// New opens the record store named by cfg and wires the components on top.
func New(ctx context.Context, cfg *config.Config) *App {
	return NewWithStore(ctx, cfg, kv.Open(ctx, cfg.Storage.Path), llm.NewFromConfig(cfg.Assistant))
}

// NewWithStore wires the components over an existing record store.
func NewWithStore(ctx context.Context, cfg *config.Config, rec kv.Store, responder reply.Responder) *App {
	hist := history.NewStore(rec)
	registry := rooms.NewRegistry(rec, hist)
	tl := timeline.New(hist,
		timeline.WithPageLength(cfg.Timeline.PageLength),
		timeline.WithReplyOptions(
			reply.WithDelay(cfg.Timeline.ReplyDelay),
			reply.WithAssistantName(cfg.Assistant.Name),
			reply.WithResponder(responder),
		),
	)
	return &App{
		Records:  rec,
		History:  hist,
		Rooms:    registry,
		Sidebar:  rooms.NewSidebar(ctx, registry, rooms.DefaultDebounce),
		Session:  session.NewManager(rec),
		Timeline: tl,
	}
}

// Close stops background work and closes the record store.
func (a *App) Close() error {
	a.Timeline.Close("")
	a.Sidebar.Stop()
	return a.Records.Close()
}
