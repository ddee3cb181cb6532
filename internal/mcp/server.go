package mcp

import (
	"context"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/thoughtpad/thoughtpad-mcp/internal/backup"
	"github.com/thoughtpad/thoughtpad-mcp/internal/dispatch"
	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "thoughtpad-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"

	defaultSession = "default"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	pool     *dispatch.Pool
	importer *backup.Importer
	logger   *zap.Logger

	now func() time.Time
}

// NewServer creates a new MCP server instance. The server does not own store
// or pool; the caller closes them after Serve returns.
func NewServer(store storage.Storage, pool *dispatch.Pool, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		storage:  store,
		pool:     pool,
		importer: backup.NewImporter(store),
		logger:   logger,
		now:      time.Now,
	}

	hooks := &server.Hooks{}
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		s.pool.DropLane(session.SessionID())
	})

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithHooks(hooks),
	)
	s.registerTools()

	return s
}

// Serve runs the MCP server on stdio and blocks until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger.Named("stdio")))

	s.logger.Info("serving MCP over stdio", zap.String("name", ServerName), zap.String("version", ServerVersion))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.addTool(createNoteTool(), s.handleCreateNote)
	s.addTool(updateNoteTool(), s.handleUpdateNote)
	s.addTool(getNoteTool(), s.handleGetNote)
	s.addTool(listNotesTool(), s.handleListNotes)
	s.addTool(deleteNoteTool(), s.handleDeleteNote)
	s.addTool(emptyTrashTool(), s.handleEmptyTrash)

	s.addTool(listTagsTool(), s.handleListTags)
	s.addTool(upsertTagTool(), s.handleUpsertTag)
	s.addTool(deleteTagTool(), s.handleDeleteTag)

	s.addTool(getChecklistTool(), s.handleGetChecklist)

	s.addTool(exportNotesTool(), s.handleExportNotes)
	s.addTool(importNotesTool(), s.handleImportNotes)
	s.addTool(getStatusTool(), s.handleGetStatus)
}

// addTool registers handler under tool, logging every call
func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	log := s.logger.With(zap.String("tool", tool.Name))
	s.mcp.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)
		if err != nil {
			log.Warn("tool call failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
			return result, err
		}
		log.Debug("tool call", zap.Duration("duration", time.Since(start)))
		return result, nil
	})
}

// sessionKey returns the lane key of the client that issued the call
func sessionKey(ctx context.Context) string {
	if session := server.ClientSessionFromContext(ctx); session != nil {
		if id := session.SessionID(); id != "" {
			return id
		}
	}
	return defaultSession
}

// run executes fn on the worker pool, after every call previously issued by the same client
func run[T any](ctx context.Context, s *Server, fn func(ctx context.Context) (T, error)) (T, error) {
	return dispatch.DoInLane(ctx, s.pool.Lane(sessionKey(ctx)), fn)
}

// timestamp returns the current time at the precision the store keeps
func (s *Server) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}
