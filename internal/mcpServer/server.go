package mcpServer

import (
	"net/http"

	"github.com/akolanti/PaperRAG/internal/job"
	"github.com/akolanti/PaperRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "0.1.0"

// Server exposes the task API as MCP tools. Tools only submit and poll, work still runs on the worker pool.
type Server struct {
	jobs   *job.Service
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(jobService *job.Service) *Server {
	s := &Server{
		jobs:   jobService,
		server: mcp.NewServer(&mcp.Implementation{Name: "paperrag", Version: Version}, nil),
		logger: logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s
}

// Handler serves the streamable HTTP transport, mounted at /mcp by the api server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}
