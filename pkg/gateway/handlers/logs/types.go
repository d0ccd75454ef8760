// Package logs serves the proxy's file logs, the live log stream and system
// journal queries over HTTP.
package logs

import (
	"context"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logquery"
	"github.com/DeBrosOfficial/proxyconsole/pkg/logresolve"
)

// DefaultLines is returned when the request does not ask for a count.
const DefaultLines = 100

// PathResolver maps a category to its log file.
type PathResolver interface {
	ResolveFile(ctx context.Context, cat logresolve.Category) (string, error)
}

// QueryRunner runs system log queries.
type QueryRunner interface {
	Query(ctx context.Context, q logquery.Query) (string, error)
}

// FetchResponse is the body of GET /api/logs.
type FetchResponse struct {
	Logs []string `json:"logs"`
	Type string   `json:"type"`
	Path string   `json:"path"`
}

// JournalResponse is the body of POST /api/systemd/logs.
type JournalResponse struct {
	Logs        string `json:"logs"`
	ServiceName string `json:"service_name"`
}

// StreamMessage is one websocket frame of the live stream.
type StreamMessage struct {
	Category  string `json:"category"`
	Path      string `json:"path"`
	Line      string `json:"line"`
	Timestamp int64  `json:"timestamp"`
}
