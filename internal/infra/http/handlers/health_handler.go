package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/xavierca1/dreamstudio-crm/internal/infra/database"
	"github.com/xavierca1/dreamstudio-crm/internal/infra/queue"
)

// Broker is the part of the RabbitMQ connection the health check reads.
type Broker interface {
	IsClosed() bool
	QueueDepths() (map[string]int, error)
}

type HealthHandler struct {
	DB        *sql.DB
	Broker    Broker
	StartTime time.Time

	// SchemaVersion defaults to database.SchemaVersion.
	SchemaVersion func(ctx context.Context, db *sql.DB) (int64, bool, error)
}

type DatabaseHealth struct {
	Status        string `json:"status"`
	SchemaVersion int64  `json:"schemaVersion"`
	Dirty         bool   `json:"dirty,omitempty"`
	OpenConns     int    `json:"openConns"`
	InUse         int    `json:"inUse"`
}

type BrokerHealth struct {
	Status      string         `json:"status"`
	Queues      map[string]int `json:"queues,omitempty"`
	DeadLetters int            `json:"deadLetters"`
}

type HealthResponse struct {
	Status   string          `json:"status"`
	Uptime   string          `json:"uptime"`
	Database *DatabaseHealth `json:"database,omitempty"`
	Broker   *BrokerHealth   `json:"broker,omitempty"`
}

func NewHealthHandler(db *sql.DB, broker Broker) *HealthHandler {
	return &HealthHandler{
		DB:            db,
		Broker:        broker,
		StartTime:     time.Now(),
		SchemaVersion: database.SchemaVersion,
	}
}

// Handle answers 503 when the database is unreachable, its schema is dirty,
// or the broker connection is gone. Dead letters are reported, not failed on.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.StartTime).Round(time.Second).String(),
	}

	if h.DB != nil {
		resp.Database = h.checkDatabase(r.Context())
		if resp.Database.Status != "healthy" {
			resp.Status = "degraded"
		}
	}
	if h.Broker != nil {
		resp.Broker = h.checkBroker()
		if resp.Broker.Status != "healthy" {
			resp.Status = "degraded"
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) *DatabaseHealth {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	stats := h.DB.Stats()
	out := &DatabaseHealth{Status: "healthy", OpenConns: stats.OpenConnections, InUse: stats.InUse}

	if err := h.DB.PingContext(ctx); err != nil {
		out.Status = "unhealthy: " + err.Error()
		return out
	}
	if h.SchemaVersion == nil {
		return out
	}
	version, dirty, err := h.SchemaVersion(ctx, h.DB)
	if err != nil {
		out.Status = "unhealthy: schema version: " + err.Error()
		return out
	}
	out.SchemaVersion, out.Dirty = version, dirty
	if dirty {
		out.Status = "unhealthy: schema migration left dirty"
	}
	return out
}

func (h *HealthHandler) checkBroker() *BrokerHealth {
	if h.Broker.IsClosed() {
		return &BrokerHealth{Status: "unhealthy: connection closed"}
	}
	depths, err := h.Broker.QueueDepths()
	out := &BrokerHealth{Status: "healthy", Queues: depths}
	if err != nil {
		out.Status = "unhealthy: " + err.Error()
	}
	for name, n := range depths {
		if strings.HasSuffix(name, ".dlq") {
			out.DeadLetters += n
		}
	}
	return out
}

var _ Broker = (*queue.RabbitMQ)(nil)
