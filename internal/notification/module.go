// Package notification reacts to domain events: it streams dashboard
// updates to admins over SSE and mails credentials to new accounts.
package notification

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"callcenter_backend/internal/email"
	"callcenter_backend/internal/events"
	apphttp "callcenter_backend/internal/http"
	"callcenter_backend/internal/notification/sse"
	"callcenter_backend/platform/logger"
)

// Module is the notification bounded context implementing http.Module.
type Module struct {
	hub     *sse.Hub
	sender  email.Sender
	enabled bool
	log     *logger.Logger
}

// New wires the module and subscribes it to the events it reacts to.
// A nil sender disables credential mail without disabling the SSE stream.
func New(bus events.Bus, sender email.Sender, emailEnabled bool, log *logger.Logger) *Module {
	m := &Module{
		hub:     sse.NewHub(log),
		sender:  sender,
		enabled: emailEnabled && sender != nil,
		log:     log,
	}

	bus.Subscribe(events.LeadDispositioned{}.EventName(), events.HandlerFunc(m.onLeadDispositioned))
	bus.Subscribe(events.LeadsReassigned{}.EventName(), events.HandlerFunc(m.onLeadsReassigned))
	bus.Subscribe(events.ImportCompleted{}.EventName(), events.HandlerFunc(m.onImportCompleted))
	bus.Subscribe(events.UserCreated{}.EventName(), events.HandlerFunc(m.onUserCreated))
	return m
}

func (m *Module) Name() string { return "notification" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/events", m.stream)
}

// stream handles GET /api/v1/admin/events, holding the connection open and
// relaying hub broadcasts until the client goes away.
func (m *Module) stream(c *gin.Context) {
	messages, cancel := m.hub.Subscribe()
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-messages:
			if !ok {
				return false
			}
			wire, err := sse.Format(msg)
			if err != nil {
				m.log.Error("sse message marshal failed", "event", msg.Event, "error", err)
				return true
			}
			if _, err := io.WriteString(w, wire); err != nil {
				return false
			}
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (m *Module) onLeadDispositioned(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadDispositioned)
	if !ok {
		return nil
	}
	m.hub.Broadcast("lead_updated", gin.H{
		"leadId":      e.LeadID,
		"agentId":     e.AgentID,
		"disposition": e.Disposition,
	})
	return nil
}

func (m *Module) onLeadsReassigned(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadsReassigned)
	if !ok {
		return nil
	}
	m.hub.Broadcast("leads_reassigned", gin.H{
		"count":    e.LeadCount,
		"targetId": e.TargetID,
	})
	return nil
}

func (m *Module) onImportCompleted(_ context.Context, event events.Event) error {
	e, ok := event.(events.ImportCompleted)
	if !ok {
		return nil
	}
	m.hub.Broadcast("import_completed", gin.H{
		"jobId":        e.JobID,
		"listName":     e.ListName,
		"insertedRows": e.InsertedRows,
		"failed":       e.Failed,
	})
	return nil
}

func (m *Module) onUserCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.UserCreated)
	if !ok {
		return nil
	}
	if !m.enabled || e.Email == "" {
		return nil
	}
	if err := m.sender.SendWelcomeEmail(ctx, e.Email, e.Username, e.Password); err != nil {
		m.log.Error("welcome email failed", "username", e.Username, "error", err)
		return err
	}
	m.log.Info("welcome email sent", "username", e.Username)
	return nil
}

var _ apphttp.Module = (*Module)(nil)
