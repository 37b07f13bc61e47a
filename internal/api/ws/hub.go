package ws

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/server/middleware"
	redisstore "github.com/gosuda/attest/internal/store/redis"
	"github.com/gosuda/attest/internal/workflow"
)

// Hub manages WebSocket connections backed by Redis pub/sub.
type Hub struct {
	pubsub *redisstore.PubSub
	audits domain.AuditRepository
	grants domain.ViewerGrantRepository
}

// NewHub creates a new WebSocket hub.
func NewHub(pubsub *redisstore.PubSub, audits domain.AuditRepository, grants domain.ViewerGrantRepository) *Hub {
	return &Hub{pubsub: pubsub, audits: audits, grants: grants}
}

// ServeAudit handles WebSocket connections for live workflow updates on one
// audit. Subscribes to Redis channel "audit:<auditID>" and relays transition
// events to the client. Visibility follows the same rules as the REST API.
func (h *Hub) ServeAudit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	auditID, err := uuid.Parse(chi.URLParam(r, "auditID"))
	if err != nil {
		http.Error(w, "invalid audit id", http.StatusBadRequest)
		return
	}

	audit, err := h.audits.GetByID(r.Context(), auditID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			http.Error(w, "audit not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Msg("websocket audit lookup")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	hasGrant := false
	if user.Role == domain.RoleViewer {
		hasGrant, err = h.grants.Exists(r.Context(), auditID, user.ID)
		if err != nil {
			log.Error().Err(err).Msg("websocket grant lookup")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	if !workflow.CanViewAudit(user, audit, hasGrant) {
		http.Error(w, "no access to this audit", http.StatusForbidden)
		return
	}

	h.stream(w, r, redisstore.AuditChannel(auditID))
}

// ServeTrail handles WebSocket connections for the global audit-trail feed.
// Subscribes to Redis channel "trail:events". Admin only.
func (h *Hub) ServeTrail(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if user.Role != domain.RoleAdmin {
		http.Error(w, "administrator role required", http.StatusForbidden)
		return
	}

	h.stream(w, r, redisstore.TrailChannel())
}

func (h *Hub) stream(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()

	messages, cleanup, err := h.pubsub.Subscribe(ctx, channel)
	if err != nil {
		log.Error().Err(err).Msg("websocket subscribe")
		_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
		return
	}
	defer cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case msg, msgOK := <-messages:
			if !msgOK {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			if writeErr := conn.Write(ctx, websocket.MessageText, msg); writeErr != nil {
				log.Debug().Err(writeErr).Msg("websocket write")
				return
			}
		}
	}
}
