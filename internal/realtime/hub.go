package realtime

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"

	"github.com/example/etailor/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// TokenVerifier resolves a bearer token to the caller.
type TokenVerifier func(token string) (models.Identity, error)

// Hub streams change events to websocket clients at /realtime/:table.
type Hub struct {
	broker   Broker
	verify   TokenVerifier
	tables   map[string]bool
	upgrader websocket.Upgrader
	origins  []string
}

// NewHub serves the tables watched by the storefront. An empty origins list
// accepts any origin.
func NewHub(broker Broker, verify TokenVerifier, origins []string) *Hub {
	h := &Hub{
		broker:  broker,
		verify:  verify,
		tables:  map[string]bool{TableOrders: true, TableOrderItems: true},
		origins: origins,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// Handler returns the router wrapped in CORS handling.
func (h *Hub) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/realtime/:table", h.serveTable)
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})

	origins := h.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.origins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.origins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func bearerToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

func (h *Hub) serveTable(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	table := ps.ByName("table")
	if !h.tables[table] {
		http.Error(w, "unknown table", http.StatusNotFound)
		return
	}

	identity, err := h.verify(bearerToken(r))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// subscribe before upgrading so no change between handshake and first
	// read is missed
	sub, err := h.broker.Subscribe(r.Context(), table)
	if err != nil {
		log.Printf("[Realtime] subscribe %s failed: %v", table, err)
		http.Error(w, "change feed unavailable", http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	log.Printf("[Realtime] %s watching %s", identity.Email, table)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case ev, ok := <-sub.Events():
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
