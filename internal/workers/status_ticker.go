package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/thejasondev/groundops/internal/constants"
	"github.com/thejasondev/groundops/internal/logging"
	"github.com/thejasondev/groundops/internal/metrics"
	"github.com/thejasondev/groundops/internal/models/dtos"
	"github.com/thejasondev/groundops/internal/services"
)

// statusInterval is the live recompute cadence: the countdown display
// expects a fresh status once a second.
const statusInterval = time.Second

// StatusHub pushes the active flight's turnaround status to connected
// dashboard clients. The ticker runs only while at least one client is
// connected; when the last display disconnects it stops, matching the
// "cancelled when the view is torn down" contract of the engine.
type StatusHub struct {
	store   *services.FlightStoreService
	engine  *services.TurnaroundEngine
	metrics *metrics.MetricsRegistry
	clock   func() time.Time

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	cancel  context.CancelFunc
}

// StatusFrame is one websocket push.
type StatusFrame struct {
	ActiveID   string                `json:"active_id,omitempty"`
	Flight     *dtos.FlightDetailDto `json:"flight,omitempty"`
	ServerTime string                `json:"server_time"`
}

func NewStatusHub(store *services.FlightStoreService, engine *services.TurnaroundEngine, metricsReg *metrics.MetricsRegistry, clock func() time.Time) *StatusHub {
	if clock == nil {
		clock = time.Now
	}
	return &StatusHub{
		store:   store,
		engine:  engine,
		metrics: metricsReg,
		clock:   clock,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades the connection and registers the client.
func (h *StatusHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn("Websocket upgrade failed", "error", err.Error())
			return
		}

		h.addClient(conn)

		// Read pump: drain control frames and detect disconnect.
		go func() {
			defer h.removeClient(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

func (h *StatusHub) addClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[conn] = struct{}{}
	if h.metrics != nil {
		h.metrics.WSClientsGauge.Set(float64(len(h.clients)))
	}

	if h.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		go h.run(ctx)
	}
}

func (h *StatusHub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	_ = conn.Close()
	if h.metrics != nil {
		h.metrics.WSClientsGauge.Set(float64(len(h.clients)))
	}

	if len(h.clients) == 0 && h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *StatusHub) run(ctx context.Context) {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	logging.Info("Status ticker started")
	for {
		select {
		case <-ctx.Done():
			logging.Info("Status ticker stopped")
			return
		case <-ticker.C:
			h.broadcast(h.buildFrame())
		}
	}
}

// buildFrame computes the current status frame. The engine is pure, so this
// is just a fresh evaluation against the wall clock.
func (h *StatusHub) buildFrame() StatusFrame {
	now := h.clock()
	frame := StatusFrame{ServerTime: now.Format("15:04:05")}

	activeID := h.store.ActiveID()
	if activeID == "" {
		if h.metrics != nil {
			h.metrics.OverdueFlightsGauge.Set(0)
		}
		return frame
	}
	flight, err := h.store.Get(activeID)
	if err != nil {
		return frame
	}

	frame.ActiveID = activeID
	detail := dtos.FlightDetailDto{Flight: flight}
	if flight.ETA != "" && flight.ETD != "" {
		scheduled := h.engine.ComputeScheduled(flight.ETA, flight.ETD)
		status := h.engine.ComputeStatus(
			flight.ETA, flight.ETD,
			flight.ArrivalAnchorTime(), flight.DepartureAnchorTime(),
			now,
		)
		detail.Scheduled = &scheduled
		detail.Turnaround = &status

		if h.metrics != nil {
			h.metrics.StatusRecomputesTotal.Inc()
			if status.Phase == constants.PhaseOverdue {
				h.metrics.OverdueFlightsGauge.Set(1)
			} else {
				h.metrics.OverdueFlightsGauge.Set(0)
			}
		}
	}
	frame.Flight = &detail
	return frame
}

func (h *StatusHub) broadcast(frame StatusFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
	if h.metrics != nil {
		h.metrics.WSClientsGauge.Set(float64(len(h.clients)))
	}
	if len(h.clients) == 0 && h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}
