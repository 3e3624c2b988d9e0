package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/mraditya/leaguesim/internal/domain/event"
	"github.com/mraditya/leaguesim/internal/platform/logging"
	"github.com/mraditya/leaguesim/internal/usecase"
)

const (
	subscriberBuffer = 256
	heartbeatEvery   = 15 * time.Second
)

// Stream fans freshly appended events out to SSE subscribers. Publish never
// blocks the orchestrator's write path: a subscriber that cannot keep up has
// its channel closed and must reconnect with ?from= to catch up.
type Stream struct {
	mu          sync.Mutex
	subscribers map[string]chan event.Envelope
	logger      *logging.Logger
}

func NewStream(logger *logging.Logger) *Stream {
	if logger == nil {
		logger = logging.Default()
	}
	return &Stream{
		subscribers: make(map[string]chan event.Envelope),
		logger:      logger,
	}
}

func (s *Stream) Publish(envs []event.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var wg conc.WaitGroup
	var laggedMu sync.Mutex
	var lagged []string
	for id, ch := range s.subscribers {
		id, ch := id, ch
		wg.Go(func() {
			for _, env := range envs {
				select {
				case ch <- env:
				default:
					laggedMu.Lock()
					lagged = append(lagged, id)
					laggedMu.Unlock()
					return
				}
			}
		})
	}
	wg.Wait()

	for _, id := range lagged {
		s.logger.Warn("sse subscriber lagging, dropping", "subscriber_id", id)
		s.dropLocked(id)
	}
}

func (s *Stream) subscribe() (string, chan event.Envelope) {
	id := uuid.NewString()
	ch := make(chan event.Envelope, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()
	return id, ch
}

func (s *Stream) unsubscribe(id string) {
	s.mu.Lock()
	s.dropLocked(id)
	s.mu.Unlock()
}

func (s *Stream) dropLocked(id string) {
	if ch, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(ch)
	}
}

// StreamEvents serves GET /v1/events/stream. It backfills the persisted log
// from ?from= (default: live tail only), then relays published events until
// the client disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeInternalError(ctx, w)
		return
	}

	from := int64(0)
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: from must be a positive sequence", usecase.ErrInvalidInput))
			return
		}
		from = parsed
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Subscribe before the backfill so no event falls between the two;
	// duplicates across the seam are filtered by sequence.
	id, ch := h.stream.subscribe()
	defer h.stream.unsubscribe(id)

	lastSent := int64(0)
	if from > 0 {
		err := h.orc.ReadEvents(ctx, from, func(env event.Envelope) error {
			if err := writeSSE(w, env); err != nil {
				return err
			}
			lastSent = env.Sequence
			return nil
		})
		if err != nil {
			h.logger.WarnContext(ctx, "sse backfill failed", "error", err)
			return
		}
		flusher.Flush()
	}

	heartbeat := time.NewTicker(heartbeatEvery)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case env, open := <-ch:
			if !open {
				return
			}
			if env.Sequence <= lastSent {
				continue
			}
			if err := writeSSE(w, env); err != nil {
				return
			}
			lastSent = env.Sequence
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, env event.Envelope) error {
	data, err := sonic.ConfigDefault.Marshal(env)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", env.Sequence, env.Kind, data)
	return err
}
