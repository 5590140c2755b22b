package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"pitworld.ai/internal/protocol"
	"pitworld.ai/internal/sim/world/logic/rates"
)

// World is the slice of the world runtime the transport needs.
type World interface {
	ID() string
	Params() protocol.WorldParams
	Submit(ctx context.Context, act protocol.ActMsg) (protocol.ResultMsg, error)
}

type Server struct {
	world World
	log   *log.Logger

	// SubmitTimeout bounds how long one ACT may wait for the world loop.
	SubmitTimeout time.Duration
	// RateWindowSize and RateMax cap ACTs per session; zero disables.
	RateWindowSize time.Duration
	RateMax        int

	upgrader websocket.Upgrader
}

func NewServer(w World, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		world:         w,
		log:           logger.WithPrefix("ws"),
		SubmitTimeout: 5 * time.Second,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			s.log.Debug("upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		sessionID := s.handshake(conn)
		if sessionID == "" {
			return
		}
		logger := s.log.With("session", sessionID)
		logger.Info("session started", "remote", r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan []byte, 16)
		limit := rates.Window{Size: s.RateWindowSize, Max: s.RateMax}

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			allowed, retry := limit.Allow(time.Now())
			act, res, ok := decodeAct(msg)
			switch {
			case !ok:
			case !allowed:
				res = rateLimited(act, retry)
			default:
				res = s.submit(ctx, act)
			}
			if !res.OK {
				logger.Debug("act rejected", "op", res.Op, "code", res.Code, "msg", res.Message)
			}
			b, err := json.Marshal(res)
			if err != nil {
				logger.Error("marshal result", "error", err)
				continue
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}
		logger.Info("session ended")
	}
}

func badRequest(seq uint64, op, why string) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Seq:             seq,
		Op:              op,
		Code:            protocol.ErrProtoBadRequest,
		Message:         why,
	}
}

// decodeAct parses an ACT frame. When ok is false, res is the reply to send.
func decodeAct(msg []byte) (act protocol.ActMsg, res protocol.ResultMsg, ok bool) {
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return act, badRequest(0, "", "invalid json"), false
	}
	if base.Type != protocol.TypeAct {
		return act, badRequest(0, "", "expected ACT"), false
	}
	if err := json.Unmarshal(msg, &act); err != nil {
		return protocol.ActMsg{}, badRequest(0, "", "invalid ACT"), false
	}
	return act, protocol.ResultMsg{}, true
}

func (s *Server) submit(ctx context.Context, act protocol.ActMsg) protocol.ResultMsg {
	sctx, cancel := context.WithTimeout(ctx, s.SubmitTimeout)
	defer cancel()
	res, err := s.world.Submit(sctx, act)
	if err != nil {
		r := badRequest(act.Seq, act.Op, err.Error())
		r.Code = protocol.ErrInternal
		if errors.Is(err, context.DeadlineExceeded) {
			r.Code = protocol.ErrWorldBusy
		}
		return r
	}
	return res
}

func rateLimited(act protocol.ActMsg, retry time.Duration) protocol.ResultMsg {
	return protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		Seq:             act.Seq,
		Op:              act.Op,
		Code:            protocol.ErrRateLimit,
		Message:         "retry in " + retry.Round(time.Millisecond).String(),
	}
}

func (s *Server) handshake(conn *websocket.Conn) string {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ""
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closePolicy(conn, "expected HELLO")
		return ""
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closePolicy(conn, "invalid HELLO")
		return ""
	}
	if hello.ProtocolVersion != protocol.Version {
		closePolicy(conn, "bad protocol_version")
		return ""
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       uuid.NewString(),
		WorldID:         s.world.ID(),
		WorldParams:     s.world.Params(),
	}
	if err := writeJSON(conn, welcome); err != nil {
		return ""
	}
	return welcome.SessionID
}

func closePolicy(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
