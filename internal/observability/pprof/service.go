// Package pprof runs the optional debug HTTP listener exposing
// net/http/pprof endpoints.
package pprof

import (
	"context"
	"errors"
	"net"
	"net/http"
	hpprof "net/http/pprof"
	"strings"
	"sync"
	"time"

	logx "splashd/pkg/logx"
)

// Config controls the debug listener. An empty Addr disables it.
// Binding to a non-loopback address requires a Token.
type Config struct {
	Addr  string
	Token string
}

// Server manages lifecycle for the debug HTTP listener.
type Server struct {
	mu   sync.Mutex
	log  logx.Logger
	cfg  Config
	srv  *http.Server
	ln   net.Listener
	addr string
}

func New(log logx.Logger) *Server {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Server{log: log}
}

// Apply starts, stops or rebinds the listener to match cfg. Safe to
// call on every config reload.
func (p *Server) Apply(ctx context.Context, cfg Config) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)

	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg.Addr == "" {
		p.stopLocked(ctx)
		return
	}
	if p.srv != nil && p.cfg == cfg {
		return
	}
	p.stopLocked(ctx)
	p.startLocked(cfg)
}

// Stop gracefully shuts down the listener.
func (p *Server) Stop(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked(ctx)
}

// Addr reports the actual listen address if running.
func (p *Server) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addr
}

func (p *Server) startLocked(cfg Config) {
	if cfg.Token == "" && !isLoopbackAddr(cfg.Addr) {
		p.log.Error("pprof refused to start: non-loopback addr requires a token",
			logx.String("addr", cfg.Addr))
		return
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		p.log.Warn("pprof listen failed", logx.String("addr", cfg.Addr), logx.Err(err))
		return
	}

	wrap := func(h http.HandlerFunc) http.HandlerFunc { return withAuth(cfg.Token, h) }
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", wrap(hpprof.Index))
	mux.HandleFunc("/debug/pprof/cmdline", wrap(hpprof.Cmdline))
	mux.HandleFunc("/debug/pprof/profile", wrap(hpprof.Profile))
	mux.HandleFunc("/debug/pprof/symbol", wrap(hpprof.Symbol))
	mux.HandleFunc("/debug/pprof/trace", wrap(hpprof.Trace))

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	p.cfg = cfg
	p.srv = srv
	p.ln = ln
	p.addr = ln.Addr().String()

	log := p.log
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("pprof server error", logx.Err(err))
		}
	}()
	p.log.Info("pprof listening",
		logx.String("addr", p.addr), logx.Bool("token_set", cfg.Token != ""))
}

func (p *Server) stopLocked(ctx context.Context) {
	if p.srv == nil {
		return
	}
	srv, ln, addr := p.srv, p.ln, p.addr
	p.srv = nil
	p.ln = nil
	p.addr = ""
	p.cfg = Config{}

	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.log.Warn("pprof shutdown error", logx.String("addr", addr), logx.Err(err))
	}
	if ln != nil {
		_ = ln.Close()
	}
	p.log.Info("pprof stopped", logx.String("addr", addr))
}

// withAuth accepts the token as ?token=<t> or "Authorization: Bearer <t>".
func withAuth(token string, h http.HandlerFunc) http.HandlerFunc {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != "" {
			if got == tok {
				h(w, r)
				return
			}
			unauthorized(w)
			return
		}
		const prefix = "Bearer "
		if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, prefix) {
			if strings.TrimSpace(strings.TrimPrefix(ah, prefix)) == tok {
				h(w, r)
				return
			}
		}
		unauthorized(w)
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func isLoopbackAddr(addr string) bool {
	h, _, err := net.SplitHostPort(addr)
	if err != nil || h == "" {
		return false
	}
	if strings.EqualFold(h, "localhost") {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}
