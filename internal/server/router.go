// Package server provides the embeddable HTTP control API.
// Endpoints:
//
//	POST {basePath}/launch   body: {"ids": [...], "root": "...", "delay_seconds": 15}
//	POST {basePath}/close    body: {"ids": [...]}
//	GET  {basePath}/status
//	POST {basePath}/scan     body: {"root": "..."}
//	GET  {basePath}/locate   query: root=...
//	GET  {basePath}/accounts
//
// basePath may be empty or start with '/'; no trailing slash. The server
// is meant to bind to localhost: it carries the operator's credentials.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eastway/batchlaunch/internal/account"
	"github.com/eastway/batchlaunch/internal/locator"
	"github.com/eastway/batchlaunch/internal/metrics"
	"github.com/eastway/batchlaunch/internal/scanner"
	"github.com/eastway/batchlaunch/internal/store"
	"github.com/eastway/batchlaunch/internal/supervisor"
)

// Router wires the supervisor, account store and scanner into HTTP
// handlers that can be mounted in any mux (including echo, via WrapHandler).
type Router struct {
	sup      *supervisor.Supervisor
	st       store.Store
	sc       *scanner.Scanner
	root     string // default game root when a request omits one
	delay    time.Duration
	basePath string
}

// NewRouter constructs a Router. root and delay are the configured
// defaults applied when a launch request leaves them unset.
func NewRouter(sup *supervisor.Supervisor, st store.Store, sc *scanner.Scanner, root string, delay time.Duration, basePath string) *Router {
	return &Router{
		sup:      sup,
		st:       st,
		sc:       sc,
		root:     root,
		delay:    delay,
		basePath: sanitizeBase(basePath),
	}
}

// Handler returns an http.Handler powered by gin.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/launch", r.handleLaunch)
	group.POST("/close", r.handleClose)
	group.GET("/status", r.handleStatus)
	group.POST("/scan", r.handleScan)
	group.GET("/locate", r.handleLocate)
	group.GET("/accounts", r.handleAccounts)
	group.GET("/metrics", gin.WrapH(metrics.Handler()))
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
func NewServer(addr string, r *Router) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

type launchReq struct {
	IDs          []string `json:"ids"`
	Root         string   `json:"root"`
	DelaySeconds int      `json:"delay_seconds"`
}

type closeReq struct {
	IDs []string `json:"ids"`
}

type scanReq struct {
	Root string `json:"root"`
}

func (r *Router) handleLaunch(c *gin.Context) {
	var req launchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "ids required"})
		return
	}
	root := req.Root
	if root == "" {
		root = r.root
	}
	if root == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "no game root configured"})
		return
	}
	delay := r.delay
	if req.DelaySeconds > 0 {
		delay = time.Duration(req.DelaySeconds) * time.Second
	}
	accts := make([]account.Account, 0, len(req.IDs))
	for _, id := range req.IDs {
		a, err := r.st.Get(c.Request.Context(), account.ID(id))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(c, http.StatusNotFound, errorResp{Error: "unknown account id: " + id})
				return
			}
			writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
			return
		}
		accts = append(accts, a)
	}
	// The batch serializes launches with inter-launch delay; run it off
	// the request goroutine so the API stays responsive.
	go r.sup.LaunchBatch(context.Background(), accts, root, delay)
	writeJSON(c, http.StatusAccepted, okResp{OK: true})
}

func (r *Router) handleClose(c *gin.Context) {
	var req closeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	ids := make([]account.ID, 0, len(req.IDs))
	for _, id := range req.IDs {
		ids = append(ids, account.ID(id))
	}
	r.sup.CloseMany(ids)
	writeJSON(c, http.StatusOK, okResp{OK: true})
}

type statusEntry struct {
	AccountID string    `json:"account_id"`
	Login     string    `json:"login"`
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

func (r *Router) handleStatus(c *gin.Context) {
	recs := r.sup.ListRunning()
	out := make([]statusEntry, 0, len(recs))
	for _, rec := range recs {
		out = append(out, statusEntry{
			AccountID: string(rec.AccountID),
			Login:     rec.Login,
			PID:       rec.PID,
			StartedAt: rec.StartedAt,
		})
	}
	writeJSON(c, http.StatusOK, out)
}

func (r *Router) handleScan(c *gin.Context) {
	var req scanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	if req.Root == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "root required"})
		return
	}
	writeJSON(c, http.StatusOK, r.sc.Scan(req.Root))
}

func (r *Router) handleLocate(c *gin.Context) {
	root := c.Query("root")
	if root == "" {
		root = r.root
	}
	path, err := locator.Locate(root)
	if err != nil {
		writeJSON(c, http.StatusNotFound, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"path": path})
}

func (r *Router) handleAccounts(c *gin.Context) {
	accts, err := r.st.List(c.Request.Context())
	if err != nil {
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	// Secrets never leave the daemon.
	for i := range accts {
		accts[i].Secret = ""
	}
	writeJSON(c, http.StatusOK, accts)
}
