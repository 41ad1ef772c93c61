package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rawblock/zzcore/internal/db"
	"github.com/rawblock/zzcore/internal/dimacs"
	"github.com/rawblock/zzcore/internal/metrics"
	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/models"
)

// APIHandler holds the dependencies every route needs: the solver the
// previous /solve call left behind (for GET /stats), the optional audit
// store, and the progress hub.
type APIHandler struct {
	auditStore *db.AuditStore
	hub        *Hub

	lastRunID string
	lastSolve *satcore.Solver
}

// SetupRouter wires the gin engine the same way the teacher's SetupRouter
// does: a CORS middleware controlled by ALLOWED_ORIGINS, a public route
// group, and a bearer-token-protected, rate-limited group.
func SetupRouter(auditStore *db.AuditStore, hub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept-Encoding, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{auditStore: auditStore, hub: hub}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", hub.Subscribe)
		pub.GET("/stats", handler.handleStats)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(30, 5).Middleware())
	{
		protected.POST("/solve", handler.handleSolve)
		protected.GET("/runs", handler.handleGetRuns)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleSolve reads a DIMACS cnf body, loads it into a fresh solver, solves
// it, broadcasts the outcome to subscribed dashboards, and — if an audit
// store is configured — records the run. It never persists the CNF body
// itself (§1 Non-goals forbid problem/netlist persistence).
func (h *APIHandler) handleSolve(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	digest := sha256.Sum256(body)
	runID := uuid.NewString()
	start := time.Now()

	s := satcore.New(nil)
	if _, err := dimacs.LoadInto(s, bytes.NewReader(body)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid DIMACS input", "details": err.Error()})
		return
	}

	result := s.Solve(nil)
	duration := time.Since(start)

	outcome := models.OutcomeUndef
	switch result {
	case satcore.ResultSAT:
		outcome = models.OutcomeSAT
	case satcore.ResultUnsat:
		outcome = models.OutcomeUnsat
	}

	record := models.RunRecord{
		RunID:         runID,
		CNFDigest:     hex.EncodeToString(digest[:]),
		NumVars:       s.NumVars(),
		NumClauses:    s.NumClauses(),
		Outcome:       outcome,
		ConflictCount: s.ConflictCount(),
		RestartCount:  len(s.RestartIntervals()),
		DurationMs:    duration.Milliseconds(),
		CreatedAt:     start,
	}

	h.lastRunID = runID
	h.lastSolve = s

	h.hub.Broadcast(mustJSON(gin.H{
		"event":        "solve.complete",
		"runId":        runID,
		"outcome":      outcome,
		"numVars":      record.NumVars,
		"numClauses":   record.NumClauses,
		"restartCount": record.RestartCount,
		"durationMs":   record.DurationMs,
	}))

	if h.auditStore != nil {
		if err := h.auditStore.SaveRun(c.Request.Context(), record); err != nil {
			c.Writer.Header().Set("X-Audit-Warning", "failed to persist run record")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"runId":        runID,
		"outcome":      outcome,
		"numVars":      record.NumVars,
		"numClauses":   record.NumClauses,
		"restartCount": record.RestartCount,
		"durationMs":   record.DurationMs,
	})
}

// handleStats reports the stats of the most recently solved problem, the
// variable-activity and restart-interval distributions internal/metrics
// derives from it.
func (h *APIHandler) handleStats(c *gin.Context) {
	if h.lastSolve == nil {
		c.JSON(http.StatusOK, models.StatsSnapshot{})
		return
	}
	s := h.lastSolve
	mean, stddev := metrics.RestartIntervalStats(s)
	snap := models.StatsSnapshot{
		RunID:            h.lastRunID,
		NumVars:          s.NumVars(),
		NumClauses:       s.NumClauses(),
		NumLearnts:       s.NumLearnts(),
		VirtualTime:      s.VirtualTime(),
		RestartIntervals: s.RestartIntervals(),
		RestartHistogram: metrics.RestartIntervalHistogram(s, 50),
		RestartMean:      mean,
		RestartStddev:    stddev,
		ActivityBuckets:  metrics.ActivityBuckets(s, 5),
	}
	c.JSON(http.StatusOK, snap)
}

func (h *APIHandler) handleGetRuns(c *gin.Context) {
	if h.auditStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log not configured (set DATABASE_URL)"})
		return
	}
	page := intQuery(c, "page", 1)
	limit := intQuery(c, "limit", 50)
	runs, total, err := h.auditStore.GetRuns(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query run history", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": total, "page": page, "limit": limit})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n := 0
	for _, ch := range v {
		if ch < '0' || ch > '9' {
			return fallback
		}
		n = n*10 + int(ch-'0')
	}
	return n
}

func mustJSON(v gin.H) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte(`{}`)
	}
	return b
}
