package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shieldpool/proof-gateway/config"
	"github.com/shieldpool/proof-gateway/engine"
	"github.com/shieldpool/proof-gateway/prover"
	"github.com/shieldpool/proof-gateway/types"
	"github.com/shieldpool/proof-gateway/validate"
	"github.com/shieldpool/proof-gateway/verifier"
	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20 // 1MB

// ProofGenerator is the boundary to the external proving engine.
type ProofGenerator interface {
	Generate(ctx context.Context, req *types.ProofRequest) (*types.ProofArtifact, error)
	Ping(ctx context.Context) error
}

// ProofVerifier is the boundary to the external verification engine.
type ProofVerifier interface {
	Verify(ctx context.Context, artifact *types.ProofArtifact, publicInputs []byte) (*types.VerificationResult, error)
	Ping(ctx context.Context) error
}

// ArtifactStore persists generated artifacts for later retrieval.
type ArtifactStore interface {
	Put(artifact *types.ProofArtifact) error
	Get(id string) (*types.ProofArtifact, error)
}

// Server wires the validator, engine clients, artifact store and event hub
// behind the HTTP surface.
type Server struct {
	cfg   config.Config
	gen   ProofGenerator
	ver   ProofVerifier
	store ArtifactStore
	hub   *EventHub
	clock clock.Clock
	log   *logrus.Logger
}

// New creates a Server. clk may be a mock in tests; pass clock.New() in
// production.
func New(cfg config.Config, gen ProofGenerator, ver ProofVerifier, store ArtifactStore, clk clock.Clock, log *logrus.Logger) *Server {
	return &Server{
		cfg:   cfg,
		gen:   gen,
		ver:   ver,
		store: store,
		hub:   NewEventHub(log),
		clock: clk,
		log:   log,
	}
}

// envelope is the stable response wrapper for every API reply.
type envelope struct {
	Success bool   `json:"success"`
	Valid   *bool  `json:"valid,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// Router builds the gin engine with all routes and middleware installed.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode) // No debug noise

	go s.hub.Run()

	router := gin.New()
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("[GIN] %s - %s %s %d\n",
				param.TimeStamp.Format("2006-01-02 15:04:05"),
				param.Method,
				param.Path,
				param.StatusCode,
			)
		},
	}))
	router.Use(gin.Recovery())
	router.Use(requestID())
	if s.cfg.General.PublicDemo {
		router.Use(publicDemoCORS())
	}

	// Browsers get the default same-origin check unless the deployment is an
	// explicitly public demo.
	upgrader := websocket.Upgrader{}
	if s.cfg.General.PublicDemo {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	api := router.Group("/api")
	api.POST("/generate-proof", s.handleGenerateProof)
	api.POST("/verify-proof", s.handleVerifyProof)
	api.GET("/health", s.handleHealth)
	api.GET("/proofs/:id", s.handleGetProof)
	api.GET("/events", func(c *gin.Context) {
		s.hub.handleWebSocket(c, upgrader)
	})

	// Static demo assets from the configured root; no working-directory games.
	if s.cfg.Static.Root != "" {
		router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.cfg.Static.Root))))
	}

	return router
}

// Start runs the HTTP server on the configured listen address.
func (s *Server) Start() error {
	s.log.Infof("Starting proof gateway on %s", s.cfg.General.ListenAddr)
	return s.Router().Run(s.cfg.General.ListenAddr)
}

// requestID tags every request with a correlation id.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// publicDemoCORS sets permissive cross-origin headers. Only installed when
// the public_demo config flag is on.
func publicDemoCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) handleGenerateProof(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	req, err := validate.ProofRequest(body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout())
	defer cancel()

	artifact, err := s.gen.Generate(ctx, req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if s.store != nil {
		if err := s.store.Put(artifact); err != nil {
			s.log.Warnf("Failed to persist artifact %s: %v", artifact.ID, err)
		}
	}
	s.hub.Publish(Event{
		Type:        EventProofGenerated,
		ArtifactID:  artifact.ID,
		UserAddress: req.UserAddress,
		PoolID:      req.PoolID,
		Timestamp:   s.clock.Now().UnixMilli(),
	})

	c.JSON(http.StatusOK, envelope{Success: true, Data: artifact})
}

type verifyRequest struct {
	ProofData    *types.ProofArtifact `json:"proof_data"`
	PublicInputs string               `json:"public_inputs"`
}

func (s *Server) handleVerifyProof(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var req verifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(c, &validate.Error{Kind: validate.KindMalformedRequest, Message: "request body is not valid JSON"})
		return
	}
	if req.ProofData == nil {
		s.writeError(c, &validate.Error{Kind: validate.KindMissingField, Field: "proof_data", Message: "required field is absent"})
		return
	}
	if len(req.ProofData.Proof) == 0 {
		s.writeError(c, &validate.Error{Kind: validate.KindMissingField, Field: "proof_data.proof", Message: "required field is absent"})
		return
	}
	if !req.ProofData.Mode.Valid() {
		s.writeError(c, &validate.Error{Kind: validate.KindInvalidFieldType, Field: "proof_data.mode", Message: "expected one of: compressed, full"})
		return
	}

	inputs, err := verifier.DecodePublicInputs(req.PublicInputs)
	if err != nil {
		s.writeError(c, &validate.Error{Kind: validate.KindInvalidFieldType, Field: "public_inputs", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout())
	defer cancel()

	result, err := s.ver.Verify(ctx, req.ProofData, inputs)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.hub.Publish(Event{
		Type:       EventProofVerified,
		ArtifactID: result.ArtifactID,
		Valid:      &result.Valid,
		Timestamp:  s.clock.Now().UnixMilli(),
	})

	c.JSON(http.StatusOK, envelope{Success: true, Valid: &result.Valid, Data: result})
}

func (s *Server) handleGetProof(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, envelope{Success: false, Error: "artifact storage is disabled", Kind: "NotFound"})
		return
	}
	artifact, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if artifact == nil {
		c.JSON(http.StatusNotFound, envelope{Success: false, Error: "artifact not found", Kind: "NotFound"})
		return
	}
	c.JSON(http.StatusOK, envelope{Success: true, Data: artifact})
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, &validate.Error{Kind: validate.KindMalformedRequest, Message: "failed to read request body"}
	}
	return body, nil
}

// writeError maps a typed failure onto an HTTP status and the envelope.
func (s *Server) writeError(c *gin.Context, err error) {
	var vErr *validate.Error
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, envelope{Success: false, Error: vErr.Error(), Kind: string(vErr.Kind)})
		return
	}

	if errors.Is(err, engine.ErrTimeout) {
		c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Error: err.Error(), Kind: "Timeout"})
		return
	}
	if errors.Is(err, engine.ErrUnavailable) {
		kind := "ProofServiceUnavailable"
		if c.FullPath() == "/api/verify-proof" {
			kind = "VerificationEngineUnavailable"
		}
		c.JSON(http.StatusServiceUnavailable, envelope{Success: false, Error: err.Error(), Kind: kind})
		return
	}

	var genErr *prover.GenerationError
	if errors.As(err, &genErr) {
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: genErr.Error(), Kind: "ProofGenerationFailed"})
		return
	}
	var engErr *verifier.EngineError
	if errors.As(err, &engErr) {
		c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: engErr.Error(), Kind: "VerificationEngineError"})
		return
	}

	s.log.Errorf("Unexpected error handling %s: %v", c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, envelope{Success: false, Error: "internal server error", Kind: "InternalError"})
}
