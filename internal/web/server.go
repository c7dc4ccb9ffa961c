// Package web serves the review API: the reviewed mapping table and the
// endpoint the validation sheet is written through. The review UI itself is
// external; this is its data surface.
package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// MappingSource reads the denormalized mapping table. Implemented by
// ledger.MappingStore.
type MappingSource interface {
	Read() ([]record.LedgerRow, error)
}

// CorrectionSink records validated rows and resolves the latest validation
// per row. Implemented by ledger.CorrectionStore.
type CorrectionSink interface {
	Apply(row record.LedgerRow) error
	Latest() (map[string]record.LedgerRow, error)
}

// Server is the review API server.
type Server struct {
	mappings    MappingSource
	corrections CorrectionSink
	log         zerolog.Logger
	router      *gin.Engine
}

// NewServer creates a review API server over the given stores.
func NewServer(mappings MappingSource, corrections CorrectionSink, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		mappings:    mappings,
		corrections: corrections,
		log:         log,
		router:      router,
	}

	api := router.Group("/api")
	{
		api.GET("/mappings", s.handleListMappings)
		api.GET("/mappings/:code", s.handleGetMapping)
		api.POST("/corrections", s.handleSubmitCorrection)
		api.GET("/stats", s.handleStats)
	}

	return s
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("review API listening")
	return s.router.Run(addr)
}
