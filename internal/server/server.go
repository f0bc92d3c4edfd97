// internal/server/server.go
package server

import (
	"context"
	"math"
	"net/http"

	"travel-companion/internal/common/errors"
	"travel-companion/internal/common/logger"
	"travel-companion/internal/itinerary"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LocationValidator resolves whether a destination exists. Backed by the
// weather provider's location search.
type LocationValidator interface {
	ValidateLocation(ctx context.Context, location string) (bool, error)
}

// ItineraryGenerator is the pipeline entry point the server depends on.
type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, req itinerary.TripRequest) (*itinerary.FinalItinerary, error)
}

// Server exposes the itinerary pipeline over HTTP.
type Server struct {
	pipeline  ItineraryGenerator
	facts     itinerary.FactProvider
	validator LocationValidator
	logger    logger.Logger
}

func New(pipeline ItineraryGenerator, facts itinerary.FactProvider, validator LocationValidator, log logger.Logger) *Server {
	return &Server{
		pipeline:  pipeline,
		facts:     facts,
		validator: validator,
		logger:    log.With(map[string]interface{}{"component": "http"}),
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router(appVersion string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "travel-companion",
			"version": appVersion,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/itinerary", s.handleGenerateItinerary)
		v1.POST("/insights", s.handleDestinationInsights)
	}

	return r
}

// generateItineraryRequest is the wire form of a trip request. Budget is in
// major currency units and converted to the smallest unit internally.
type generateItineraryRequest struct {
	Destination   string   `json:"destination" binding:"required"`
	Source        string   `json:"source"`
	StartDate     string   `json:"startDate" binding:"required"`
	Duration      int      `json:"duration" binding:"required"`
	Budget        float64  `json:"budget"`
	Interests     []string `json:"interests" binding:"required"`
	Accommodation string   `json:"accommodation"`
	Dietary       string   `json:"dietary"`
}

func (s *Server) handleGenerateItinerary(c *gin.Context) {
	var req generateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if !s.destinationExists(c, req.Destination) {
		return
	}

	result, err := s.pipeline.GenerateItinerary(c.Request.Context(), itinerary.TripRequest{
		Destination:   req.Destination,
		Source:        req.Source,
		StartDate:     req.StartDate,
		Duration:      req.Duration,
		Budget:        int64(math.Round(req.Budget * 100)),
		Interests:     req.Interests,
		Accommodation: req.Accommodation,
		Dietary:       req.Dietary,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"itinerary": result,
		"days":      result.DayRecords(),
	})
}

type destinationInsightsRequest struct {
	Destination string   `json:"destination" binding:"required"`
	Interests   []string `json:"interests"`
}

func (s *Server) handleDestinationInsights(c *gin.Context) {
	var req destinationInsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if !s.destinationExists(c, req.Destination) {
		return
	}

	facts, err := s.facts.Search(c.Request.Context(), req.Destination, req.Interests)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"destination": req.Destination,
		"insights":    facts,
	})
}

// destinationExists rejects destinations the weather backend cannot resolve.
// A validator outage is not held against the caller.
func (s *Server) destinationExists(c *gin.Context, destination string) bool {
	if s.validator == nil {
		return true
	}

	valid, err := s.validator.ValidateLocation(c.Request.Context(), destination)
	if err != nil {
		s.logger.Warn("location validation unavailable, continuing", map[string]interface{}{
			"destination": destination,
			"error":       err.Error(),
		})
		return true
	}
	if !valid {
		s.writeError(c, errors.NewUnknownLocationError(destination))
		return false
	}
	return true
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.IsValidation(err) {
		status = http.StatusBadRequest
	}

	var body gin.H
	if stdErr, ok := err.(*errors.StandardError); ok {
		body = gin.H{
			"status":  "error",
			"code":    stdErr.Code,
			"message": stdErr.Message,
			"details": stdErr.Details,
		}
	} else {
		body = gin.H{
			"status":  "error",
			"message": err.Error(),
		}
	}

	c.JSON(status, body)
}
