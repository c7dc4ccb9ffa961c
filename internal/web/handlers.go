package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Andalusia-Data-Science-Team/AutoMapper/internal/record"
)

// reviewedView returns the mapping table with the latest validation per
// (company, service code) folded in.
func (s *Server) reviewedView() ([]record.LedgerRow, error) {
	rows, err := s.mappings.Read()
	if err != nil {
		return nil, err
	}
	latest, err := s.corrections.Latest()
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if v, ok := latest[row.Key()]; ok {
			rows[i].ValidationStatus = v.ValidationStatus
			rows[i].CorrectedCode = v.CorrectedCode
			rows[i].CorrectedDescription = v.CorrectedDescription
			rows[i].ValidatedBy = v.ValidatedBy
		}
	}
	return rows, nil
}

func (s *Server) handleListMappings(c *gin.Context) {
	rows, err := s.reviewedView()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	company := c.Query("company")
	status := c.Query("status")
	filtered := make([]record.LedgerRow, 0, len(rows))
	for _, row := range rows {
		if company != "" && row.Company != company {
			continue
		}
		if status != "" && row.ValidationStatus != status {
			continue
		}
		filtered = append(filtered, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"mappings": filtered,
		"count":    len(filtered),
	})
}

func (s *Server) handleGetMapping(c *gin.Context) {
	code := c.Param("code")

	rows, err := s.reviewedView()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	matches := make([]record.LedgerRow, 0, 1)
	for _, row := range rows {
		if row.ServiceCode == code {
			matches = append(matches, row)
		}
	}
	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "service code not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"mappings": matches,
		"count":    len(matches),
	})
}

func (s *Server) handleSubmitCorrection(c *gin.Context) {
	var event record.CorrectionEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	if event.ValidationStatus != record.ValidationCorrect && event.ValidationStatus != record.ValidationIncorrect {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation_status must be \"Correct\" or \"In Correct\"",
		})
		return
	}

	rows, err := s.mappings.Read()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var target *record.LedgerRow
	for i := range rows {
		if rows[i].Key() == event.Key() {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "no mapping for that company and service code",
		})
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.SubmittedAt.IsZero() {
		event.SubmittedAt = time.Now()
	}

	row := *target
	row.ValidationStatus = event.ValidationStatus
	row.CorrectedCode = event.CorrectedCode
	row.CorrectedDescription = event.CorrectedDescription
	row.ValidatedBy = event.Reviewer

	if err := s.corrections.Apply(row); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	s.log.Info().
		Str("event_id", event.ID).
		Str("service_code", event.ServiceCode).
		Str("status", event.ValidationStatus).
		Str("reviewer", event.Reviewer).
		Msg("correction recorded")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      event.ID,
		"message": "correction recorded",
	})
}

func (s *Server) handleStats(c *gin.Context) {
	rows, err := s.reviewedView()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var mapped, correct, incorrect, corrected int
	for _, row := range rows {
		if row.SBSCode != "" || row.SBSCodeHyphenated != "" {
			mapped++
		}
		switch row.ValidationStatus {
		case record.ValidationCorrect:
			correct++
		case record.ValidationIncorrect:
			incorrect++
		}
		if row.CorrectedCode != "" {
			corrected++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"total":     len(rows),
		"mapped":    mapped,
		"unmapped":  len(rows) - mapped,
		"correct":   correct,
		"incorrect": incorrect,
		"corrected": corrected,
	})
}
