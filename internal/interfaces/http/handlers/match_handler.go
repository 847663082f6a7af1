package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appmatching "github.com/openhaven/matchgrid/internal/application/matching"
	"github.com/openhaven/matchgrid/internal/domain/applicant"
	"github.com/openhaven/matchgrid/internal/domain/match"
	"github.com/openhaven/matchgrid/internal/domain/project"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/pkg/errors"
)

// MatchHandler serves the matching endpoints.
type MatchHandler struct {
	service    *appmatching.Service
	applicants applicant.Repository
	projects   project.Repository
	matches    match.Repository
	logger     logging.Logger
}

// NewMatchHandler builds a MatchHandler.
func NewMatchHandler(
	service *appmatching.Service,
	applicants applicant.Repository,
	projects project.Repository,
	matches match.Repository,
	logger logging.Logger,
) *MatchHandler {
	return &MatchHandler{
		service:    service,
		applicants: applicants,
		projects:   projects,
		matches:    matches,
		logger:     logger.Named("match_handler"),
	}
}

// matchRequest is the optional body for MatchApplicant.
type matchRequest struct {
	// TopN limits the ranked response; zero or absent returns everything.
	TopN int `json:"top_n"`
	// DryRun scores without persisting.
	DryRun bool `json:"dry_run"`
}

type batchRequest struct {
	// ApplicantIDs limits the batch; empty means every applicant.
	ApplicantIDs []uuid.UUID `json:"applicant_ids"`
}

// MatchApplicant handles POST /api/v1/match/applicant/:id.  It scores one
// applicant against the current project inventory and, unless dry_run is
// set, persists the surviving matches.
func (h *MatchHandler) MatchApplicant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidParam("applicant id must be a UUID"))
		return
	}

	var req matchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
			return
		}
	}
	if req.TopN < 0 {
		respondError(c, errors.InvalidParam("top_n must not be negative"))
		return
	}

	ctx := c.Request.Context()
	a, err := h.applicants.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	candidates, err := h.projects.List(ctx, project.Filter{})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.DryRun {
		ranked, err := h.service.MatchApplicantToProjects(ctx, a, candidates, req.TopN)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"applicant_id": a.ID,
			"matches":      ranked,
			"dry_run":      true,
		})
		return
	}

	records, err := h.service.CreateMatchesForApplicant(ctx, a, candidates)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.TopN > 0 && req.TopN < len(records) {
		records = records[:req.TopN]
	}
	c.JSON(http.StatusCreated, gin.H{
		"applicant_id": a.ID,
		"matches":      records,
	})
}

// BatchMatch handles POST /api/v1/match/batch.  Without a body it rescores
// every applicant; with applicant_ids it rescores just those.
func (h *MatchHandler) BatchMatch(c *gin.Context) {
	var req batchRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, errors.InvalidParam("malformed request body").WithCause(err))
			return
		}
	}

	ctx := c.Request.Context()
	applicants, err := h.resolveApplicants(c, req.ApplicantIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	projects, err := h.projects.List(ctx, project.Filter{})
	if err != nil {
		respondError(c, err)
		return
	}

	summary, err := h.service.BatchMatch(ctx, applicants, projects)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *MatchHandler) resolveApplicants(c *gin.Context, ids []uuid.UUID) ([]*applicant.Applicant, error) {
	ctx := c.Request.Context()
	if len(ids) == 0 {
		return h.applicants.List(ctx, applicant.Filter{})
	}
	out := make([]*applicant.Applicant, 0, len(ids))
	for _, id := range ids {
		a, err := h.applicants.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// ListMatches handles GET /api/v1/match/applicant/:id, returning the
// persisted matches for one applicant, best first.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidParam("applicant id must be a UUID"))
		return
	}

	records, err := h.matches.ListByApplicant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*match.Match{}
	}
	c.JSON(http.StatusOK, gin.H{"applicant_id": id, "matches": records})
}

// DeleteMatches handles DELETE /api/v1/match/applicant/:id, removing an
// applicant's matches after withdrawal.
func (h *MatchHandler) DeleteMatches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, errors.InvalidParam("applicant id must be a UUID"))
		return
	}

	deleted, err := h.matches.DeleteByApplicant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applicant_id": id, "deleted": deleted})
}
