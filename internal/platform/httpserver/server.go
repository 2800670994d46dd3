package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	activityfeedservice "fundry/contexts/funding-core/activity-feed-service"
	activityerrors "fundry/contexts/funding-core/activity-feed-service/domain/errors"
	activityhttp "fundry/contexts/funding-core/activity-feed-service/transport/http"
	campaignservice "fundry/contexts/funding-core/campaign-service"
	campaignerrors "fundry/contexts/funding-core/campaign-service/domain/errors"
	campaignhttp "fundry/contexts/funding-core/campaign-service/transport/http"
	"fundry/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "fundry/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	campaign campaignservice.Module
	activity activityfeedservice.Module
}

func New(
	campaign campaignservice.Module,
	activity activityfeedservice.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		campaign: campaign,
		activity: activity,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.handleFunc("POST /v1/campaigns", s.handleCreateCampaign)
	s.handleFunc("GET /v1/campaigns/count", s.handleCampaignCount)
	s.handleFunc("GET /v1/campaigns/{campaign_id}", s.handleGetCampaign)
	s.handleFunc("GET /v1/campaigns", s.handleListCampaigns)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/contributions", s.handleContribute)
	s.handleFunc("GET /v1/campaigns/{campaign_id}/contributions", s.handleListContributions)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/voting/start", s.handleStartVoting)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/votes", s.handleCastVote)
	s.handleFunc("GET /v1/campaigns/{campaign_id}/voting", s.handleVotingStatus)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/release", s.handleReleaseFunds)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/refund", s.handleRefund)
	s.handleFunc("POST /v1/campaigns/{campaign_id}/milestones/{index}/complete", s.handleCompleteMilestone)
	s.handleFunc("GET /v1/campaigns/{campaign_id}/activity", s.handleCampaignActivity)
}

// handleFunc wraps every route with request-duration instrumentation.
func (s *Server) handleFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		handler(recorder, r)
		metrics.RecordHTTPRequestDuration(
			r.Method,
			r.URL.Path,
			strconv.Itoa(recorder.status),
			time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}

	var req campaignhttp.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCampaignError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.campaign.Handler.CreateCampaignHandler(r.Context(), userID, req)
	if err != nil {
		metrics.RecordCampaignOperation("create_campaign", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("create_campaign", "applied")
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCampaignCount(w http.ResponseWriter, r *http.Request) {
	resp, err := s.campaign.Handler.CampaignCountHandler(r.Context())
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.GetCampaignHandler(r.Context(), campaignID)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if creator := query.Get("creator"); creator != "" {
		resp, err := s.campaign.Handler.ListByCreatorHandler(r.Context(), creator)
		if err != nil {
			writeCampaignDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if backer := query.Get("backer"); backer != "" {
		resp, err := s.campaign.Handler.ListByBackerHandler(r.Context(), backer)
		if err != nil {
			writeCampaignDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeCampaignError(w, http.StatusBadRequest, "missing_filter", "creator or backer query parameter is required")
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}

	var req campaignhttp.ContributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCampaignError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.campaign.Handler.ContributeHandler(r.Context(), userID, campaignID, req)
	if err != nil {
		metrics.RecordCampaignOperation("contribute", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("contribute", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListContributions(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.ContributionsHandler(r.Context(), campaignID, r.URL.Query().Get("backer"))
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartVoting(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.StartVotingHandler(r.Context(), userID, campaignID)
	if err != nil {
		metrics.RecordCampaignOperation("start_voting", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("start_voting", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}

	var req campaignhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCampaignError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.campaign.Handler.CastVoteHandler(r.Context(), userID, campaignID, req)
	if err != nil {
		metrics.RecordCampaignOperation("cast_vote", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("cast_vote", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotingStatus(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.VotingStatusHandler(r.Context(), campaignID)
	if err != nil {
		writeCampaignDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReleaseFunds(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.ReleaseFundsHandler(r.Context(), userID, campaignID)
	if err != nil {
		metrics.RecordCampaignOperation("release_funds", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("release_funds", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRefund(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	resp, err := s.campaign.Handler.RefundHandler(r.Context(), userID, campaignID)
	if err != nil {
		metrics.RecordCampaignOperation("refund", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("refund", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteMilestone(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		writeCampaignError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return
	}
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeCampaignError(w, http.StatusBadRequest, "invalid_index", "milestone index must be an integer")
		return
	}
	resp, err := s.campaign.Handler.CompleteMilestoneHandler(r.Context(), userID, campaignID, index)
	if err != nil {
		metrics.RecordCampaignOperation("complete_milestone", "rejected")
		writeCampaignDomainError(w, err)
		return
	}
	metrics.RecordCampaignOperation("complete_milestone", "applied")
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCampaignActivity(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := parseCampaignID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	limit := 0
	offset := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeActivityError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeActivityError(w, http.StatusBadRequest, "invalid_offset", "offset must be an integer")
			return
		}
		offset = parsed
	}
	resp, err := s.activity.Handler.CampaignActivityHandler(r.Context(), campaignID, limit, offset)
	if err != nil {
		writeActivityDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseCampaignID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	campaignID, err := strconv.ParseInt(r.PathValue("campaign_id"), 10, 64)
	if err != nil || campaignID < 0 {
		writeCampaignError(w, http.StatusBadRequest, "invalid_campaign_id", "campaign id must be a non-negative integer")
		return 0, false
	}
	return campaignID, true
}

func writeCampaignDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campaignerrors.ErrCampaignNotFound),
		errors.Is(err, campaignerrors.ErrMilestoneNotFound):
		writeCampaignError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, campaignerrors.ErrInvalidParameters),
		errors.Is(err, campaignerrors.ErrBelowMinimum),
		errors.Is(err, campaignerrors.ErrAboveMaximum),
		errors.Is(err, campaignerrors.ErrModeNotAllowed):
		writeCampaignError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, campaignerrors.ErrNotCreator):
		writeCampaignError(w, http.StatusForbidden, "not_creator", err.Error())
	case errors.Is(err, campaignerrors.ErrCampaignInactive),
		errors.Is(err, campaignerrors.ErrDeadlinePassed),
		errors.Is(err, campaignerrors.ErrVotingNotStarted),
		errors.Is(err, campaignerrors.ErrVotingAlreadyStarted),
		errors.Is(err, campaignerrors.ErrVotingNotAvailable),
		errors.Is(err, campaignerrors.ErrVotingClosed),
		errors.Is(err, campaignerrors.ErrAlreadyVoted),
		errors.Is(err, campaignerrors.ErrNoContribution),
		errors.Is(err, campaignerrors.ErrNotCompleted),
		errors.Is(err, campaignerrors.ErrAlreadyReleased),
		errors.Is(err, campaignerrors.ErrRefundsNotAvailable),
		errors.Is(err, campaignerrors.ErrNoRefundableAmount),
		errors.Is(err, campaignerrors.ErrMilestoneCompleted):
		writeCampaignError(w, http.StatusConflict, "state_conflict", err.Error())
	case errors.Is(err, campaignerrors.ErrTransferFailed):
		writeCampaignError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		writeCampaignError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeActivityDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, activityerrors.ErrInvalidParameters):
		writeActivityError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, activityerrors.ErrFeedNotFound):
		writeActivityError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		writeActivityError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCampaignError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, campaignhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeActivityError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, activityhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
