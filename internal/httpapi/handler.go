package httpapi

import (
	"net/http"

	"github.com/godilite/gradebook/internal/grades"
	"go.uber.org/zap"
)

// Handler serves the /grades routes.
type Handler struct {
	stats   StatsService
	records RecordService
	logger  *zap.Logger
}

func NewHandler(stats StatsService, records RecordService, logger *zap.Logger) *Handler {
	if stats == nil || records == nil {
		panic("nil service provided to NewHandler")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		stats:   stats,
		records: records,
		logger:  logger.Named("http-handler"),
	}
}

type classAveragesResponse struct {
	LearnerID int64                `json:"learner_id"`
	Averages  []grades.ClassAverage `json:"averages"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) classAverages(w http.ResponseWriter, r *http.Request) {
	learnerID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid learner id")
		return
	}

	averages, err := h.stats.GetClassAverages(r.Context(), learnerID)
	if err != nil {
		h.handleError(w, r, "class averages", err)
		return
	}
	h.writeJSON(w, http.StatusOK, classAveragesResponse{LearnerID: learnerID, Averages: averages})
}

func (h *Handler) overallAverage(w http.ResponseWriter, r *http.Request) {
	learnerID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid learner id")
		return
	}

	avg, err := h.stats.GetOverallAverage(r.Context(), learnerID)
	if err != nil {
		h.handleError(w, r, "overall average", err)
		return
	}
	h.writeJSON(w, http.StatusOK, avg)
}

func (h *Handler) weightedComposite(w http.ResponseWriter, r *http.Request) {
	learnerID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid learner id")
		return
	}
	classID, err := queryID(r, "class")
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	score, err := h.stats.GetWeightedComposite(r.Context(), learnerID, classID)
	if err != nil {
		h.handleError(w, r, "weighted composite", err)
		return
	}
	h.writeJSON(w, http.StatusOK, score)
}

func (h *Handler) cohortStats(w http.ResponseWriter, r *http.Request) {
	var classID *int64
	if _, ok := mapVar(r, "id"); ok {
		id, err := pathID(r, "id")
		if err != nil {
			h.badRequest(w, "invalid class id")
			return
		}
		classID = &id
	}

	cohort, err := h.stats.GetCohortStats(r.Context(), classID)
	if err != nil {
		h.handleError(w, r, "cohort stats", err)
		return
	}
	h.writeJSON(w, http.StatusOK, cohort)
}
