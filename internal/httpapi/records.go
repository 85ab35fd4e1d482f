package httpapi

import (
	"net/http"

	"github.com/godilite/gradebook/internal/grades"
	"github.com/gorilla/mux"
)

func mapVar(r *http.Request, name string) (string, bool) {
	v, ok := mux.Vars(r)[name]
	return v, ok
}

// studentRedirect keeps the old /grades/student/{id} links working.
func (h *Handler) studentRedirect(w http.ResponseWriter, r *http.Request) {
	id, _ := mapVar(r, "id")
	target := "/grades/learner/" + id
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}

func (h *Handler) listByLearner(w http.ResponseWriter, r *http.Request) {
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
	h.list(w, r, grades.Filter{LearnerID: &learnerID, ClassID: classID})
}

func (h *Handler) listByClass(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid class id")
		return
	}
	learnerID, err := queryID(r, "learner")
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	h.list(w, r, grades.Filter{LearnerID: learnerID, ClassID: &classID})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, filter grades.Filter) {
	records, err := h.records.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, r, "list records", err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := mapVar(r, "id")
	rec, err := h.records.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "get record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) createRecord(w http.ResponseWriter, r *http.Request) {
	var req createRecordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	req.normalize()
	if err := validate.Struct(req); err != nil {
		h.badRequest(w, validationMessage(err))
		return
	}

	rec, err := h.records.Create(r.Context(), *req.LearnerID, *req.ClassID, req.entries())
	if err != nil {
		h.handleError(w, r, "create record", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rec)
}

type scoreEdit func(h *Handler, r *http.Request, id string, entry grades.ScoreEntry) (grades.GradeRecord, error)

func (h *Handler) editScore(op string, edit scoreEdit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := mapVar(r, "id")

		var req scoreRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.badRequest(w, err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			h.badRequest(w, validationMessage(err))
			return
		}

		rec, err := edit(h, r, id, req.entry())
		if err != nil {
			h.handleError(w, r, op, err)
			return
		}
		h.writeJSON(w, http.StatusOK, rec)
	}
}

func addScore(h *Handler, r *http.Request, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	return h.records.AddScore(r.Context(), id, entry)
}

func removeScore(h *Handler, r *http.Request, id string, entry grades.ScoreEntry) (grades.GradeRecord, error) {
	return h.records.RemoveScore(r.Context(), id, entry)
}

func (h *Handler) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, _ := mapVar(r, "id")
	rec, err := h.records.Delete(r.Context(), id)
	if err != nil {
		h.handleError(w, r, "delete record", err)
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteByLearner(w http.ResponseWriter, r *http.Request) {
	learnerID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid learner id")
		return
	}
	n, err := h.records.DeleteByLearner(r.Context(), learnerID)
	if err != nil {
		h.handleError(w, r, "delete learner records", err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

func (h *Handler) deleteByClass(w http.ResponseWriter, r *http.Request) {
	classID, err := pathID(r, "id")
	if err != nil {
		h.badRequest(w, "invalid class id")
		return
	}
	n, err := h.records.DeleteByClass(r.Context(), classID)
	if err != nil {
		h.handleError(w, r, "delete class records", err)
		return
	}
	h.writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}
