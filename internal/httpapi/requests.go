package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/godilite/gradebook/internal/grades"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

type scoreRequest struct {
	Type  string   `json:"type" validate:"required,oneof=exam quiz homework"`
	Score *float64 `json:"score"`
}

func (s scoreRequest) entry() grades.ScoreEntry {
	return grades.ScoreEntry{Kind: grades.ScoreKind(s.Type), Score: s.Score}
}

// createRecordRequest accepts student_id as an older name for learner_id.
type createRecordRequest struct {
	LearnerID *int64         `json:"learner_id" validate:"required,min=0"`
	StudentID *int64         `json:"student_id,omitempty"`
	ClassID   *int64         `json:"class_id" validate:"required,min=0,max=300"`
	Scores    []scoreRequest `json:"scores" validate:"omitempty,dive"`
}

func (r *createRecordRequest) normalize() {
	if r.LearnerID == nil {
		r.LearnerID = r.StudentID
	}
}

func (r createRecordRequest) entries() []grades.ScoreEntry {
	out := make([]grades.ScoreEntry, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.entry()
	}
	return out
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must hold a single JSON object")
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
