package grpc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/godilite/gradebook/internal/grades"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	fieldLearnerID = "learner_id"
	fieldClassID   = "class_id"

	// Largest integer a protobuf double carries exactly.
	maxExactInt = 1 << 53
)

// idField reads an identifier. Numbers must be integral; strings are
// accepted for ids beyond double precision. Absent and null report false.
// Negative ids pass through and match nothing.
func idField(req *structpb.Struct, name string) (int64, bool, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, false, nil
	}

	var id int64
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, false, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if math.IsNaN(f) || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
			return 0, false, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		id = int64(f)
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(k.StringValue, 10, 64)
		if err != nil {
			return 0, false, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
		}
		id = n
	default:
		return 0, false, status.Errorf(codes.InvalidArgument, "%s must be an integer", name)
	}
	return id, true, nil
}

func parseLearnerRequest(req *structpb.Struct) (learnerID int64, classID *int64, err error) {
	learnerID, ok, err := idField(req, fieldLearnerID)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return 0, nil, status.Error(codes.InvalidArgument, "learner_id is required")
	}

	classID, err = optionalClass(req)
	return learnerID, classID, err
}

func optionalClass(req *structpb.Struct) (*int64, error) {
	id, ok, err := idField(req, fieldClassID)
	if err != nil || !ok {
		return nil, err
	}
	return &id, nil
}

// number maps undefined results to nil, which structpb encodes as null.
func number(n grades.Number) any {
	if !n.Defined() {
		return nil
	}
	return n.Float64()
}

func toStruct(fields map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return s, nil
}

func classAveragesMessage(learnerID int64, averages []grades.ClassAverage) (*structpb.Struct, error) {
	items := make([]any, len(averages))
	for i, a := range averages {
		items[i] = map[string]any{
			fieldClassID: a.ClassID,
			"average":    number(a.Average),
		}
	}
	return toStruct(map[string]any{
		fieldLearnerID: learnerID,
		"averages":     items,
	})
}

func overallAverageMessage(avg grades.LearnerAverage) (*structpb.Struct, error) {
	return toStruct(map[string]any{
		fieldLearnerID:   avg.LearnerID,
		"overallAverage": number(avg.OverallAverage),
	})
}

func weightedScoreMessage(score grades.WeightedScore) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldLearnerID: score.LearnerID,
		"composite":    number(score.Composite),
	}
	if score.ClassID != nil {
		fields[fieldClassID] = *score.ClassID
	}
	return toStruct(fields)
}

func cohortMessage(c grades.CohortStats) (*structpb.Struct, error) {
	fields := map[string]any{
		"scope":         c.Scope,
		"passing_count": c.PassingCount,
		"total_count":   c.TotalCount,
		"passing_ratio": c.PassingRatio,
	}
	if c.ClassID != nil {
		fields[fieldClassID] = *c.ClassID
	}
	return toStruct(fields)
}
