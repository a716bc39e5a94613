package dto

// ParameterScoreRequest is one judge score against one evaluation parameter,
// bounded [0,5] before it reaches the service.
type ParameterScoreRequest struct {
	ParameterID uint    `json:"parameter_id" validate:"required,gt=0"`
	Score       float64 `json:"score" validate:"gte=0,lte=5"`
	Note        string  `json:"note" validate:"omitempty,max=2000"`
}

// EvaluationRequest is a judge's full evaluation of one submission.
type EvaluationRequest struct {
	SubmissionUUID  string                  `json:"submission_uuid" validate:"required,uuid4"`
	ParameterScores []ParameterScoreRequest `json:"parameter_scores" validate:"required,min=1,dive"`
	Comment         string                  `json:"comment" validate:"omitempty,max=4000"`
}

// EvaluationResponse confirms a stored evaluation.
type EvaluationResponse struct {
	SubmissionUUID string  `json:"submission_uuid"`
	JudgeID        uint    `json:"judge_id"`
	ScoreCount     int     `json:"score_count"`
	AverageScore   float64 `json:"average_score"`
}
