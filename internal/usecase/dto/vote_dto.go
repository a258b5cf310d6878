package dto

// VoteRequest - query of POST /vote; the scores travel in the body
type VoteRequest struct {
	Token   string `query:"token" validate:"required"`
	PointID string `query:"point_id" validate:"required"`
}

// VoteResponse - outcome of a vote submission
type VoteResponse struct {
	AlreadyVoted bool   `json:"already_voted"`
	Message      string `json:"message"`
}
