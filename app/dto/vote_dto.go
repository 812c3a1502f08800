package dto

// CastVoteRequest represents a vote submission
type CastVoteRequest struct {
	CreationUUID string `json:"creation_id" validate:"required,uuid4"`
	VoterEmail   string `json:"voter_email" validate:"required,email,max=255"`
}

// CastVoteResponse represents the response after casting a vote
type CastVoteResponse struct {
	Message    string `json:"message"`
	VotesCount int    `json:"votes_count"`
}

// RemoveVoteRequest represents a vote retraction
type RemoveVoteRequest struct {
	CreationUUID string `json:"creation_id" validate:"required,uuid4"`
	VoterEmail   string `json:"voter_email" validate:"required,email,max=255"`
}

// RemoveVoteResponse represents the response after removing a vote
type RemoveVoteResponse struct {
	Message    string `json:"message"`
	VotesCount int    `json:"votes_count"`
}

// VoterStateRequest asks for a voter's standing vote and owned creation
type VoterStateRequest struct {
	VoterEmail string `query:"voter_email" validate:"required,email,max=255"`
}

// VoterStateResponse reports what the server knows about a voter so clients
// can reconcile their local state.
type VoterStateResponse struct {
	VotedCreationUUID *string `json:"voted_creation_uuid,omitempty"`
	OwnedCreationUUID *string `json:"owned_creation_uuid,omitempty"`
	OwnedCreationName *string `json:"owned_creation_name,omitempty"`
}
