package dto

type ReviewRequest struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

type ReviewUpdateRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type CommentUpdateRequest struct {
	Text *string `json:"text"`
}
