package api

import (
	"context"
	"fmt"
	"net/http"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Interview struct {
	ID        string   `json:"id"`
	Role      string   `json:"role"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Questions []string `json:"questions"`
	Techstack []string `json:"techstack"`
	UserID    string   `json:"user_id"`
	Finalized bool     `json:"finalized"`
	CreatedAt string   `json:"created_at"`
}

type Feedback struct {
	ID              string          `json:"id"`
	InterviewID     string          `json:"interview_id"`
	TotalScore      int             `json:"total_score"`
	CategoryScores  []CategoryScore `json:"category_scores"`
	Strengths       []string        `json:"strengths"`
	AreasToImprove  []string        `json:"areas_for_improvement"`
	FinalAssessment string          `json:"final_assessment"`
	CreatedAt       string          `json:"created_at"`
}

type CategoryScore struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// TranscriptMessage is one finalized conversation turn, as submitted for
// feedback scoring.
type TranscriptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	return &user, nil
}

func (c *Client) InterviewByID(ctx context.Context, id string) (*Interview, error) {
	var interview Interview
	if err := c.do(ctx, http.MethodGet, "/interviews/"+id+"/", nil, &interview); err != nil {
		return nil, fmt.Errorf("failed to fetch interview %s: %w", id, err)
	}
	return &interview, nil
}

type CreateInterviewParams struct {
	Role      string   `json:"role"`
	Type      string   `json:"type"`
	Level     string   `json:"level"`
	Questions []string `json:"questions"`
	Techstack []string `json:"techstack"`
}

func (c *Client) CreateInterview(ctx context.Context, params CreateInterviewParams) (*Interview, error) {
	var interview Interview
	if err := c.do(ctx, http.MethodPost, "/interviews/", params, &interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return &interview, nil
}

// CreateFeedback submits a finished call's transcript for scoring and returns
// the stored feedback record.
func (c *Client) CreateFeedback(ctx context.Context, interviewID string, transcript []TranscriptMessage) (*Feedback, error) {
	payload := struct {
		InterviewID string              `json:"interview_id"`
		Transcript  []TranscriptMessage `json:"transcript"`
	}{InterviewID: interviewID, Transcript: transcript}

	var feedback Feedback
	if err := c.do(ctx, http.MethodPost, "/feedbacks/", payload, &feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}
	return &feedback, nil
}

func (c *Client) FeedbackForInterview(ctx context.Context, interviewID string) (*Feedback, error) {
	var feedback Feedback
	if err := c.do(ctx, http.MethodGet, "/interviews/"+interviewID+"/feedback/", nil, &feedback); err != nil {
		return nil, fmt.Errorf("failed to fetch feedback for interview %s: %w", interviewID, err)
	}
	return &feedback, nil
}
