package api

import (
	"time"

	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
)

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	ChatId    string            `json:"chat_id" example:"chat_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type RAGResponse struct {
	Question    string                `json:"question"`
	Answer      string                `json:"answer"`
	Sources     []commonModels.Source `json:"sources"`
	Attachments []string              `json:"attachments,omitempty"`
}

type Result struct {
	Status              string       `json:"status"`
	RAGExternalResponse *RAGResponse `json:"rag_response,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type AttachmentsResponse struct {
	ArticleIds    []string `json:"article_ids"`
	AttachmentIds []string `json:"attachment_ids"`
}

// requests---------------------

type ChatRequest struct {
	Message string                      `json:"message" validate:"required" `
	ChatID  string                      `json:"chatID,omitempty" `
	History []commonModels.ChatMessage  `json:"history,omitempty"`
}
type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
