package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/nkatta/HelpCenterRAG/internal/adapter"
	"github.com/nkatta/HelpCenterRAG/internal/adapter/utils"
	"github.com/nkatta/HelpCenterRAG/internal/api"
	"github.com/nkatta/HelpCenterRAG/internal/config"
	"github.com/nkatta/HelpCenterRAG/internal/domain/commonModels"
	"github.com/nkatta/HelpCenterRAG/pkg/logger_i"
)

var logRH *logger_i.Logger

// technically i dont need this
// but i want to eventually remove jobHandler from handlers and set it in another package
// so in anticipation for that this struct exists
type newJobData struct {
	id        string
	chatId    string
	message   string
	history   []commonModels.ChatMessage
	isNewChat bool
	traceId   string
	isRebuild bool
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// ChatHandler godoc
// @Summary      Start a new chat job
// @Description  Accepts a message plus optional chat ID and prior turns, initializes a background processing job, and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest      true  "Chat Message, optional Chat ID and history"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or chat ID"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {

	if validateContext(request.Context()) {

		var requestData api.ChatRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the Chat handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateChatRequest(requestData) {

			logRH.Warn("Bad Chat Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
			return
		}
		processNewJobData(request, w, requestData, false)
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

// PostRebuildHandler queues a full re-index of the help center corpus.
// @Summary      Rebuild the vector index
// @Description  Reloads the corpus file, re-chunks it, re-embeds every chunk, and upserts the result. Runs as a background job.
// @Tags         Ingestion
// @Produce      json
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Bad Request"
// @Router       /ingest [post]
func PostRebuildHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		processNewJobData(r, w, api.ChatRequest{}, true)
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// GetAttachmentsHandler godoc
// @Summary      Resolve article attachments
// @Description  Returns the deduplicated image attachment ids referenced by the given comma separated article ids.
// @Tags         Attachments
// @Produce      json
// @Param        articles  query     string  true  "Comma separated article ids"
// @Success      200  {object}  api.AttachmentsResponse
// @Failure      400  {object}  api.JobResponse "Missing articles parameter"
// @Failure      500  {object}  api.JobResponse "Corpus could not be read"
// @Router       /attachments [get]
func GetAttachmentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		raw := r.URL.Query().Get("articles")
		articleIds := splitArticleIds(raw)
		if len(articleIds) == 0 {
			WriteErrorResponse(w, http.StatusBadRequest, "", "articles query parameter is required")
			return
		}

		attachmentIds, err := ResolveAttachments(articleIds)
		if err != nil {
			logRH.Error("Attachment lookup failed", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Attachment lookup failed")
			return
		}

		writeJsonResponse(w, http.StatusOK, api.AttachmentsResponse{
			ArticleIds:    articleIds,
			AttachmentIds: attachmentIds,
		})
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

func splitArticleIds(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
