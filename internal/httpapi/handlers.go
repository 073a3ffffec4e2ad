package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/agora-platform/agora/internal/model"
	"github.com/agora-platform/agora/internal/store"
)

type createTopicRequest struct {
	Question  string `json:"question"`
	CreatedBy string `json:"created_by"`
}

type createArgumentRequest struct {
	Side    string `json:"side"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Sources string `json:"sources"`
}

type topicDetailResponse struct {
	model.Topic
	ProArguments []model.Argument `json:"pro_arguments"`
	ConArguments []model.Argument `json:"con_arguments"`
}

type verifyAllResult struct {
	ArgumentID    int64  `json:"argument_id"`
	Title         string `json:"title"`
	Status        string `json:"status"` // "verified" or "failed"
	ValidityScore *int   `json:"validity_score,omitempty"`
	Error         string `json:"error,omitempty"`
}

type verifyAllResponse struct {
	Total    int               `json:"total"`
	Verified int               `json:"verified"`
	Failed   int               `json:"failed"`
	Results  []verifyAllResult `json:"results"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    "agora",
		"message": "debate platform API",
	})
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if req.CreatedBy == "" {
		req.CreatedBy = "anonymous"
	}

	topic, err := s.store.CreateTopic(r.Context(), req.Question, req.CreatedBy)
	if err != nil {
		s.internalError(w, "create topic", err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics, err := s.store.ListTopics(r.Context())
	if err != nil {
		s.internalError(w, "list topics", err)
		return
	}
	if topics == nil {
		topics = []model.TopicSummary{}
	}
	writeJSON(w, http.StatusOK, topics)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	topic, err := s.store.GetTopic(r.Context(), id)
	if err != nil {
		s.storeError(w, "get topic", err)
		return
	}

	// Verified arguments first, ranked by validity.
	args, err := s.store.ListArgumentsByValidity(r.Context(), id, "")
	if err != nil {
		s.internalError(w, "list arguments", err)
		return
	}

	resp := topicDetailResponse{
		Topic:        topic,
		ProArguments: []model.Argument{},
		ConArguments: []model.Argument{},
	}
	for _, a := range args {
		if a.Side == model.SidePro {
			resp.ProArguments = append(resp.ProArguments, a)
		} else {
			resp.ConArguments = append(resp.ConArguments, a)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateArgument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req createArgumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	side := model.Side(strings.ToLower(req.Side))
	if !side.Valid() {
		writeError(w, http.StatusBadRequest, `side must be "pro" or "con"`)
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.Author == "" {
		req.Author = "anonymous"
	}

	if _, err := s.store.GetTopic(r.Context(), id); err != nil {
		s.storeError(w, "get topic", err)
		return
	}

	argID, err := s.store.CreateArgument(r.Context(), id, side, req.Title, req.Content, req.Author, req.Sources)
	if err != nil {
		if errors.Is(err, store.ErrSideBalance) {
			writeError(w, http.StatusBadRequest, "the other side needs more arguments before this side can grow")
			return
		}
		s.internalError(w, "create argument", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"argument_id": argID})
}

func (s *Server) handleListArguments(w http.ResponseWriter, r *http.Request) {
	s.listArguments(w, r, s.store.ListArguments)
}

func (s *Server) handleVerifiedArguments(w http.ResponseWriter, r *http.Request) {
	s.listArguments(w, r, s.store.ListArgumentsByValidity)
}

func (s *Server) listArguments(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, topicID int64, side model.Side) ([]model.Argument, error)) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	side := model.Side(strings.ToLower(r.URL.Query().Get("side")))
	if side != "" && !side.Valid() {
		writeError(w, http.StatusBadRequest, `side must be "pro" or "con"`)
		return
	}
	if _, err := s.store.GetTopic(r.Context(), id); err != nil {
		s.storeError(w, "get topic", err)
		return
	}
	args, err := list(r.Context(), id, side)
	if err != nil {
		s.internalError(w, "list arguments", err)
		return
	}
	if args == nil {
		args = []model.Argument{}
	}
	writeJSON(w, http.StatusOK, args)
}

func (s *Server) handleUpvote(w http.ResponseWriter, r *http.Request) {
	s.vote(w, r, s.store.UpvoteArgument)
}

func (s *Server) handleDownvote(w http.ResponseWriter, r *http.Request) {
	s.vote(w, r, s.store.DownvoteArgument)
}

func (s *Server) vote(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, id int64) (int, error)) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	votes, err := adjust(r.Context(), id)
	if err != nil {
		s.storeError(w, "vote", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"votes": votes})
}

func (s *Server) handleVerifyArgument(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	arg, err := s.store.GetArgument(r.Context(), id)
	if err != nil {
		s.storeError(w, "get argument", err)
		return
	}
	topic, err := s.store.GetTopic(r.Context(), arg.TopicID)
	if err != nil {
		s.storeError(w, "get topic", err)
		return
	}

	verdict, err := s.verifier.VerifyArgument(r.Context(), arg.Title, arg.Content, topic.Question)
	if err != nil {
		s.logger.Printf("verify argument %d: %v", id, err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("verification failed: %v", err))
		return
	}
	if err := s.store.UpdateArgumentValidity(r.Context(), id, verdict); err != nil {
		s.storeError(w, "persist verdict", err)
		return
	}
	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleVerifyAll(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	topic, err := s.store.GetTopic(r.Context(), id)
	if err != nil {
		s.storeError(w, "get topic", err)
		return
	}
	args, err := s.store.ListArguments(r.Context(), id, "")
	if err != nil {
		s.internalError(w, "list arguments", err)
		return
	}
	if len(args) == 0 {
		writeError(w, http.StatusBadRequest, "topic has no arguments to verify")
		return
	}

	results := s.batch.VerifyAll(r.Context(), topic.Question, args)

	resp := verifyAllResponse{Total: len(results), Results: make([]verifyAllResult, 0, len(results))}
	for _, res := range results {
		out := verifyAllResult{ArgumentID: res.ArgumentID, Title: res.Title}
		if res.Err != nil {
			out.Status = "failed"
			out.Error = res.Err.Error()
			resp.Failed++
			resp.Results = append(resp.Results, out)
			continue
		}
		if err := s.store.UpdateArgumentValidity(r.Context(), res.ArgumentID, res.Verdict); err != nil {
			out.Status = "failed"
			out.Error = fmt.Sprintf("persist verdict: %v", err)
			resp.Failed++
			resp.Results = append(resp.Results, out)
			continue
		}
		score := res.Verdict.ValidityScore
		out.Status = "verified"
		out.ValidityScore = &score
		resp.Verified++
		resp.Results = append(resp.Results, out)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.internalError(w, op, err)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal error")
}
