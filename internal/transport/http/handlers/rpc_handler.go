package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/omarwdev/feedhub/internal/service"
	"github.com/omarwdev/feedhub/internal/transport/http/middleware"
	"github.com/omarwdev/feedhub/pkg/validator"
)

// RPCHandler is the single mutation/read entry point. Operations are named in
// the request body; the bearer header is optional for reads, and write
// operations check the caller's identity themselves inside the service layer.
type RPCHandler struct {
	postService *service.PostService
	userService *service.UserService
}

func NewRPCHandler(postService *service.PostService, userService *service.UserService) *RPCHandler {
	return &RPCHandler{
		postService: postService,
		userService: userService,
	}
}

type rpcRequest struct {
	Op     string          `json:"op"`
	Params json.RawMessage `json:"params"`
}

type rpcResponse struct {
	Data any `json:"data"`
}

func (h *RPCHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	switch req.Op {
	case "createPost":
		h.createPost(w, r, req.Params)
	case "updatePost":
		h.updatePost(w, r, req.Params)
	case "deletePost":
		h.deletePost(w, r, req.Params)
	case "updateStatus":
		h.updateStatus(w, r, req.Params)
	case "posts":
		h.posts(w, r, req.Params)
	case "user":
		h.user(w, r)
	default:
		writeError(w, http.StatusBadRequest, "UNKNOWN_OP", "Unknown operation: "+req.Op)
	}
}

func (h *RPCHandler) createPost(w http.ResponseWriter, r *http.Request, params json.RawMessage) {
	var input service.PostInput
	if err := json.Unmarshal(params, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "Invalid createPost params")
		return
	}

	if errs := validator.ValidatePost(input.Title, input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ident := middleware.GetIdentity(r.Context())
	post, err := h.postService.Create(r.Context(), ident, input)
	if err != nil {
		writePostError(w, "createPost", err)
		return
	}

	writeJSON(w, http.StatusCreated, rpcResponse{Data: post})
}

type updatePostParams struct {
	ID uuid.UUID `json:"id"`
	service.PostInput
}

func (h *RPCHandler) updatePost(w http.ResponseWriter, r *http.Request, params json.RawMessage) {
	var input updatePostParams
	if err := json.Unmarshal(params, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "Invalid updatePost params")
		return
	}

	if errs := validator.ValidatePost(input.Title, input.Content); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ident := middleware.GetIdentity(r.Context())
	post, err := h.postService.Update(r.Context(), ident, input.ID, input.PostInput)
	if err != nil {
		writePostError(w, "updatePost", err)
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{Data: post})
}

type deletePostParams struct {
	ID uuid.UUID `json:"id"`
}

func (h *RPCHandler) deletePost(w http.ResponseWriter, r *http.Request, params json.RawMessage) {
	var input deletePostParams
	if err := json.Unmarshal(params, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "Invalid deletePost params")
		return
	}

	ident := middleware.GetIdentity(r.Context())
	if err := h.postService.Delete(r.Context(), ident, input.ID); err != nil {
		writePostError(w, "deletePost", err)
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{Data: true})
}

type updateStatusParams struct {
	Status string `json:"status"`
}

func (h *RPCHandler) updateStatus(w http.ResponseWriter, r *http.Request, params json.RawMessage) {
	var input updateStatusParams
	if err := json.Unmarshal(params, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "Invalid updateStatus params")
		return
	}

	if errs := validator.ValidateStatus(input.Status); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	ident := middleware.GetIdentity(r.Context())
	user, err := h.userService.UpdateStatus(r.Context(), ident, input.Status)
	if err != nil {
		writePostError(w, "updateStatus", err)
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{Data: user})
}

type postsParams struct {
	Page int `json:"page"`
}

func (h *RPCHandler) posts(w http.ResponseWriter, r *http.Request, params json.RawMessage) {
	input := postsParams{Page: 1}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "Invalid posts params")
			return
		}
	}

	feed, err := h.postService.Feed(r.Context(), input.Page)
	if err != nil {
		log.Printf("ERROR posts: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{Data: feed})
}

func (h *RPCHandler) user(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	user, err := h.userService.Get(r.Context(), ident)
	if err != nil {
		writePostError(w, "user", err)
		return
	}

	writeJSON(w, http.StatusOK, rpcResponse{Data: user})
}

func writePostError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Not authenticated")
	case errors.Is(err, service.ErrPostNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrNotPostOwner):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Not authorized")
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrStatusMissing):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Printf("ERROR %s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
