package api

import (
	"fmt"
	"net/http"
	"strings"

	clinterrors "github.com/NVIDIA/clint/pkg/errors"
	"github.com/NVIDIA/clint/pkg/model"
	"github.com/NVIDIA/clint/pkg/serializer"
	"github.com/NVIDIA/clint/pkg/server"
)

// TreeHandler serves a command tree read-only.
type TreeHandler struct {
	tree     *model.CommandNode
	keywords *model.Keywords
	maxAge   int
}

// NewTreeHandler creates a handler for tree. Responses are cacheable for
// maxAge seconds.
func NewTreeHandler(tree *model.CommandNode, maxAge int) *TreeHandler {
	return &TreeHandler{
		tree:     tree,
		keywords: model.ExtractKeywords(tree),
		maxAge:   maxAge,
	}
}

// Routes returns the handler's endpoints keyed by path.
func (h *TreeHandler) Routes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/tree":     h.HandleTree,
		"/v1/command":  h.HandleCommand,
		"/v1/keywords": h.HandleKeywords,
	}
}

// HandleTree handles GET /v1/tree.
func (h *TreeHandler) HandleTree(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	h.respond(w, r, h.tree)
}

// HandleCommand handles GET /v1/command?path=toolA+sub1. The path may be
// given with or without the root program name.
func (h *TreeHandler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}

	path := strings.Join(strings.Fields(r.URL.Query().Get("path")), " ")
	if path == "" {
		server.WriteError(w, r, http.StatusBadRequest, clinterrors.ErrCodeInvalidRequest,
			"query parameter \"path\" is required", false, nil)
		return
	}

	node := h.tree.Find(path)
	if node == nil {
		node = h.tree.Find(model.JoinPath(h.tree.Name, path))
	}
	if node == nil {
		details := map[string]any{"path": path}
		if similar := suggestPaths(h.tree, path, maxSuggestions); len(similar) > 0 {
			details["suggestions"] = similar
		}
		server.WriteErrorFromErr(w, r,
			clinterrors.WrapWithContext(clinterrors.ErrCodeNotFound,
				fmt.Sprintf("no command at path %q", path), nil, details),
			"command lookup failed", nil)
		return
	}

	h.respond(w, r, node)
}

// HandleKeywords handles GET /v1/keywords.
func (h *TreeHandler) HandleKeywords(w http.ResponseWriter, r *http.Request) {
	if !h.allowGet(w, r) {
		return
	}
	h.respond(w, r, h.keywords)
}

func (h *TreeHandler) allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	server.WriteError(w, r, http.StatusMethodNotAllowed, clinterrors.ErrCodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed", r.Method), false, nil)
	return false
}

func (h *TreeHandler) respond(w http.ResponseWriter, r *http.Request, data any) {
	if h.maxAge > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", h.maxAge))
	}
	serializer.Respond(w, serializer.FormatFromRequest(r), http.StatusOK, data)
}
