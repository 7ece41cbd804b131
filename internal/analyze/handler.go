package analyze

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"radar-backend/internal/llm"
	"radar-backend/internal/usage"
)

// Handler exposes the analyze endpoint.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
}

type fileRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	// Bytes and Data both carry base64 content; clients have shipped
	// either key.
	Bytes string `json:"bytes"`
	Data  string `json:"data"`
}

type analyzeRequest struct {
	InputText string        `json:"inputText"`
	UserID    string        `json:"userId"`
	UserEmail string        `json:"userEmail"`
	Files     []fileRequest `json:"files"`
	JobID     string        `json:"jobId"`
	QueryID   string        `json:"queryId"`
}

// analyze runs one job synchronously. The response envelope always
// carries a literal ok boolean so clients can branch without
// inspecting status codes.
func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if req.InputText == "" || req.UserID == "" || req.UserEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": ErrInvalidRequest.Error()})
		return
	}

	files, err := decodeFiles(req.Files)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	resp, err := h.Svc.Run(c.Request.Context(), Request{
		InputText: req.InputText,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		Files:     files,
		JobID:     req.JobID,
		QueryID:   req.QueryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		case errors.Is(err, usage.ErrLimitReached):
			c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "usage limit reached"})
		default:
			body := gin.H{"ok": false, "error": sanitizeError(err)}
			if resp.JobID != "" {
				body["jobId"] = resp.JobID
			}
			if resp.AnalysisID != "" {
				body["analysisId"] = resp.AnalysisID
			}
			c.JSON(http.StatusInternalServerError, body)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"jobId":      resp.JobID,
		"analysisId": resp.AnalysisID,
		"data":       resp.Data,
	})
}

func decodeFiles(in []fileRequest) ([]llm.File, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]llm.File, 0, len(in))
	for i, f := range in {
		encoded := f.Bytes
		if encoded == "" {
			encoded = f.Data
		}
		if encoded == "" {
			return nil, fmt.Errorf("file %d has no content", i)
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("file %d is not valid base64", i)
		}
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i)
		}
		out = append(out, llm.File{Name: name, MIME: f.Type, Data: data})
	}
	return out, nil
}
