package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/peopleops/docflow/internal/authz"
	"github.com/peopleops/docflow/internal/workflow"
	"github.com/peopleops/docflow/internal/workflow/repository"
	"github.com/peopleops/docflow/internal/workflow/service"
)

// Handler exposes the workflow engine over HTTP. All routes expect the auth
// middleware to have placed verified claims in the gin context.
type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/document-approvals")
	g.POST("", h.submit)
	g.GET("", h.list)
	g.GET("/stats", h.stats)
	g.GET("/my", h.my)
	g.GET("/assigned", h.assigned)
	g.POST("/assign", h.assign)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.edit)
	g.DELETE("/:id", h.del)
	g.PUT("/:id/submit", h.promoteDraft)
	g.PUT("/:id/review", h.startReview)
	g.PUT("/:id/approve", h.approve)
	g.PUT("/:id/reject", h.reject)
	g.PUT("/:id/request-revision", h.requestRevision)
	g.PUT("/:id/resubmit", h.resubmit)
	g.PUT("/:id/acknowledge", h.acknowledge)
	g.POST("/:id/comment", h.comment)
}

// RegisterTemplateAssign hangs the fan-out route off the template surface; the
// template CRUD routes live in the template package.
func (h *Handler) RegisterTemplateAssign(r gin.IRouter) {
	r.POST("/document-templates/:id/assign", h.expandTemplate)
}

func actorFrom(c *gin.Context) authz.Actor {
	raw, ok := c.Get("claims")
	if !ok {
		return authz.Actor{}
	}
	claims, ok := raw.(map[string]interface{})
	if !ok {
		return authz.Actor{}
	}
	return authz.FromClaims(claims)
}

// writeError maps engine error kinds onto HTTP statuses. Concurrency losses
// and invalid transitions are both 409, distinguished by the code field.
func writeError(c *gin.Context, err error) {
	var we *workflow.Error
	if !errors.As(err, &we) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": we.Reason, "code": string(we.Kind)})
}

func (h *Handler) submit(c *gin.Context) {
	var p service.SubmitPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.Submit(c.Request.Context(), actorFrom(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) list(c *gin.Context) {
	f := repository.Filter{}
	if t := c.Query("track"); t != "" {
		f.Track = workflow.Track(t)
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			f.Statuses = append(f.Statuses, workflow.Status(raw))
		}
	}
	recs, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) my(c *gin.Context) {
	recs, err := h.svc.My(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) assigned(c *gin.Context) {
	recs, err := h.svc.AssignedTo(c.Request.Context(), actorFrom(c).ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) get(c *gin.Context) {
	rec, trail, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": rec, "trail": trail})
}

func (h *Handler) edit(c *gin.Context) {
	var p service.EditPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.Edit(c.Request.Context(), c.Param("id"), actorFrom(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) del(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) promoteDraft(c *gin.Context) {
	rec, err := h.svc.SubmitDraft(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) startReview(c *gin.Context) {
	rec, err := h.svc.StartReview(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) approve(c *gin.Context) {
	rec, err := h.svc.Approve(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) reject(c *gin.Context) {
	var req struct {
		RejectionReason string `json:"rejectionReason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.Reject(c.Request.Context(), c.Param("id"), actorFrom(c), req.RejectionReason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) requestRevision(c *gin.Context) {
	var req struct {
		RevisionNotes string `json:"revisionNotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.RequestRevision(c.Request.Context(), c.Param("id"), actorFrom(c), req.RevisionNotes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) resubmit(c *gin.Context) {
	var p service.ResubmitPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.svc.Resubmit(c.Request.Context(), c.Param("id"), actorFrom(c), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) acknowledge(c *gin.Context) {
	rec, err := h.svc.Acknowledge(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) comment(c *gin.Context) {
	var req struct {
		Text       string `json:"text"`
		IsInternal bool   `json:"isInternal"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), actorFrom(c), req.Text, req.IsInternal)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

type assignRequest struct {
	EmployeeIDs []string `json:"employeeIds"`
	service.AssignPayload
}

// assignResponse flattens the per-recipient outcome for the wire.
type assignResult struct {
	AssigneeID string                   `json:"assigneeId"`
	Record     *workflow.DocumentRecord `json:"record,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

func toAssignResults(results []service.AssignResult) []assignResult {
	out := make([]assignResult, len(results))
	for i, r := range results {
		out[i] = assignResult{AssigneeID: r.AssigneeID, Record: r.Record}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}

func (h *Handler) assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := h.svc.AssignBulk(c.Request.Context(), actorFrom(c), req.EmployeeIDs, req.AssignPayload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"results": toAssignResults(results)})
}

func (h *Handler) expandTemplate(c *gin.Context) {
	var req struct {
		EmployeeIDs []string `json:"employeeIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	results, err := h.svc.ExpandTemplate(c.Request.Context(), actorFrom(c), c.Param("id"), req.EmployeeIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"results": toAssignResults(results)})
}
