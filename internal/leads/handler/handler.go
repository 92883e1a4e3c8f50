package handler

import (
	"net/http"

	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc       *management.Service
	jobs      ports.ImportJobQueue
	val       *validator.Validator
	maxUpload int64
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
	msgFileRequired     = "file is required"
)

// New creates the leads handler. jobs may be nil, which disables the async
// import routes.
func New(svc *management.Service, jobs ports.ImportJobQueue, val *validator.Validator, maxUpload int64) *Handler {
	return &Handler{svc: svc, jobs: jobs, val: val, maxUpload: maxUpload}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/export", h.ExportCSV)
	rg.POST("/import", h.Import)
	rg.POST("/import/csv", h.ImportCSV)
	if h.jobs != nil {
		rg.POST("/import/jobs", h.SubmitImportJob)
		rg.GET("/import/jobs/:jobId", h.GetImportJob)
	}
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/activities", h.ListActivity)
	rg.POST("/:id/activities", h.AddActivity)
}

func (h *Handler) RegisterScoringRoutes(rg *gin.RouterGroup) {
	rg.GET("/config", h.GetScoringConfig)
	rg.PUT("/config", h.UpdateScoringConfig)
	rg.POST("/rescore", h.Rescore)
	rg.POST("/preview", h.PreviewScore)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	httpkit.OK(c, h.svc.List(c.Request.Context(), req))
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), req, httpkit.GetActor(c).UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, lead)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), id, req, httpkit.GetActor(c).UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id, httpkit.GetActor(c).UserID)) {
		return
	}

	httpkit.NoContent(c)
}

func (h *Handler) Import(c *gin.Context) {
	var req transport.ImportLeadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	result, err := h.svc.Import(c.Request.Context(), req.Leads, req.Source, httpkit.GetActor(c).UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ImportCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgFileRequired, nil)
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", gin.H{"maxBytes": h.maxUpload})
		return
	}

	f, err := file.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer f.Close()

	source := c.PostForm("source")
	if source == "" {
		source = file.Filename
	}

	result, err := h.svc.ImportCSV(c.Request.Context(), f, source, httpkit.GetActor(c).UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) SubmitImportJob(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgFileRequired, nil)
		return
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", gin.H{"maxBytes": h.maxUpload})
		return
	}

	f, err := file.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer f.Close()

	job, err := h.jobs.Submit(c.Request.Context(), ports.ImportJobRequest{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        f,
		ActorID:     httpkit.GetActor(c).UserID,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusAccepted, toImportJobResponse(job))
}

func (h *Handler) GetImportJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("jobId"))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toImportJobResponse(job))
}

func (h *Handler) ListActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	entries, err := h.svc.ListActivity(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, entries)
}

func (h *Handler) AddActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req transport.AddActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if !h.validate(c, req) {
		return
	}

	entry, err := h.svc.AddActivity(c.Request.Context(), id, req, httpkit.GetActor(c).UserID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, entry)
}

func (h *Handler) GetScoringConfig(c *gin.Context) {
	httpkit.OK(c, h.svc.ScoringConfig(c.Request.Context()))
}

func (h *Handler) UpdateScoringConfig(c *gin.Context) {
	var req transport.UpdateScoringConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, msgInvalidRequest, err).WithDetails(err.Error()))
		return
	}
	if !h.validate(c, req) {
		return
	}

	resp, err := h.svc.UpdateScoringConfig(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) Rescore(c *gin.Context) {
	sweep, err := h.svc.Rescore(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, sweep)
}

func (h *Handler) PreviewScore(c *gin.Context) {
	var req transport.PreviewScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindBadRequest, msgInvalidRequest, err).WithDetails(err.Error()))
		return
	}

	resp, err := h.svc.PreviewScore(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.UUID{}, false
	}
	return id, true
}

func toImportJobResponse(job ports.ImportJob) transport.ImportJobResponse {
	return transport.ImportJobResponse{
		JobID:      job.ID,
		Status:     job.Status,
		FileName:   job.FileName,
		Result:     job.Result,
		Error:      job.Error,
		CreatedAt:  job.CreatedAt,
		FinishedAt: job.FinishedAt,
	}
}
