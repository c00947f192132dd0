package sessions

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/backend"
	"resume-builder/internal/editor"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/normalize"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxBodySize   = 2 << 20
)

// Resumes lists and deletes the caller's resumes on the backend.
type Resumes interface {
	ListResumes(ctx context.Context) ([]backend.Summary, error)
	DeleteResume(ctx context.Context, id string) error
}

// Handler wires HTTP handlers to the editor service.
type Handler struct {
	Svc     *editor.Service
	Resumes Resumes
}

// NewHandler constructs a Handler.
func NewHandler(svc *editor.Service, resumes Resumes) *Handler {
	return &Handler{Svc: svc, Resumes: resumes}
}

// RegisterRoutes attaches editor routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/normalize", h.normalize)
	rg.POST("/render/:template", h.render)
	rg.POST("/export/:format", h.exportStateless)

	rg.POST("/sessions", h.create)
	rg.POST("/sessions/upload", h.upload)
	rg.POST("/sessions/generate", h.generate)

	s := rg.Group("/sessions/:id", h.tagSession)
	s.GET("", h.get)
	s.DELETE("", h.delete)
	s.PUT("/template", h.selectTemplate)
	s.PATCH("/personal", h.updatePersonal)
	s.PUT("/summary", h.updateSummary)
	s.PUT("/sections/:section", h.replaceSection)
	s.POST("/sections/:section", h.addItem)
	s.PATCH("/sections/:section/:index", h.updateItem)
	s.DELETE("/sections/:section/:index", h.removeItem)
	s.POST("/experience/:index/responsibilities", h.addResponsibility)
	s.PATCH("/experience/:index/responsibilities/:resp", h.updateResponsibility)
	s.DELETE("/experience/:index/responsibilities/:resp", h.removeResponsibility)
	s.GET("/preview", h.preview)
	s.GET("/preview/ws", h.previewSocket)
	s.GET("/validation", h.validation)
	s.POST("/save", h.save)
	s.GET("/export/:format", h.exportSession)
	s.GET("/exports", h.history)
	s.GET("/exports/:exportId", h.downloadExport)

	rg.GET("/resumes", h.listResumes)
	rg.DELETE("/resumes/:id", h.deleteResume)
}

func (h *Handler) tagSession(c *gin.Context) {
	c.Set(middleware.SessionIDKey, c.Param("id"))
	c.Next()
}

func (h *Handler) normalize(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	respond.OK(c, normalize.NormalizeJSON(raw).WithDefaults())
}

func (h *Handler) render(c *gin.Context) {
	t, err := model.ParseTemplate(c.Param("template"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.TemplateKey, t.String())
	raw, ok := readBody(c)
	if !ok {
		return
	}
	tree, err := layout.Render(normalize.NormalizeJSON(raw), t)
	if err != nil {
		writeError(c, err)
		return
	}
	writeTree(c, tree, c.DefaultQuery("format", "html"))
}

func (h *Handler) exportStateless(c *gin.Context) {
	format, err := editor.ParseFormat(c.Param("format"))
	if err != nil {
		writeError(c, err)
		return
	}
	var t model.Template
	if raw := c.Query("template"); raw != "" {
		if t, err = model.ParseTemplate(raw); err != nil {
			writeError(c, err)
			return
		}
	}
	c.Set(middleware.TemplateKey, t.String())
	c.Set(middleware.ExportFormatKey, format)

	raw, ok := readBody(c)
	if !ok {
		return
	}
	out, err := h.Svc.Export(c.Request.Context(), normalize.NormalizeJSON(raw), t, format)
	if err != nil {
		writeError(c, err)
		return
	}
	writeDownload(c, out)
}

// readBody reads at most maxBodySize bytes of the request body.
func readBody(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if tooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds 2MB", nil)
			return nil, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read body", nil)
		return nil, false
	}
	return raw, true
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *Handler) create(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	t, ok := bindTemplate(c, req.Template)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	var (
		session editor.Session
		err     error
	)
	switch {
	case len(req.Resume) > 0 && string(req.Resume) != "null":
		session, err = h.Svc.CreateFromPayload(ctx, req.Resume, t)
	case strings.TrimSpace(req.ResumeID) != "":
		session, err = h.Svc.CreateFromResume(ctx, strings.TrimSpace(req.ResumeID), t)
	default:
		session, err = h.Svc.Create(ctx, model.Empty(), t)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.SessionIDKey, session.ID)
	respond.Created(c, toResponse(session))
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if tooLarge(err) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds 10MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	t, ok := bindTemplate(c, c.PostForm("template"))
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	session, err := h.Svc.CreateFromUpload(c.Request.Context(), fileName, fileHeader.Header.Get("Content-Type"), data, t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.SessionIDKey, session.ID)
	respond.Created(c, toResponse(session))
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jobDescription is required", nil)
		return
	}
	t, ok := bindTemplate(c, req.Template)
	if !ok {
		return
	}
	session, err := h.Svc.CreateFromJob(c.Request.Context(), req.JobDescription, strings.TrimSpace(req.ResumeID), t)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.SessionIDKey, session.ID)
	respond.Created(c, toResponse(session))
}

func (h *Handler) get(c *gin.Context) {
	session, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(session))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) selectTemplate(c *gin.Context) {
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "template is required", nil)
		return
	}
	t, ok := bindTemplate(c, req.Template)
	if !ok {
		return
	}
	h.respondSession(c)(h.Svc.SelectTemplate(c.Request.Context(), c.Param("id"), t))
}

func (h *Handler) updatePersonal(c *gin.Context) {
	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "field is required", nil)
		return
	}
	h.respondSession(c)(h.Svc.UpdatePersonalField(c.Request.Context(), c.Param("id"), req.Field, req.Value))
}

func (h *Handler) updateSummary(c *gin.Context) {
	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.respondSession(c)(h.Svc.UpdateSummary(c.Request.Context(), c.Param("id"), req.Summary))
}

func (h *Handler) replaceSection(c *gin.Context) {
	section, ok := bindSection(c)
	if !ok {
		return
	}
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "items must be an array", nil)
		return
	}
	if req.Items == nil {
		req.Items = []any{}
	}
	h.respondSession(c)(h.Svc.UpdateSectionArray(c.Request.Context(), c.Param("id"), section, req.Items))
}

func (h *Handler) addItem(c *gin.Context) {
	section, ok := bindSection(c)
	if !ok {
		return
	}
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.respondSession(c)(h.Svc.AddItem(c.Request.Context(), c.Param("id"), section, req.Item))
}

func (h *Handler) updateItem(c *gin.Context) {
	section, ok := bindSection(c)
	if !ok {
		return
	}
	index, ok := bindIndex(c, "index")
	if !ok {
		return
	}
	var req itemFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.respondSession(c)(h.Svc.UpdateItemField(c.Request.Context(), c.Param("id"), section, index, req.Field, req.Value))
}

func (h *Handler) removeItem(c *gin.Context) {
	section, ok := bindSection(c)
	if !ok {
		return
	}
	index, ok := bindIndex(c, "index")
	if !ok {
		return
	}
	h.respondSession(c)(h.Svc.RemoveItem(c.Request.Context(), c.Param("id"), section, index))
}

func (h *Handler) addResponsibility(c *gin.Context) {
	exp, ok := bindIndex(c, "index")
	if !ok {
		return
	}
	var req responsibilityRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	h.respondSession(c)(h.Svc.AddResponsibility(c.Request.Context(), c.Param("id"), exp, req.Text))
}

func (h *Handler) updateResponsibility(c *gin.Context) {
	exp, ok := bindIndex(c, "index")
	if !ok {
		return
	}
	i, ok := bindIndex(c, "resp")
	if !ok {
		return
	}
	var req responsibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.respondSession(c)(h.Svc.UpdateResponsibility(c.Request.Context(), c.Param("id"), exp, i, req.Text))
}

func (h *Handler) removeResponsibility(c *gin.Context) {
	exp, ok := bindIndex(c, "index")
	if !ok {
		return
	}
	i, ok := bindIndex(c, "resp")
	if !ok {
		return
	}
	h.respondSession(c)(h.Svc.RemoveResponsibility(c.Request.Context(), c.Param("id"), exp, i))
}

func (h *Handler) preview(c *gin.Context) {
	session, tree, err := h.Svc.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.TemplateKey, session.Template.String())
	c.Header("X-Session-Revision", strconv.FormatInt(session.Revision, 10))
	writeTree(c, tree, c.DefaultQuery("format", "html"))
}

func (h *Handler) validation(c *gin.Context) {
	err := h.Svc.Validate(c.Request.Context(), c.Param("id"))
	var verr *editor.ValidationError
	switch {
	case err == nil:
		respond.OK(c, validationResponse{Valid: true, Fields: map[string]string{}})
	case errors.As(err, &verr):
		respond.OK(c, validationResponse{Valid: false, Fields: verr.Fields})
	default:
		writeError(c, err)
	}
}

func (h *Handler) save(c *gin.Context) {
	result, err := h.Svc.SaveAsMaster(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, result)
}

func (h *Handler) exportSession(c *gin.Context) {
	c.Set(middleware.ExportFormatKey, strings.ToLower(c.Param("format")))
	out, err := h.Svc.ExportSession(c.Request.Context(), c.Param("id"), c.Param("format"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeDownload(c, out)
}

func (h *Handler) history(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	records, err := h.Svc.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, records)
}

func (h *Handler) downloadExport(c *gin.Context) {
	out, err := h.Svc.OpenExport(c.Request.Context(), c.Param("id"), c.Param("exportId"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeDownload(c, out)
}

func (h *Handler) listResumes(c *gin.Context) {
	if h.Resumes == nil {
		writeError(c, backend.ErrNotConfigured)
		return
	}
	items, err := h.Resumes.ListResumes(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]resumeSummary, 0, len(items))
	for _, item := range items {
		doc := normalize.NormalizeJSON(item.Raw).WithDefaults()
		name := item.Name
		if name == "" {
			name = doc.PersonalInformation.Name
		}
		profession := item.Profession
		if profession == "" {
			profession = doc.PersonalInformation.Profession
		}
		resp = append(resp, resumeSummary{
			ID:         string(item.ID),
			Name:       name,
			Profession: profession,
			IsMaster:   item.IsMaster,
			UpdatedAt:  item.UpdatedAt,
			Resume:     doc,
		})
	}
	respond.OK(c, resp)
}

func (h *Handler) deleteResume(c *gin.Context) {
	if h.Resumes == nil {
		writeError(c, backend.ErrNotConfigured)
		return
	}
	if err := h.Resumes.DeleteResume(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

// respondSession adapts a service result to the session response.
func (h *Handler) respondSession(c *gin.Context) func(editor.Session, error) {
	return func(session editor.Session, err error) {
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(middleware.TemplateKey, session.Template.String())
		respond.OK(c, toResponse(session))
	}
}

func bindTemplate(c *gin.Context, raw string) (model.Template, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", true
	}
	t, err := model.ParseTemplate(raw)
	if err != nil {
		writeError(c, err)
		return "", false
	}
	c.Set(middleware.TemplateKey, t.String())
	return t, true
}

func bindSection(c *gin.Context) (model.Section, bool) {
	section, err := model.ParseSection(c.Param("section"))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return section, true
}

func bindIndex(c *gin.Context, param string) (int, bool) {
	index, err := strconv.Atoi(c.Param(param))
	if err != nil || index < 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", param+" must be a non-negative integer", nil)
		return 0, false
	}
	return index, true
}

func writeTree(c *gin.Context, tree *layout.Tree, format string) {
	switch strings.ToLower(format) {
	case "tree":
		respond.OK(c, tree)
	case "page":
		page, err := layout.RenderPage(tree)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "html":
		fragment, err := layout.RenderHTML(tree)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fragment))
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "format must be html, tree or page", nil)
	}
}

func writeDownload(c *gin.Context, out editor.Export) {
	respond.Attachment(c, out.FileName, out.ContentType, out.Data)
}

