package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"dossier-llm/internal/domain"
	"dossier-llm/internal/evidence"
	"dossier-llm/internal/export"
	"dossier-llm/internal/service"
)

// SubjectHandler mantiene dependencias para los endpoints de sujetos.
type SubjectHandler struct {
	logger   *zap.Logger
	session  *service.SessionService
	analysis *service.AnalysisService
}

func NewSubjectHandler(logger *zap.Logger, session *service.SessionService, analysis *service.AnalysisService) *SubjectHandler {
	return &SubjectHandler{
		logger:   logger,
		session:  session,
		analysis: analysis,
	}
}

// ListSubjects maneja GET /subjects: el roster en orden de insercion mas el
// id activo.
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	store := h.session.Snapshot()
	profiles := make([]domain.Profile, 0, len(store.Order))
	for _, id := range store.Order {
		profiles = append(profiles, store.Profiles[id])
	}
	c.JSON(http.StatusOK, gin.H{
		"active_id": store.ActiveID,
		"profiles":  profiles,
	})
}

// CreateSubject maneja POST /subjects: crea un perfil por defecto y lo activa.
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	id, err := h.session.Create(c.Request.Context())
	if err != nil {
		h.logger.Error("create subject failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create subject"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetSubject maneja GET /subjects/:id. Un id invalido devuelve un perfil por
// defecto renderizable, no un error duro; ese perfil no queda persistido.
func (h *SubjectHandler) GetSubject(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profile": h.session.RenderableProfile(c.Param("id"))})
}

// ActivateSubject maneja POST /subjects/:id/activate.
func (h *SubjectHandler) ActivateSubject(c *gin.Context) {
	if err := h.session.Switch(c.Request.Context(), c.Param("id")); err != nil {
		h.logger.Error("switch subject failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not switch subject"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active_id": c.Param("id")})
}

// EditSubject maneja PATCH /subjects/:id con ediciones directas de identidad.
func (h *SubjectHandler) EditSubject(c *gin.Context) {
	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		DateOfBirth *string `json:"date_of_birth"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.session.EditIdentity(c.Request.Context(), c.Param("id"), req.FirstName, req.LastName, req.DateOfBirth)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
			return
		}
		h.logger.Error("edit subject failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not edit subject"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// DeleteSubject maneja DELETE /subjects/:id. Solo procede con intencion
// confirmada (?confirm=true); la confirmacion visual es problema de la UI.
func (h *SubjectHandler) DeleteSubject(c *gin.Context) {
	confirmed := c.Query("confirm") == "true"
	err := h.session.Delete(c.Request.Context(), c.Param("id"), confirmed)
	switch {
	case errors.Is(err, domain.ErrNotConfirmed):
		c.JSON(http.StatusBadRequest, gin.H{"error": "deletion requires confirm=true"})
	case errors.Is(err, domain.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
	case err != nil:
		h.logger.Error("delete subject failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete subject"})
	default:
		c.JSON(http.StatusOK, gin.H{"active_id": h.session.Snapshot().ActiveID})
	}
}

// AnalyzeEvidence maneja POST /subjects/:id/analyze: multipart con files[] y
// un campo context opcional. El merge solo se aplica si el analisis completo
// salio bien; cualquier fallo deja el perfil intacto y sale como un unico
// error visible.
func (h *SubjectHandler) AnalyzeEvidence(c *gin.Context) {
	id := c.Param("id")
	current, ok := h.session.Profile(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	batch, err := batchFromForm(form.File["files"], c.PostForm("recording") == "true")
	if err != nil {
		h.logger.Warn("reading evidence failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded files"})
		return
	}
	if len(batch.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no evidence files submitted"})
		return
	}

	delta, err := h.analysis.Analyze(c.Request.Context(), &current, batch, c.PostForm("context"))
	if err != nil {
		h.logger.Error("analysis failed", zap.Error(err), zap.String("profile_id", id))
		c.JSON(http.StatusBadGateway, gin.H{"error": "analysis failed, profile unchanged"})
		return
	}

	tag := domain.EvidenceTag{MediaType: batch.MediaType(), FileLabel: batch.FileLabel()}
	profile, err := h.session.ApplyDelta(c.Request.Context(), id, delta, tag)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
			return
		}
		h.logger.Error("apply delta failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not persist analysis"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ExportReport maneja GET /subjects/:id/export?format=json|text|html y
// devuelve el reporte como descarga con nombre determinista.
func (h *SubjectHandler) ExportReport(c *gin.Context) {
	profile, ok := h.session.Profile(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "subject not found"})
		return
	}

	format, err := export.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body []byte
	switch format {
	case export.FormatJSON:
		body, err = export.JSON(profile)
	case export.FormatText:
		body = []byte(export.Text(profile))
	case export.FormatHTML:
		var doc string
		doc, err = export.HTML(profile)
		body = []byte(doc)
	}
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not render report"})
		return
	}

	filename := export.FileName(profile, format, time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, format.ContentType(), body)
}

func batchFromForm(files []*multipart.FileHeader, recording bool) (evidence.Batch, error) {
	batch := evidence.Batch{Recording: recording}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return evidence.Batch{}, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return evidence.Batch{}, err
		}
		batch.Items = append(batch.Items, evidence.Item{
			FileName: fh.Filename,
			MIME:     fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return batch, nil
}
