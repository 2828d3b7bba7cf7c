package clinician

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/service/clinician"
	"github.com/mzansicare/booking-api/pkg/httputil"
)

type Handler struct {
	service *clinician.Service
}

func NewHandler(service *clinician.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinicians := r.Group("/clinicians")
	{
		clinicians.POST("", h.CreateClinician)
		clinicians.GET("", h.ListClinicians)
		clinicians.GET("/:id", h.GetClinician)
		clinicians.PATCH("/:id", h.UpdateClinician)
	}
}

func (h *Handler) CreateClinician(c *gin.Context) {
	var req model.CreateClinicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	created, err := h.service.CreateClinician(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, created)
}

func (h *Handler) GetClinician(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinician ID"}})
		return
	}

	found, err := h.service.GetClinician(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, found)
}

func (h *Handler) UpdateClinician(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinician ID"}})
		return
	}

	var req model.UpdateClinicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	updated, err := h.service.UpdateClinician(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) ListClinicians(c *gin.Context) {
	filters := &model.ClinicianFilters{
		Specialty: model.Specialty(c.Query("specialty")),
		Status:    model.ClinicianStatus(c.Query("status")),
	}
	if v := c.Query("clinic_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinic ID"}})
			return
		}
		filters.ClinicID = id
	}

	clinicians, err := h.service.ListClinicians(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinicians)
}
