package appointment

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mzansicare/booking-api/internal/middleware"
	"github.com/mzansicare/booking-api/internal/model"
	"github.com/mzansicare/booking-api/internal/service/appointment"
	"github.com/mzansicare/booking-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.BookAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/slots", h.GetAvailableSlots)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PATCH("/:id", h.UpdateAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
		appointments.POST("/:id/confirm", h.ConfirmAppointment)
		appointments.POST("/:id/complete", h.CompleteAppointment)
		appointments.POST("/:id/no-show", h.MarkNoShow)
		appointments.POST("/:id/reschedule", h.RescheduleAppointment)
	}
}

func (h *Handler) BookAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	apt, err := h.service.BookAppointment(c.Request.Context(), &req, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid appointment ID"}})
		return
	}

	apt, err := h.service.GetAppointment(c.Request.Context(), id, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("clinic_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinic ID"}})
			return
		}
		filters.ClinicID = id
	}
	if v := c.Query("clinician_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinician ID"}})
			return
		}
		filters.ClinicianID = id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid patient ID"}})
			return
		}
		filters.PatientID = id
	}
	if v := c.Query("district"); v != "" {
		filters.District = model.District(v)
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("date_from"); v != "" {
		from, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid date_from"}})
			return
		}
		filters.DateFrom = from
	}
	if v := c.Query("date_to"); v != "" {
		to, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid date_to"}})
			return
		}
		filters.DateTo = to
	}

	appointments, err := h.service.ListAppointments(c.Request.Context(), filters, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid appointment ID"}})
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	apt, err := h.service.UpdateAppointment(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid appointment ID"}})
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	apt, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	h.transition(c, h.service.ConfirmAppointment)
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	h.transition(c, h.service.CompleteAppointment)
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	h.transition(c, h.service.MarkNoShow)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid appointment ID"}})
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": err.Error()}})
		return
	}

	replacement, err := h.service.RescheduleAppointment(c.Request.Context(), id, &req, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, replacement)
}

func (h *Handler) GetAvailableSlots(c *gin.Context) {
	clinicianID, err := uuid.Parse(c.Query("clinician_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid clinician ID"}})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "date is required"}})
		return
	}
	duration := 0
	if v := c.Query("duration_minutes"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid duration"}})
			return
		}
		duration = parsed
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), clinicianID, date, duration)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"date": date, "slots": slots})
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor appointment.Actor) (*model.Appointment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"message": "invalid appointment ID"}})
		return
	}

	apt, err := fn(c.Request.Context(), id, middleware.ActorFromContext(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}
