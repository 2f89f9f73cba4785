package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/salonbook/salon-api/internal/core/domain"
	"github.com/salonbook/salon-api/internal/core/ports"
)

// proofField is the multipart field carrying the payment proof file.
const proofField = "paymentProof"

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	service ports.ReservationService
	proofs  ports.ProofStorage
}

func NewReservationHandler(service ports.ReservationService, proofs ports.ProofStorage) *ReservationHandler {
	return &ReservationHandler{service: service, proofs: proofs}
}

// Create handles POST /api/reservations.
//
// @Summary      Book a slot
// @Description  Accepts JSON or multipart/form-data. A multipart request may attach the payment proof in the "paymentProof" file field.
// @Tags         reservations
// @Accept       json,mpfd
// @Produce      json
// @Security     TokenAuth
// @Param        body          body      createReservationRequest  true   "Reservation details"
// @Param        paymentProof  formData  file                      false  "Proof of payment"
// @Success      201           {object}  createReservationResponse
// @Failure      400           {object}  errorResponse
// @Failure      401           {object}  errorResponse
// @Failure      409           {object}  errorResponse
// @Failure      500           {object}  errorResponse
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	proof, err := h.saveProof(c)
	if err != nil {
		return err
	}

	r, err := h.service.Create(c.Request().Context(), toCreateInput(req, identity.ID, proof))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createReservationResponse{
		Message: "reservation created successfully",
		Booking: toReservationResponse(r),
	})
}

// saveProof stores the optional proof file and returns its stored name, or ""
// when the request carries none.
func (h *ReservationHandler) saveProof(c echo.Context) (string, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return "", nil
	}

	fh, err := c.FormFile(proofField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", domain.Invalid("invalid %s upload", proofField)
	}
	if h.proofs == nil {
		return "", fmt.Errorf("payment proof upload: no storage configured")
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open payment proof: %w", err)
	}
	defer f.Close()

	return h.proofs.Save(c.Request().Context(), fh.Filename, fh.Header.Get(echo.HeaderContentType), f)
}

// CheckAvailability handles POST /api/reservations/check-availability.
//
// @Summary      Check whether a slot has room
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        body  body      checkAvailabilityRequest  true  "Slot"
// @Success      200   {object}  availabilityResponse
// @Failure      400   {object}  availabilityResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /reservations/check-availability [post]
func (h *ReservationHandler) CheckAvailability(c echo.Context) error {
	var req checkAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}
	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		return c.JSON(http.StatusBadRequest, availabilityResponse{
			Available: false,
			Message:   "date and time are required",
		})
	}

	a, err := h.service.CheckAvailability(c.Request().Context(), req.Date, req.Time)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(a))
}

// ListMine handles GET /api/reservations/user.
//
// @Summary      List the caller's reservations
// @Description  Ordered by date then time, most recent first.
// @Tags         reservations
// @Produce      json
// @Security     TokenAuth
// @Success      200  {array}   reservationResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /reservations/user [get]
func (h *ReservationHandler) ListMine(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	list, err := h.service.ListForUser(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationList(list))
}

// Cancel handles DELETE /api/reservations/:id.
//
// @Summary      Cancel one of the caller's reservations
// @Tags         reservations
// @Produce      json
// @Security     TokenAuth
// @Param        id   path      string  true  "Reservation id"
// @Success      200  {object}  reservationMessageResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	r, err := h.service.Cancel(c.Request().Context(), c.Param("id"), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservationMessageResponse{
		Message:     "reservation cancelled successfully",
		Reservation: toReservationResponse(r),
	})
}

// ListAll handles GET /api/reservations/admin.
//
// @Summary      List every reservation with its owner
// @Description  Most recently created first.
// @Tags         admin
// @Produce      json
// @Security     TokenAuth
// @Success      200  {array}   adminReservationResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /reservations/admin [get]
func (h *ReservationHandler) ListAll(c echo.Context) error {
	list, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAdminReservationList(list))
}

// UpdateStatus handles PUT /api/reservations/:id/status.
//
// @Summary      Set the status of a reservation
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     TokenAuth
// @Param        id    path      string               true  "Reservation id"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  reservationMessageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /reservations/{id}/status [put]
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.Invalid("invalid payload")
	}

	r, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status, identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reservationMessageResponse{
		Message:     fmt.Sprintf("reservation status updated to '%s'", r.Status),
		Reservation: toReservationResponse(r),
	})
}
