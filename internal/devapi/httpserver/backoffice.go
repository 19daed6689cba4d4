package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_backoffice/internal/devapi/service"
	"github.com/Skotchmaster/restaurant_backoffice/internal/util"
)

type BackofficeHTTP struct {
	Svc *service.BackofficeService
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, echo.Map{"detail": "Not found."})
	}
	return uint(id), nil
}

// ListReservations returns every reservation, newest first. The page and
// size query parameters narrow it down to one page.
func (h *BackofficeHTTP) ListReservations(c echo.Context) error {
	var offset, limit int
	if c.QueryParam("page") != "" || c.QueryParam("size") != "" {
		offset, limit = util.Calculate(
			util.ParseIntDefault(c.QueryParam("page"), 1),
			util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
		)
	}

	items, err := h.Svc.ListReservations(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BackofficeHTTP) GetReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	res, err := h.Svc.Reservation(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BackofficeHTTP) CreateReservation(c echo.Context) error {
	var in service.ReservationInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid body")
	}
	res, err := h.Svc.CreateReservation(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *BackofficeHTTP) UpdateReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in service.ReservationInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid body")
	}
	res, err := h.Svc.UpdateReservation(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BackofficeHTTP) DeleteReservation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteReservation(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BackofficeHTTP) ListSchedules(c echo.Context) error {
	items, err := h.Svc.ListSchedules(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *BackofficeHTTP) GetSchedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sch, err := h.Svc.Schedule(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *BackofficeHTTP) CreateSchedule(c echo.Context) error {
	var in service.ScheduleInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid body")
	}
	sch, err := h.Svc.CreateSchedule(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, sch)
}

func (h *BackofficeHTTP) UpdateSchedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in service.ScheduleInput
	if err := c.Bind(&in); err != nil {
		return badRequest("invalid body")
	}
	sch, err := h.Svc.UpdateSchedule(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sch)
}

func (h *BackofficeHTTP) DeleteSchedule(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteSchedule(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
