package registry

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trialsafe/adjudicate/pkg/pagination"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/drugs", h.ListDrugs)
	api.GET("/dictionary-events", h.ListEvents)
	api.GET("/dictionary-events/:id", h.GetEvent)
	api.GET("/dictionary-events/:id/relevant-drugs", h.RelevantDrugs)
}

func (h *Handler) ListDrugs(c echo.Context) error {
	drugs, err := h.repo.ListDrugs(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	if drugs == nil {
		drugs = []*Drug{}
	}
	return c.JSON(http.StatusOK, drugs)
}

func (h *Handler) ListEvents(c echo.Context) error {
	pg := pagination.FromContext(c)
	events, total, err := h.repo.ListEvents(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(events, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetEvent(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	event, err := h.repo.GetEvent(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "dictionary event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// RelevantDrugs renders the candidate drug list for a diagnosis template.
// An unknown id is a valid, displayable state: empty list, 200.
func (h *Handler) RelevantDrugs(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	drugs, err := h.repo.RelevantDrugs(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "server error")
	}
	if drugs == nil {
		drugs = []*Drug{}
	}
	return c.JSON(http.StatusOK, drugs)
}
