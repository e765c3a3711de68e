package report

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trialdata/cdiscpipe/internal/domain/adam"
	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/metadata"
	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
)

// Handler serves the derived artifacts read-only: dataset listings, the
// demographic summary, the define table, and the HTML report.
type Handler struct {
	raw  cdash.Repository
	dm   sdtm.Repository
	adsl adam.Repository
}

// NewHandler creates a report handler over the three stage repositories.
func NewHandler(raw cdash.Repository, dm sdtm.Repository, adsl adam.Repository) *Handler {
	return &Handler{raw: raw, dm: dm, adsl: adsl}
}

// RegisterRoutes registers the read-only artifact API.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/datasets", h.ListDatasets)
	api.GET("/datasets/:name", h.GetDataset)
	api.GET("/summary", h.GetSummary)
	api.GET("/define", h.GetDefine)
}

// RegisterHTML registers the human-readable report page at the root.
func (h *Handler) RegisterHTML(e *echo.Echo) {
	e.GET("/report", h.GetReportHTML)
}

type datasetInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// ListDatasets returns the three stage datasets and their row counts.
func (h *Handler) ListDatasets(c echo.Context) error {
	ctx := c.Request().Context()
	rawN, err := h.raw.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	dmN, err := h.dm.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	adslN, err := h.adsl.Count(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, []datasetInfo{
		{Name: "cdash", Rows: rawN},
		{Name: "dm", Rows: dmN},
		{Name: "adsl", Rows: adslN},
	})
}

// GetDataset returns one dataset's records with limit/offset paging.
func (h *Handler) GetDataset(c echo.Context) error {
	ctx := c.Request().Context()
	limit, offset := paging(c)

	switch c.Param("name") {
	case "cdash":
		records, err := h.raw.List(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, page(records, limit, offset))
	case "dm":
		records, err := h.dm.List(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, page(records, limit, offset))
	case "adsl":
		records, err := h.adsl.List(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, page(records, limit, offset))
	default:
		return echo.NewHTTPError(http.StatusNotFound, "dataset not found")
	}
}

// GetSummary returns the demographic summary as JSON.
func (h *Handler) GetSummary(c echo.Context) error {
	records, err := h.adsl.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, Build(records))
}

// GetDefine returns the variable-description table.
func (h *Handler) GetDefine(c echo.Context) error {
	return c.JSON(http.StatusOK, metadata.Variables())
}

// GetReportHTML renders the HTML report without figures (figures live on
// disk in the output directory; serve mode renders tables only).
func (h *Handler) GetReportHTML(c echo.Context) error {
	records, err := h.adsl.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return WriteHTML(c.Response(), Build(records), nil)
}

func paging(c echo.Context) (limit, offset int) {
	limit, offset = 50, 0
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 1000 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

type pageResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func page[T any](items []T, limit, offset int) pageResponse[T] {
	resp := pageResponse[T]{Total: len(items), Limit: limit, Offset: offset}
	if offset < len(items) {
		end := offset + limit
		if end > len(items) {
			end = len(items)
		}
		resp.Items = items[offset:end]
	}
	if resp.Items == nil {
		resp.Items = []T{}
	}
	return resp
}
