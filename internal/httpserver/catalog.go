package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/triskelion9/justdjangoecomm/internal/logging"
	"github.com/triskelion9/justdjangoecomm/internal/models"
	"github.com/triskelion9/justdjangoecomm/internal/service"
	"github.com/triskelion9/justdjangoecomm/internal/transport"
	"github.com/triskelion9/justdjangoecomm/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	offset, limit := util.Calculate(page, size)

	items, err := h.Svc.ListItems(ctx, limit, offset)
	if err != nil {
		l.Error("list_items_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get")

	item, err := h.Svc.GetItem(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("get_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHTTP) SearchItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q required")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchItems(ctx, query, from, limit)
	if err != nil {
		l.Error("search_items_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search unavailable")
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Items: items})
}

func (h *CatalogHTTP) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create")

	var item models.Item
	if err := c.Bind(&item); err != nil {
		l.Warn("create_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.CreateItem(ctx, &item); err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("create_item_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("create_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("create_item_success", "slug", item.Slug)
	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update")

	item, err := h.Svc.GetItem(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("update_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	var patch models.Item
	if err := c.Bind(&patch); err != nil {
		l.Warn("update_item_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	patch.ID = item.ID
	patch.Slug = item.Slug
	if err := h.Svc.UpdateItem(ctx, &patch); err != nil {
		l.Error("update_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("update_item_success", "slug", item.Slug)
	return c.JSON(http.StatusOK, patch)
}

func (h *CatalogHTTP) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete")

	if err := h.Svc.DeleteItem(ctx, c.Param("slug")); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "item not found")
		}
		l.Error("delete_item_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("delete_item_success", "slug", c.Param("slug"))
	return c.NoContent(http.StatusNoContent)
}
