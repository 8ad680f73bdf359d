package httpserver

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/restaurant_pos/internal/domain"
	"github.com/Skotchmaster/restaurant_pos/internal/repo"
	"github.com/Skotchmaster/restaurant_pos/internal/service"
	"github.com/Skotchmaster/restaurant_pos/internal/transport"
	"github.com/Skotchmaster/restaurant_pos/internal/util"
	"github.com/Skotchmaster/restaurant_pos/pkg/logging"
)

type MenuHTTP struct {
	Svc *service.MenuService
}

func pathID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}

func (h *MenuHTTP) GetMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get_menu")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	f := repo.MenuFilter{Category: c.QueryParam("category")}
	if raw := c.QueryParam("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			l.Warn("get_menu_error", "status", 400, "reason", "invalid available flag", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid available flag")
		}
		f.Available = &v
	}

	total, items, err := h.Svc.ListMenuItems(ctx, f, offset, limit)
	if err != nil {
		return fail(l, "get_menu_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       items,
		"pagination": util.Meta(page, limit, total),
	})
}

func (h *MenuHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	offset, limit := util.Calculate(page, util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize))

	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), offset, limit)
	if err != nil {
		return fail(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"data":       items,
		"pagination": util.Meta(page, limit, total),
	})
}

func (h *MenuHTTP) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": domain.Categories})
}

func (h *MenuHTTP) GetMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get_item")

	id, err := pathID(c)
	if err != nil {
		l.Warn("get_item_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	item, err := h.Svc.GetMenuItem(ctx, id)
	if err != nil {
		return fail(l, "get_item_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": item})
}

func (h *MenuHTTP) CreateMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.create_item")

	var req transport.MenuItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.CreateMenuItem(ctx, req)
	if err != nil {
		return fail(l, "create_item_error", err)
	}

	l.Info("create_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Menu item created successfully",
		"data":    item,
	})
}

func (h *MenuHTTP) UpdateMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.update_item")

	id, err := pathID(c)
	if err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transport.MenuItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateMenuItem(ctx, id, req)
	if err != nil {
		return fail(l, "update_item_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Menu item updated successfully",
		"data":    item,
	})
}

func (h *MenuHTTP) DeleteMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.delete_item")

	id, err := pathID(c)
	if err != nil {
		l.Warn("delete_item_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := h.Svc.DeleteMenuItem(ctx, id); err != nil {
		return fail(l, "delete_item_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "message": "Menu item deleted successfully"})
}

func (h *MenuHTTP) AdjustStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.adjust_stock")

	id, err := pathID(c)
	if err != nil {
		l.Warn("adjust_stock_error", "status", 400, "reason", "invalid id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req transport.StockRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("adjust_stock_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AdjustStock(ctx, id, req.Delta)
	if err != nil {
		return fail(l, "adjust_stock_error", err)
	}

	l.Info("adjust_stock_success", "item_id", item.ID, "delta", req.Delta, "stock", item.Stock)
	return c.JSON(http.StatusOK, map[string]any{"success": true, "data": item})
}
