package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-authgate/coffeeshop/internal/logger"
	"github.com/go-authgate/coffeeshop/internal/models"
	"github.com/go-authgate/coffeeshop/internal/services"
	"github.com/go-authgate/coffeeshop/internal/store"
	"github.com/go-authgate/coffeeshop/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type DrinkHandler struct {
	drinkService *services.DrinkService
	logger       log.Logger
}

func NewDrinkHandler(ds *services.DrinkService, l log.Logger) *DrinkHandler {
	return &DrinkHandler{drinkService: ds, logger: logger.OrNop(l)}
}

// GetDrinks lists the menu in the short representation. It is public.
func (h *DrinkHandler) GetDrinks(c *gin.Context) {
	drinks, pagination, ok := h.list(c)
	if !ok {
		return
	}

	out := make([]models.DrinkShort, 0, len(drinks))
	for i := range drinks {
		out = append(out, drinks[i].Short())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": out, "pagination": pagination})
}

// GetDrinksDetail lists the menu with ingredient names.
func (h *DrinkHandler) GetDrinksDetail(c *gin.Context, _ token.Claims) {
	drinks, pagination, ok := h.list(c)
	if !ok {
		return
	}

	out := make([]models.DrinkLong, 0, len(drinks))
	for i := range drinks {
		out = append(out, drinks[i].Long())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": out, "pagination": pagination})
}

func (h *DrinkHandler) CreateDrink(c *gin.Context, claims token.Claims) {
	var input services.DrinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}

	drink, err := h.drinkService.CreateDrink(input)
	if err != nil {
		h.fail(c, "create drink", err)
		return
	}

	h.logAction(claims, "drink created", drink.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []models.DrinkLong{drink.Long()}})
}

func (h *DrinkHandler) UpdateDrink(c *gin.Context, claims token.Claims) {
	id, ok := parseDrinkID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound)
		return
	}

	var input services.DrinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}

	drink, err := h.drinkService.UpdateDrink(id, input)
	if err != nil {
		h.fail(c, "update drink", err)
		return
	}

	h.logAction(claims, "drink updated", drink.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []models.DrinkLong{drink.Long()}})
}

func (h *DrinkHandler) DeleteDrink(c *gin.Context, claims token.Claims) {
	id, ok := parseDrinkID(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound)
		return
	}

	if err := h.drinkService.DeleteDrink(id); err != nil {
		h.fail(c, "delete drink", err)
		return
	}

	h.logAction(claims, "drink deleted", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "delete": id})
}

// list reads optional page/page_size/search query parameters. Without
// page or page_size the whole menu is returned.
func (h *DrinkHandler) list(c *gin.Context) ([]models.Drink, store.PaginationResult, bool) {
	var params store.PaginationParams
	pageStr, sizeStr := c.Query("page"), c.Query("page_size")
	if pageStr != "" || sizeStr != "" {
		page, _ := strconv.Atoi(pageStr)
		size, _ := strconv.Atoi(sizeStr)
		params = store.NewPaginationParams(page, size, c.Query("search"))
	} else {
		params.Search = c.Query("search")
	}

	drinks, pagination, err := h.drinkService.ListDrinks(params)
	if err != nil {
		_ = level.Error(h.logger).Log("msg", "list drinks failed", "err", err)
		respondError(c, http.StatusUnprocessableEntity)
		return nil, store.PaginationResult{}, false
	}
	return drinks, pagination, true
}

func (h *DrinkHandler) fail(c *gin.Context, action string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidDrink):
		respondError(c, http.StatusBadRequest)
	case errors.Is(err, services.ErrDrinkNotFound):
		respondError(c, http.StatusNotFound)
	case errors.Is(err, services.ErrTitleTaken):
		respondError(c, http.StatusUnprocessableEntity)
	default:
		_ = level.Error(h.logger).Log("msg", action+" failed", "err", err)
		respondError(c, http.StatusInternalServerError)
	}
}

func (h *DrinkHandler) logAction(claims token.Claims, msg string, id uint) {
	_ = level.Info(h.logger).Log("msg", msg, "drink_id", id, "sub", claims.Subject())
}

// parseDrinkID accepts positive decimal ids only.
func parseDrinkID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
