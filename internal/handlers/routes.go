package handlers

import (
	"github.com/go-authgate/coffeeshop/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Permissions required by the drinks routes.
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// RegisterDrinkRoutes mounts the drinks API on r, guarding every mutating
// route with gate.
func RegisterDrinkRoutes(r gin.IRouter, h *DrinkHandler, gate middleware.Guarder) {
	r.GET("/drinks", h.GetDrinks)
	r.GET("/drinks-detail", middleware.RequiresAuth(gate, PermissionGetDrinksDetail, h.GetDrinksDetail))
	r.POST("/drinks", middleware.RequiresAuth(gate, PermissionPostDrinks, h.CreateDrink))
	r.PATCH("/drinks/:id", middleware.RequiresAuth(gate, PermissionPatchDrinks, h.UpdateDrink))
	r.DELETE("/drinks/:id", middleware.RequiresAuth(gate, PermissionDeleteDrinks, h.DeleteDrink))
}

// RegisterFallbacks installs the JSON 404/405 handlers on the engine.
func RegisterFallbacks(r *gin.Engine) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(NotFound)
	r.NoMethod(MethodNotAllowed)
}
