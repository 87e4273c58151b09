package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/services"
)

func AuthController(router *gin.RouterGroup, users *services.UserService, jwt *services.JWTService, auth gin.HandlerFunc) {
	routes := router.Group("/auth")
	{
		routes.POST("/register", func(c *gin.Context) {
			Signup(c, users)
		})
		routes.POST("/login", func(c *gin.Context) {
			Signin(c, users)
		})
		routes.POST("/refresh", middleware.RefreshTokenMiddleware(jwt), func(c *gin.Context) {
			Refresh(c, users)
		})
		routes.GET("/profile", auth, func(c *gin.Context) {
			Profile(c, users)
		})
	}
}

func Profile(c *gin.Context, users *services.UserService) {
	identity, _ := middleware.CurrentUser(c)

	user, err := users.Profile(c.Request.Context(), identity)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
