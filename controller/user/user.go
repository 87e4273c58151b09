package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/services"
)

func UserController(router *gin.RouterGroup, users *services.UserService, auth gin.HandlerFunc) {
	routes := router.Group("/users", auth)
	{
		routes.GET("", func(c *gin.Context) {
			ListUsers(c, users)
		})
		routes.PUT("/profile", func(c *gin.Context) {
			UpdateProfile(c, users)
		})
		routes.GET("/:id", func(c *gin.Context) {
			GetUser(c, users)
		})
		routes.PUT("/:id/role", middleware.AdminMiddleware(), func(c *gin.Context) {
			SetRole(c, users)
		})
	}
}

func ListUsers(c *gin.Context, users *services.UserService) {
	list, err := users.ListUsers(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponses(list))
}

func GetUser(c *gin.Context, users *services.UserService) {
	user, err := users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func UpdateProfile(c *gin.Context, users *services.UserService) {
	identity, _ := middleware.CurrentUser(c)

	var request dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	user, err := users.UpdateProfile(c.Request.Context(), identity, services.ProfilePatch{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
		Bio:      request.Bio,
		Avatar:   request.Avatar,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func SetRole(c *gin.Context, users *services.UserService) {
	var request dto.SetRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	user, err := users.SetRole(c.Request.Context(), c.Param("id"), request.Role)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
