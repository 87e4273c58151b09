package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/services"
)

func Signin(c *gin.Context, users *services.UserService) {
	var request dto.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	user, tokens, err := users.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{User: dto.NewUserResponse(user), TokenPair: tokens})
}

func Refresh(c *gin.Context, users *services.UserService) {
	tokens, err := users.Refresh(c.Request.Context(), middleware.RefreshToken(c))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
