package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/dto"
	"teamboard/services"
)

func Signup(c *gin.Context, users *services.UserService) {
	var request dto.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	user, tokens, err := users.Register(c.Request.Context(), services.RegisterInput{
		Name:     request.Name,
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResponse{User: dto.NewUserResponse(user), TokenPair: tokens})
}
