package handler

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/internal/auth"
	"github.com/fruverhq/fruver-pos/internal/httpx"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	uc auth.UseCase
}

func NewAuthHandler(uc auth.UseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.uc.Login(c.Request.Context(), &auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: auth.ClientIP(c),
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
