package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ibmentor/services"
	"ibmentor/structs"
)

// AuthController fronts the Cognito flows. Passwords pass through to Cognito
// and are never stored here.
type AuthController struct {
	auth *services.CognitoAuth
}

func NewAuthController(auth *services.CognitoAuth) *AuthController {
	return &AuthController{auth: auth}
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var request structs.SignUpRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := ac.auth.SignUp(c.Request.Context(), request.Email, request.Password); err != nil {
		c.JSON(500, gin.H{"error": "Failed to sign up", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Sign-up successful"})
}

func (ac *AuthController) VerifyEmail(c *gin.Context) {
	var request structs.VerifyEmailRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := ac.auth.ConfirmSignUp(c.Request.Context(), request.Email, request.ConfirmationCode); err != nil {
		c.JSON(500, gin.H{"error": "Failed to verify email", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Email verification successful"})
}

func (ac *AuthController) Login(c *gin.Context) {
	var request structs.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input", "message": "Check email and password format"})
		return
	}

	token, err := ac.auth.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		c.JSON(401, gin.H{"error": "Failed to sign in", "message": "Invalid email or password"})
		return
	}

	c.JSON(200, gin.H{"message": "Sign-in successful", "accessToken": token})
}

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var request structs.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input", "message": "Check email format"})
		return
	}

	if err := ac.auth.ForgotPassword(c.Request.Context(), request.Email); err != nil {
		c.JSON(500, gin.H{"error": "Failed to initiate password reset", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Password reset initiated. Check your email for further instructions."})
}

func (ac *AuthController) VerifyForgotPassword(c *gin.Context) {
	var request structs.VerifyForgotPasswordRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(400, gin.H{"error": "Invalid input", "message": err.Error()})
		return
	}

	if err := ac.auth.ConfirmForgotPassword(c.Request.Context(), request.Email, request.Code, request.NewPassword); err != nil {
		c.JSON(500, gin.H{"error": "Failed to confirm password reset", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Password successfully changed"})
}

func (ac *AuthController) VerifyToken(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(401, gin.H{"error": "Missing token"})
		return
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		c.JSON(400, gin.H{"error": "Invalid token format"})
		return
	}

	email, err := ac.auth.UserEmail(c.Request.Context(), tokenParts[1])
	if err != nil {
		c.JSON(401, gin.H{"error": "Invalid or expired token", "message": err.Error()})
		return
	}

	c.JSON(200, gin.H{"message": "Token is valid", "email": email})
}
