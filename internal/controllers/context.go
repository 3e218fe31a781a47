package controllers

import (
    "github.com/gin-gonic/gin"

    "github.com/elbrielle/HalllDay/internal/models"
)

// currentUser returns the account the auth middleware attached. Routes
// using it are always behind AuthMiddleware.
func currentUser(c *gin.Context) models.User {
    uVal, _ := c.Get("user")
    return uVal.(models.User)
}
