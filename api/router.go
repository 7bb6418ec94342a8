package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// allowedMethods drives the Allow header on 405 responses.
var allowedMethods = map[string]string{
	"/user":  "POST, GET, PUT",
	"/token": "POST",
}

// NewRouter wires the registry endpoints. Unsupported verbs on a known path
// answer 405 with an Allow header enumerating the supported ones.
func NewRouter(userHandler *UserHandler, tokenHandler *TokenHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.HandleMethodNotAllowed = true

	r.POST("/user", userHandler.Create)
	r.GET("/user", userHandler.Get)
	r.PUT("/user", userHandler.Update)

	r.POST("/token", tokenHandler.Create)

	r.NoMethod(func(c *gin.Context) {
		if allow, ok := allowedMethods[c.Request.URL.Path]; ok {
			c.Header("Allow", allow)
		}
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"error": fmt.Sprintf("Method %s Not Allowed", c.Request.Method),
		})
	})

	return r
}
