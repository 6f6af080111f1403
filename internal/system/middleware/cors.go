package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type CORSOptions struct {
	AllowedOrigin  string
	AllowedMethods []string
	AllowedHeaders []string
}

// CORSMiddleware stamps every response with the fixed allowed origin and
// answers preflight requests without reaching the router.
func CORSMiddleware(opts CORSOptions) gin.HandlerFunc {
	methods := strings.Join(opts.AllowedMethods, ", ")
	headers := strings.Join(opts.AllowedHeaders, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", opts.AllowedOrigin)
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
