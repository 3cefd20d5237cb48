package cors

import (
	"github.com/gin-gonic/gin"
)

// New returns the CORS middleware. Every response carries the permissive
// header set the API contract requires. OPTIONS requests are not aborted
// here: the registered OPTIONS handlers answer them with an Allow header.
func New() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Headers",
			"X-Requested-With, Content-Type, Accept, Origin, api_key, Authorization")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		c.Next()
	}
}
