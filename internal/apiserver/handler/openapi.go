package handler

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

// OpenAPI serves the generated API description
type OpenAPI struct {
	doc *openapi3.T
}

func NewOpenAPI(doc *openapi3.T) *OpenAPI {
	return &OpenAPI{doc: doc}
}

// Document handles GET /openapi.json
func (h *OpenAPI) Document(c *gin.Context) {
	c.JSON(http.StatusOK, h.doc)
}
