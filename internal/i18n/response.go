package i18n

import (
	"net/http"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/gin-gonic/gin"
)

// RespondWithError aborts the request with a {"detail": ...} body in the
// request language. 401 answers carry a Bearer challenge.
func RespondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	statusCode := http.StatusInternalServerError
	if withCode, ok := AsErrorWithCode(err); ok {
		statusCode = withCode.StatusCode()
	}
	if statusCode == http.StatusUnauthorized {
		c.Header(cnst.HeaderWWWAuthenticate, cnst.BearerScheme)
	}

	c.AbortWithStatusJSON(statusCode, gin.H{"detail": TranslateError(c, err)})
}
