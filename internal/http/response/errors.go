package response

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyforge-backend/internal/platform/apierr"
)

// RespondServiceError maps a coded service error onto status and code. Internal causes are not echoed.
func RespondServiceError(c *gin.Context, err error, fallbackCode string) {
	ae := apierr.FromError(err, fallbackCode)
	if ae == nil {
		RespondError(c, 500, fallbackCode, nil)
		return
	}
	_ = c.Error(err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
