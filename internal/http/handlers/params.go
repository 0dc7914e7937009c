package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmhernandez2525/learning-hall/internal/http/response"
)

// uuidParam parses a path parameter and writes a 400 when it is not a uuid.
func uuidParam(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+what+"_id", errors.New("invalid "+what+" id"))
		return uuid.Nil, false
	}
	return id, true
}
