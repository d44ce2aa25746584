package handlers

import (
	"errors"

	"github.com/go-authgate/realmgate/internal/models"
	"github.com/go-authgate/realmgate/internal/services"

	"github.com/gin-gonic/gin"
)

// resolveRealm loads the realm named in the path. On failure the error
// response has been written and ok is false.
func resolveRealm(c *gin.Context, realms *services.RealmService) (*models.Realm, bool) {
	name := c.Param("realm")
	realm, err := realms.Resolve(c.Request.Context(), name)
	if errors.Is(err, services.ErrRealmNotFound) {
		respondError(c, realmNotFound(name))
		return nil, false
	}
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return realm, true
}
