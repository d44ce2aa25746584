package handlers

import (
	"net/http"

	"github.com/go-authgate/realmgate/internal/services"

	"github.com/gin-gonic/gin"
)

// TokenHandler serves the token endpoint.
type TokenHandler struct {
	realms *services.RealmService
	tokens *services.TokenService
}

func NewTokenHandler(realms *services.RealmService, tokens *services.TokenService) *TokenHandler {
	return &TokenHandler{realms: realms, tokens: tokens}
}

// Token handles POST /realms/:realm/token.
func (h *TokenHandler) Token(c *gin.Context) {
	realm, ok := resolveRealm(c, h.realms)
	if !ok {
		return
	}

	grant, err := services.ParseGrantType(c.PostForm("grant_type"))
	if err != nil {
		respondError(c, err)
		return
	}

	var set *services.TokenSet
	switch grant {
	case services.GrantAuthorizationCode:
		set, err = h.tokens.ExchangeCode(c.Request.Context(), realm, services.CodeExchange{
			Code:         c.PostForm("code"),
			RedirectURI:  c.PostForm("redirect_uri"),
			CodeVerifier: c.PostForm("code_verifier"),
			ClientID:     c.PostForm("client_id"),
		})
	case services.GrantRefreshToken:
		set, err = h.tokens.Refresh(c.Request.Context(), realm, services.RefreshExchange{
			RefreshToken: c.PostForm("refresh_token"),
			ClientID:     c.PostForm("client_id"),
		})
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, set)
}
