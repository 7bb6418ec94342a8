package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/request"
	"github.com/clarusnet/bridge_service/service"
	"github.com/clarusnet/bridge_service/storage"
)

type TokenHandler struct {
	tokenService *service.TokenService
}

func NewTokenHandler(ts *service.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: ts}
}

// Create registers one allow-listed ERC20 token. The registry is append-only.
func (h *TokenHandler) Create(c *gin.Context) {
	var req request.CreateTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		// a non-integer assetId lands here
		c.JSON(http.StatusBadRequest, gin.H{"error": "tokenAddress and assetId are required."})
		return
	}

	token, err := h.tokenService.Register(c.Request.Context(), req.TokenAddress, req.TokenSymbol, req.AssetID)
	if err != nil {
		if service.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if _, ok := storage.IsConflict(err); ok {
			c.JSON(http.StatusConflict, gin.H{"error": "Duplicate tokenAddress or assetId already exists."})
			return
		}
		logrus.WithError(err).Error("token registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token})
}
