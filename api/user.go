package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/request"
	"github.com/clarusnet/bridge_service/service"
	"github.com/clarusnet/bridge_service/storage"
	"github.com/clarusnet/bridge_service/utils"
)

const userCacheTTL = 5 * time.Minute

type UserHandler struct {
	userService *service.UserService
	cache       *redis.Client // nil disables caching
}

func NewUserHandler(us *service.UserService, cache *redis.Client) *UserHandler {
	return &UserHandler{userService: us, cache: cache}
}

// Create is the idempotent fetch-or-create endpoint the client hits during
// bootstrap. An existing record returns 200 unchanged; a new one returns 201.
func (h *UserHandler) Create(c *gin.Context) {
	var req request.CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, created, err := h.userService.Provision(c.Request.Context(), req.EVMAddress, req.BitcoinAddress)
	if err != nil {
		writeUserError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{"message": "User already exists.", "user": user})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Get looks a user up by evmAddress and/or bitcoinAddress query parameters.
func (h *UserHandler) Get(c *gin.Context) {
	evmAddress := c.Query("evmAddress")
	bitcoinAddress := c.Query("bitcoinAddress")

	if h.cache != nil && evmAddress != "" && bitcoinAddress == "" {
		var cached entity.User
		hit, err := utils.GetCache(c.Request.Context(), h.cache, userCacheKey(evmAddress), &cached)
		if err != nil {
			logrus.WithError(err).Warn("user cache read failed")
		}
		if hit {
			c.JSON(http.StatusOK, gin.H{"user": cached})
			return
		}
	}

	user, err := h.userService.Lookup(c.Request.Context(), evmAddress, bitcoinAddress)
	if err != nil {
		writeUserError(c, err)
		return
	}

	if h.cache != nil {
		if err := utils.SetCache(c.Request.Context(), h.cache, userCacheKey(user.EVMAddress), user, userCacheTTL); err != nil {
			logrus.WithError(err).Warn("user cache write failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Update applies a partial update: the query parameter identifies the
// record, the body carries the new bitcoinAddress and/or evmAddress.
func (h *UserHandler) Update(c *gin.Context) {
	queryEVMAddress := c.Query("evmAddress")
	if queryEVMAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current evmAddress in query is required to identify the user"})
		return
	}

	var req request.UpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Update(c.Request.Context(), queryEVMAddress, storage.UserUpdate{
		BitcoinAddress: req.BitcoinAddress,
		EVMAddress:     req.EVMAddress,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}

	if h.cache != nil {
		keys := []string{userCacheKey(queryEVMAddress), userCacheKey(user.EVMAddress)}
		if err := utils.DeleteCache(context.WithoutCancel(c.Request.Context()), h.cache, keys...); err != nil {
			logrus.WithError(err).Warn("user cache invalidation failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func userCacheKey(evmAddress string) string {
	return "user:evm:" + evmAddress
}

// fieldDisplay maps record field names to the wording used in conflict
// messages.
var fieldDisplay = map[string]string{
	"evmAddress":     "EVM address",
	"bitcoinAddress": "Bitcoin address",
	"mnemonic":       "mnemonic",
	"ss58Address":    "SS58 address",
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		if field, ok := storage.IsConflict(err); ok {
			name, known := fieldDisplay[field]
			if !known {
				name = "a unique field"
			}
			c.JSON(http.StatusConflict, gin.H{"error": "This " + name + " is already in use by another account."})
			return
		}
		logrus.WithError(err).Error("user request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
