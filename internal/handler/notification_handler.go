package handler

import (
	"net/http"

	"badgereg/internal/model"
	"badgereg/internal/service"
	"badgereg/pkg/response"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup, authn gin.HandlerFunc, authz PermFunc) {
	group := router.Group("/api/notifications", authn, authz(model.PermUsersManage))
	{
		group.GET("/recipients", h.ListRecipients)
		group.POST("/recipients", h.AddRecipient)
		group.PUT("/sender-token", h.StoreToken)
		group.GET("/sender-token/:email", h.GetTokenExpiry)
	}
}

// ListRecipients returns the subscriber list for one mailing kind
// @Summary      List report recipients
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        kind  query  string  true  "Mailing kind (weekly | expiry)"
// @Success      200  {object}  response.Response
// @Router       /api/notifications/recipients [get]
func (h *NotificationHandler) ListRecipients(c *gin.Context) {
	emails, err := h.notificationService.ListRecipients(c.Request.Context(), c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, emails))
}

// AddRecipient subscribes an address to one of the periodic mailings
// @Summary      Add report recipient
// @Tags         notifications
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.AddRecipientRequest  true  "Recipient payload"
// @Success      201  {object}  response.Response
// @Router       /api/notifications/recipients [post]
func (h *NotificationHandler) AddRecipient(c *gin.Context) {
	var req service.AddRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.notificationService.AddRecipient(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"email": req.Email, "kind": req.Kind}))
}

// StoreToken upserts the sender credentials for a mail identity
// @Summary      Store sender credentials
// @Tags         notifications
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.StoreTokenRequest  true  "Credential payload"
// @Success      200  {object}  response.Response
// @Router       /api/notifications/sender-token [put]
func (h *NotificationHandler) StoreToken(c *gin.Context) {
	var req service.StoreTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.notificationService.StoreToken(c.Request.Context(), req); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to store credentials: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"email": req.Email}))
}

// GetTokenExpiry reports when the stored credentials expire
// @Summary      Get sender credential expiry
// @Tags         notifications
// @Security     BearerAuth
// @Produce      json
// @Param        email  path  string  true  "Sender email"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/sender-token/{email} [get]
func (h *NotificationHandler) GetTokenExpiry(c *gin.Context) {
	expiry, err := h.notificationService.TokenExpiry(c.Request.Context(), c.Param("email"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"expiry": expiry}))
}
