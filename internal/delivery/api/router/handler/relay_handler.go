// Package handler contains the echo handlers of the relay API.
package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pushrelay/internal/delivery/api/middleware"
	"pushrelay/internal/delivery/api/response"
	"pushrelay/internal/delivery/api/validator"
	"pushrelay/internal/domain/entity"
	domainerrors "pushrelay/internal/domain/errors"
	"pushrelay/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// RelayHandlerParams holds dependencies for RelayHandler, injected by Fx.
type RelayHandlerParams struct {
	fx.In

	SubscriptionUC usecase.SubscriptionUsecase
	MessageUC      usecase.MessageUsecase
	Logger         *slog.Logger
}

// RelayHandler serves subscription, send and polling endpoints
type RelayHandler struct {
	subscriptionUC usecase.SubscriptionUsecase
	messageUC      usecase.MessageUsecase
	logger         *slog.Logger
}

// NewRelayHandler is the constructor for RelayHandler
func NewRelayHandler(params RelayHandlerParams) *RelayHandler {
	return &RelayHandler{
		subscriptionUC: params.SubscriptionUC,
		messageUC:      params.MessageUC,
		logger:         params.Logger,
	}
}

// SubscribeRequest is the browser's PushSubscription JSON
type SubscribeRequest struct {
	Endpoint string           `json:"endpoint" validate:"required"`
	Keys     SubscriptionKeys `json:"keys"`
}

// SubscriptionKeys holds the client encryption keys
type SubscriptionKeys struct {
	P256dh string `json:"p256dh" validate:"required"`
	Auth   string `json:"auth" validate:"required"`
}

// SubscribeResponse carries the new subscription id, which is also its send token
type SubscribeResponse struct {
	ID string `json:"id"`
}

// UnsubscribeRequest names the subscription to delete
type UnsubscribeRequest struct {
	ID string `json:"id"`
}

// MessageResponse is one drained message
type MessageResponse struct {
	ID        int64          `json:"id"`
	Payload   entity.Payload `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}

// PublicKeyResponse carries the VAPID application server key
type PublicKeyResponse struct {
	PublicKey string `json:"publicKey"`
}

// Subscribe handles POST /api/subscribe
func (h *RelayHandler) Subscribe(c echo.Context) error {
	var req SubscribeRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return domainerrors.ErrInvalidPayload
	}

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, domainerrors.ErrValidationFailed.WithDetails(validator.Describe(err)))
	}

	sub, err := h.subscriptionUC.Subscribe(c.Request().Context(), &usecase.SubscribeInput{
		Endpoint: req.Endpoint,
		P256dh:   req.Keys.P256dh,
		Auth:     req.Keys.Auth,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.JSON(http.StatusCreated, SubscribeResponse{ID: sub.ID})
}

// Unsubscribe handles POST /api/unsubscribe
func (h *RelayHandler) Unsubscribe(c echo.Context) error {
	var req UnsubscribeRequest
	if err := c.Echo().JSONSerializer.Deserialize(c, &req); err != nil {
		return domainerrors.ErrInvalidPayload
	}

	if err := h.subscriptionUC.Unsubscribe(c.Request().Context(), req.ID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.OK(c)
}

// Send handles POST / with a JSON or plain text body
func (h *RelayHandler) Send(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		// Includes the body limit's 413
		return err
	}

	input := &usecase.SendInput{
		Body:   body,
		IsJSON: strings.Contains(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON),
	}
	if err := h.messageUC.Send(c.Request().Context(), middleware.GetToken(c), input); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.OK(c)
}

// FetchPending handles GET /api/messages
func (h *RelayHandler) FetchPending(c echo.Context) error {
	messages, err := h.messageUC.FetchPending(c.Request().Context(), middleware.GetToken(c))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	resp := make([]MessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, MessageResponse{
			ID:        msg.ID,
			Payload:   msg.Payload,
			CreatedAt: msg.CreatedAt,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// PublicKey handles GET /api/vapid-public-key
func (h *RelayHandler) PublicKey(c echo.Context) error {
	return c.JSON(http.StatusOK, PublicKeyResponse{PublicKey: h.subscriptionUC.PublicKey(c.Request().Context())})
}

// PairingQRCode handles GET /api/qrcode
func (h *RelayHandler) PairingQRCode(c echo.Context) error {
	png, err := h.subscriptionUC.PairingQRCode(c.Request().Context(), middleware.GetToken(c))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
