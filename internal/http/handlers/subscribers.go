package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/gin-gonic/gin"
)

type SubscriberService interface {
	List(ctx context.Context) ([]subscriber.Summary, error)
	Get(ctx context.Context, id string) (*subscriber.Summary, error)
	Create(ctx context.Context, req subscriber.CreateSubscriberRequest) error
}

// SubscribersHandler exposes the subscriber service over HTTP. Failures are
// attached with ctx.Error and rendered by the error middleware.
type SubscribersHandler struct {
	svc       SubscriberService
	onCreated func()
}

type HandlerOption func(*SubscribersHandler)

// OnCreated registers a hook run after each successful create.
func OnCreated(fn func()) HandlerOption {
	return func(h *SubscribersHandler) {
		h.onCreated = fn
	}
}

func NewSubscribersHandler(svc SubscriberService, opts ...HandlerOption) *SubscribersHandler {
	h := &SubscribersHandler{svc: svc}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GET /subscribers
func (h *SubscribersHandler) ListSubscribers(ctx *gin.Context) {
	items, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, items)
}

// GET /subscribers/:id
func (h *SubscribersHandler) GetSubscriberByID(ctx *gin.Context) {
	s, err := h.svc.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if s == nil {
		RespondNoContent(ctx)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, s)
}

// POST /subscribers
func (h *SubscribersHandler) CreateSubscriber(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		_ = ctx.Error(&subscriber.Error{
			Kind:    subscriber.KindInvalidPayload,
			Message: subscriber.ErrInvalidPayload.Message,
			Err:     err,
		})
		return
	}

	req, err := subscriber.ParseCreateRequest(body)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	if err := h.svc.Create(ctx.Request.Context(), req); err != nil {
		_ = ctx.Error(err)
		return
	}

	if h.onCreated != nil {
		h.onCreated()
	}

	RespondNoContent(ctx)
}

// GET /
func Root(ctx *gin.Context) {
	RespondNoContent(ctx)
}
