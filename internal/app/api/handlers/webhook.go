package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lintasnet/paygate/internal/app/service/gateway"
	"github.com/lintasnet/paygate/internal/app/service/reconciler"
	"github.com/lintasnet/paygate/pkg/logctx"
	"github.com/lintasnet/paygate/pkg/response"
	"github.com/lintasnet/paygate/pkg/types"
)

// @Summary      Midtrans Webhook
// @Description  Handles Midtrans HTTP notifications. Body signature is verified before any state change.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /webhook/midtrans [post]
func ApiMidtransWebhook(p reconciler.Processor, log *zap.SugaredLogger) gin.HandlerFunc {
	return providerWebhook(p, log, types.PaymentProviderMidtrans)
}

// @Summary      Xendit Webhook
// @Description  Handles Xendit invoice callbacks, authenticated by the x-callback-token header.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /webhook/xendit [post]
func ApiXenditWebhook(p reconciler.Processor, log *zap.SugaredLogger) gin.HandlerFunc {
	return providerWebhook(p, log, types.PaymentProviderXendit)
}

// @Summary      Tripay Webhook
// @Description  Handles Tripay payment callbacks, authenticated by the X-Callback-Signature header.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /webhook/tripay [post]
func ApiTripayWebhook(p reconciler.Processor, log *zap.SugaredLogger) gin.HandlerFunc {
	return providerWebhook(p, log, types.PaymentProviderTripay)
}

// providerWebhook adapts one provider callback to the reconciler. Status codes
// matter here because providers retry on non-2xx: a bad signature or an
// unparseable body must NOT be acknowledged, while an unknown or already
// settled transaction must be, or the provider keeps redelivering forever.
func providerWebhook(p reconciler.Processor, log *zap.SugaredLogger, gw types.PaymentProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := logctx.FromCtx(c, log)

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "failed to read body"))
			return
		}
		l.Infow("webhook received", "gateway", gw, "bytes", len(body))

		result, err := p.Process(c.Request.Context(), gw, body, c.Request.Header)
		if err != nil {
			l.Warnw("webhook rejected", "gateway", gw, "err", err)
			switch {
			case errors.Is(err, gateway.ErrInvalidSignature):
				c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeError, "invalid signature"))
			case errors.Is(err, gateway.ErrWebhookParse):
				c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "malformed payload"))
			default:
				c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(result))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, p reconciler.Processor, log *zap.SugaredLogger) {
	r.POST("/midtrans", ApiMidtransWebhook(p, log))
	r.POST("/xendit", ApiXenditWebhook(p, log))
	r.POST("/tripay", ApiTripayWebhook(p, log))
}
