package webhook

import (
	"context"
	"net/http"
	"time"

	resty "github.com/go-resty/resty/v2"
	"github.com/scienceol/sampletrack/internal/config"
	"github.com/scienceol/sampletrack/pkg/common/code"
	"github.com/scienceol/sampletrack/pkg/middleware/logger"
	"github.com/scienceol/sampletrack/pkg/repo"
)

const (
	eventHeader = "X-Sampletrack-Event"
	idHeader    = "X-Sampletrack-Delivery"
)

type webhookImpl struct {
	url    string
	client *resty.Client
}

func NewWebhookRepo() repo.WebhookRepo {
	conf := config.Global().Relay
	return NewWebhook(conf.WebhookURL, time.Duration(conf.TimeoutSec)*time.Second)
}

func NewWebhook(url string, timeout time.Duration) repo.WebhookRepo {
	return &webhookImpl{
		url:    url,
		client: resty.New().
			SetTimeout(timeout).
			SetRetryCount(2).
			SetRetryWaitTime(200*time.Millisecond).
			AddRetryCondition(func(res *resty.Response, err error) bool {
				return err != nil || res.StatusCode() >= http.StatusInternalServerError
			}).
			SetHeader("Content-Type", "application/json"),
	}
}

func (w *webhookImpl) Post(ctx context.Context, event *repo.WebhookEvent) error {
	res, err := w.client.R().
		SetContext(ctx).
		SetHeader(eventHeader, event.Action).
		SetHeader(idHeader, event.UUID.String()).
		SetBody(event).
		Post(w.url)
	if err != nil {
		logger.Errorf(ctx, "post webhook event %s err: %v", event.UUID, err)
		return code.RPCHttpErr.WithErr(err)
	}

	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		return code.RPCHttpCodeErr.WithMsgf("webhook event %s: status %d", event.UUID, res.StatusCode())
	}
	return nil
}
