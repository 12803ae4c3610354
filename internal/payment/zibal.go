package payment

import (
	"context"
	"strconv"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrGateway signals the provider was unreachable or answered with a
	// protocol-level failure.
	ErrGateway = errors.New("payment gateway unavailable")
	// ErrPaymentRejected signals the provider answered but did not
	// confirm the transaction.
	ErrPaymentRejected = errors.New("payment not verified by gateway")
)

// Gateway is the minimal contract the promotion flow consumes: start a
// transaction, verify it server-side after the redirect comes back.
type Gateway interface {
	Request(ctx context.Context, amount int64, callbackURL, description string) (trackID string, err error)
	Verify(ctx context.Context, trackID string) error
}

// ZibalClient talks to the Zibal REST API (api.zibal.ir). Result code 100
// means success; on verify, 201 means "already verified" and is treated as
// success so a replayed callback stays idempotent.
type ZibalClient struct {
	merchant string
	apiURL   string
	timeout  time.Duration
}

func NewZibalClient(merchant, apiURL string) *ZibalClient {
	return &ZibalClient{
		merchant: merchant,
		apiURL:   apiURL,
		timeout:  10 * time.Second,
	}
}

type zibalRequestResponse struct {
	Result  int    `json:"result"`
	TrackID int64  `json:"trackId"`
	Message string `json:"message"`
}

type zibalVerifyResponse struct {
	Result  int    `json:"result"`
	Amount  int64  `json:"amount"`
	Status  int    `json:"status"`
	RefNum  int64  `json:"refNumber"`
	Message string `json:"message"`
}

func (c *ZibalClient) Request(ctx context.Context, amount int64, callbackURL, description string) (string, error) {
	var resp zibalRequestResponse
	err := gout.POST(c.apiURL + "/v1/request").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(gout.H{
			"merchant":    c.merchant,
			"amount":      amount,
			"callbackUrl": callbackURL,
			"description": description,
		}).
		BindJSON(&resp).
		Do()
	if err != nil {
		zap.L().Error("zibal request failed", zap.Error(err))
		return "", errors.Wrap(ErrGateway, err.Error())
	}
	if resp.Result != 100 {
		zap.L().Warn("zibal request rejected",
			zap.Int("result", resp.Result),
			zap.String("message", resp.Message))
		return "", errors.Wrapf(ErrGateway, "result=%d %s", resp.Result, resp.Message)
	}
	return strconv.FormatInt(resp.TrackID, 10), nil
}

func (c *ZibalClient) Verify(ctx context.Context, trackID string) error {
	var resp zibalVerifyResponse
	err := gout.POST(c.apiURL + "/v1/verify").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetJSON(gout.H{
			"merchant": c.merchant,
			"trackId":  trackID,
		}).
		BindJSON(&resp).
		Do()
	if err != nil {
		zap.L().Error("zibal verify failed", zap.String("track_id", trackID), zap.Error(err))
		return errors.Wrap(ErrGateway, err.Error())
	}
	if resp.Result != 100 && resp.Result != 201 {
		zap.L().Warn("zibal verify rejected",
			zap.String("track_id", trackID),
			zap.Int("result", resp.Result),
			zap.String("message", resp.Message))
		return errors.Wrapf(ErrPaymentRejected, "result=%d %s", resp.Result, resp.Message)
	}
	return nil
}
