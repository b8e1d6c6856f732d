package overlay

import (
	"context"
	"math"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/config"
	"github.com/wonny/aegis-scorer/pkg/httputil"
	"github.com/wonny/aegis-scorer/pkg/logger"
)

// ProbabilityModel is the optional ML overlay.
// 모델이 없거나 실패하면 0.0 ("feature not used") 을 돌려주며 에러로 배치를 멈추지 않는다.
type ProbabilityModel interface {
	PredictProbability(ctx context.Context, symbol string, breakdown contracts.ScoreBreakdown, asOf time.Time) float64
}

// Noop always returns 0
type Noop struct{}

func (Noop) PredictProbability(context.Context, string, contracts.ScoreBreakdown, time.Time) float64 {
	return 0
}

// New returns an HTTPModel when MODEL_URL is set, Noop otherwise
func New(cfg config.ModelConfig, log *logger.Logger) ProbabilityModel {
	if cfg.URL == "" {
		return Noop{}
	}
	return NewHTTPModel(httputil.New(log, cfg.Timeout), cfg.URL, log)
}

type predictRequest struct {
	Symbol    string                   `json:"symbol"`
	Breakdown contracts.ScoreBreakdown `json:"breakdown"`
	AsOf      string                   `json:"as_of"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

// HTTPModel posts the breakdown to an external scoring service
type HTTPModel struct {
	client *httputil.Client
	url    string
	logger *logger.Logger
}

// NewHTTPModel creates a model client for url
func NewHTTPModel(client *httputil.Client, url string, log *logger.Logger) *HTTPModel {
	return &HTTPModel{client: client, url: url, logger: log.WithComponent("overlay")}
}

// PredictProbability implements ProbabilityModel
func (m *HTTPModel) PredictProbability(ctx context.Context, symbol string, breakdown contracts.ScoreBreakdown, asOf time.Time) float64 {
	req := predictRequest{Symbol: symbol, Breakdown: breakdown, AsOf: contracts.DateKey(asOf)}

	var resp predictResponse
	if err := m.client.PostJSONDecode(ctx, m.url, req, &resp); err != nil {
		m.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("probability model unavailable")
		return 0
	}

	p := resp.Probability
	if math.IsNaN(p) || p < 0 || p > 1 {
		m.logger.WithFields(map[string]interface{}{
			"symbol":      symbol,
			"probability": p,
		}).Warn("probability out of range")
		return 0
	}
	return p
}
