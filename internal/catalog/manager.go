// Package catalog manages products in a Meta commerce catalog and sends
// catalog-linked WhatsApp messages.
package catalog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"whatsapp-catalog-service/internal/apierrors"
	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/models"
	"whatsapp-catalog-service/internal/ratelimit"
	"whatsapp-catalog-service/internal/validation"
)

// Executor sends one logical request, retries included.
type Executor interface {
	Execute(ctx context.Context, method, url string, opts *clients.RequestOptions) (*clients.Response, error)
}

// Manager is safe for concurrent use. Apart from the rate window held by its
// executor it keeps no state between calls.
type Manager struct {
	cfg      *config.Config
	exec     Executor
	defaults validation.Defaults
	logger   *logrus.Entry
	sleep    func(ctx context.Context, d time.Duration) error
}

// NewManager wires a manager around an existing executor.
func NewManager(cfg *config.Config, exec Executor, logger *logrus.Logger) *Manager {
	return &Manager{
		cfg:  cfg,
		exec: exec,
		defaults: validation.Defaults{
			Currency:     cfg.DefaultCurrency,
			Availability: cfg.DefaultAvailability,
			Condition:    cfg.DefaultCondition,
		},
		logger: logger.WithFields(logrus.Fields{
			"component":  "catalog",
			"catalog_id": cfg.CatalogID,
		}),
		sleep: ratelimit.RealClock.Sleep,
	}
}

// New builds a manager with its own executor. A nil limiter gets an
// in-process fixed window sized from cfg.
func New(cfg *config.Config, limiter clients.RateLimiter, logger *logrus.Logger) *Manager {
	if limiter == nil {
		limiter = ratelimit.NewFixedWindow(cfg.MaxRequestsPerHour, cfg.RateWindow, ratelimit.WithLogger(logger))
	}
	exec := clients.NewExecutor(cfg, limiter, logger)
	return NewManager(cfg, exec, logger)
}

// Config returns the snapshot the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

type requirement int

const (
	needCatalog requirement = iota
	needPhoneNumber
)

// require fails fast when an identifier the operation needs is missing.
func (m *Manager) require(operation string, needs ...requirement) error {
	if m.cfg.AccessToken == "" {
		return &apierrors.ConfigurationError{Field: "access token", Operation: operation}
	}
	for _, n := range needs {
		switch n {
		case needCatalog:
			if m.cfg.CatalogID == "" {
				return &apierrors.ConfigurationError{Field: "catalog ID", Operation: operation}
			}
		case needPhoneNumber:
			if m.cfg.PhoneNumberID == "" {
				return &apierrors.ConfigurationError{Field: "phone number ID", Operation: operation}
			}
		}
	}
	return nil
}

// WriteResultFromError builds the failure envelope for err.
func WriteResultFromError(err error) *models.WriteResult {
	return &models.WriteResult{
		Success:    false,
		Error:      err.Error(),
		StatusCode: apierrors.StatusCode(err),
	}
}

// decodeObject returns the response body as an object, or an empty map when
// the body is not a JSON object.
func decodeObject(resp *clients.Response) map[string]interface{} {
	data, err := resp.JSON()
	if err != nil || data == nil {
		return map[string]interface{}{}
	}
	return data
}
