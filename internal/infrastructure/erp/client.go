// Package erp implements the plentymarkets SOAP client used by the export
// services.
package erp

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/domain/integration"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/config"
	"github.com/DaHaiz/plentymarkets-shopware-connector/internal/infrastructure/telemetry"
	"github.com/go-playground/validator/v10"
	"github.com/ybbus/httpretry"
	"go.uber.org/zap"
)

// defaultMaxResponseSize caps response bodies when the config leaves it unset (10MB)
const defaultMaxResponseSize = 10 * 1024 * 1024

// ErrInvalidConfig reports an unusable client configuration
var ErrInvalidConfig = errors.New("erp: invalid client configuration")

// Client implements integration.ERPClient over SOAP 1.1. Catalog reads go
// through a retrying client; writes are sent exactly once.
type Client struct {
	cfg        config.ERPConfig
	httpClient *http.Client
	readClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its timeout is left untouched.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the configured endpoint
func NewClient(cfg config.ERPConfig, opts ...Option) (*Client, error) {
	if cfg.MaxResponseSize == 0 {
		cfg.MaxResponseSize = defaultMaxResponseSize
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// NewCustomClient swaps the transport of the client it is given
	base := *c.httpClient
	c.readClient = httpretry.NewCustomClient(&base,
		httpretry.WithMaxRetryCount(cfg.ReadRetries),
		httpretry.WithBackoffPolicy(httpretry.ExponentialBackoff(200*time.Millisecond, 5*time.Second, 100*time.Millisecond)),
	)
	return c, nil
}

// ---------------------------------------------------------------------------
// ERPClient implementation
// ---------------------------------------------------------------------------

// AddOrder creates one remote order
func (c *Client) AddOrder(ctx context.Context, order integration.RemoteOrder) (integration.RemoteResult, error) {
	return c.write(ctx, "AddOrders", addOrdersRequest{Orders: []soapOrder{encodeOrder(order)}})
}

// GetCategoryCatalogPage reads one page of the remote category catalog
func (c *Client) GetCategoryCatalogPage(ctx context.Context, req integration.CatalogPageRequest) (integration.CatalogPage, error) {
	resp, err := c.call(ctx, c.readClient, "GetItemCategoryCatalogBase", getCatalogRequest{
		Lang:  req.Lang,
		Level: req.Level,
		Page:  req.Page,
	})
	if err != nil {
		return integration.CatalogPage{}, err
	}

	page := integration.CatalogPage{
		Success:    resp.Success,
		Pages:      resp.Pages,
		Categories: make([]integration.RemoteCategory, 0, len(resp.Categories)),
	}
	for _, item := range resp.Categories {
		page.Categories = append(page.Categories, integration.RemoteCategory{
			ID:    item.CategoryID,
			Level: item.Level,
			Name:  item.Name,
		})
	}
	return page, nil
}

// AddCategory creates a remote category
func (c *Client) AddCategory(ctx context.Context, req integration.RemoteCategoryRequest) (integration.RemoteResult, error) {
	return c.write(ctx, "AddItemCategory", addCategoryRequest{Categories: []soapCategory{encodeCategory(req)}})
}

// AddCategoryTranslation adds a language to a remote category
func (c *Client) AddCategoryTranslation(ctx context.Context, req integration.RemoteCategoryTranslation) (integration.RemoteResult, error) {
	return c.write(ctx, "AddItemCategoryTranslation", addCategoryTranslationRequest{
		Categories: []soapCategory{encodeCategoryTranslation(req)},
	})
}

// AddCustomer creates a remote customer
func (c *Client) AddCustomer(ctx context.Context, customer integration.RemoteCustomer) (integration.RemoteResult, error) {
	return c.write(ctx, "AddCustomers", addCustomersRequest{Customers: []soapCustomer{encodeCustomer(customer)}})
}

// AddDeliveryAddress creates a delivery address of a remote customer
func (c *Client) AddDeliveryAddress(ctx context.Context, address integration.RemoteDeliveryAddress) (integration.RemoteResult, error) {
	return c.write(ctx, "AddCustomerDeliveryAddresses", addDeliveryAddressesRequest{
		Addresses: []soapDeliveryAddress{encodeDeliveryAddress(address)},
	})
}

// AddIncomingPayment books a payment against a remote order
func (c *Client) AddIncomingPayment(ctx context.Context, payment integration.IncomingPayment) (integration.RemoteResult, error) {
	return c.write(ctx, "AddIncomingPayments", addIncomingPaymentsRequest{
		Payments: []soapIncomingPayment{encodeIncomingPayment(payment)},
	})
}

// AddItemAttribute creates a remote item attribute with its values
func (c *Client) AddItemAttribute(ctx context.Context, attribute integration.ItemAttribute) (integration.RemoteResult, error) {
	return c.write(ctx, "AddItemAttribute", addItemAttributeRequest{
		Attributes: []soapItemAttribute{encodeItemAttribute(attribute)},
	})
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

func (c *Client) write(ctx context.Context, operation string, payload any) (integration.RemoteResult, error) {
	resp, err := c.call(ctx, c.httpClient, operation, payload)
	if err != nil {
		return integration.RemoteResult{}, err
	}
	return resp.result(), nil
}

// call sends one SOAP request and decodes its Response element. Transport
// failures wrap ErrRemoteUnavailable, SOAP faults ErrRemoteRejected and
// undecodable bodies ErrRemoteInvalidResponse.
func (c *Client) call(ctx context.Context, httpClient *http.Client, operation string, payload any) (*soapResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "erp", operation)
	defer span.End()

	resp, err := c.roundTrip(ctx, httpClient, operation, payload)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "erp.success", resp.Success)
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, httpClient *http.Client, operation string, payload any) (*soapResponse, error) {
	body, err := xml.Marshal(requestEnvelope{
		EnvelopNS: envelopeNS,
		ServiceNS: serviceNS,
		Header: requestHeader{Token: verifyingToken{
			UserID: c.cfg.Username,
			Token:  c.cfg.Token,
		}},
		Body: requestBody{Content: payload},
	})
	if err != nil {
		return nil, fmt.Errorf("erp: failed to encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(append([]byte(xml.Header), body...)))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", serviceNS+"#"+operation)

	start := time.Now()
	httpResp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrRemoteUnavailable, operation, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, c.cfg.MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: failed to read response: %v", integration.ErrRemoteUnavailable, operation, err)
	}

	c.logger.Debug("erp call",
		zap.String("operation", operation),
		zap.Int("status", httpResp.StatusCode),
		zap.Int("response_bytes", len(raw)),
		zap.Duration("duration", time.Since(start)),
	)

	var envelope responseEnvelope
	decodeErr := xml.Unmarshal(raw, &envelope)
	if decodeErr == nil && envelope.Body.Fault != nil {
		return nil, fmt.Errorf("%w: %s: %s %s", integration.ErrRemoteRejected, operation,
			envelope.Body.Fault.Code, envelope.Body.Fault.String)
	}
	if httpResp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s: HTTP %d", integration.ErrRemoteUnavailable, operation, httpResp.StatusCode)
	}
	if httpResp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s: HTTP %d", integration.ErrRemoteRejected, operation, httpResp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", integration.ErrRemoteInvalidResponse, operation, decodeErr)
	}
	if envelope.Body.Result.Response == nil {
		return nil, fmt.Errorf("%w: %s: missing Response element", integration.ErrRemoteInvalidResponse, operation)
	}
	return envelope.Body.Result.Response, nil
}

// Ensure Client implements integration.ERPClient
var _ integration.ERPClient = (*Client)(nil)
