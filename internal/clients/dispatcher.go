// Package clients holds the HTTP clients for the four backend function
// apps and the dispatcher that picks between them.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/config"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// Dispatcher maps a resolved (intent, params) pair onto exactly one
// backend call. Handled failures — missing configuration, 404, transport
// errors, non-2xx — come back as text results, never as errors; the error
// return covers only request construction faults.
type Dispatcher struct {
	cfg    *config.Config
	client *http.Client
}

// NewDispatcher creates a dispatcher over the configured function apps.
func NewDispatcher(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.BackendTimeout,
		},
	}
}

// Dispatch invokes the backend for intent with the collected params.
func (d *Dispatcher) Dispatch(ctx context.Context, intent models.Intent, params models.ParamBag) (*models.BackendResult, error) {
	switch intent {
	case models.IntentItemDetails:
		item := params.Get(models.ParamItem)
		if item == "" {
			item = params.Get(models.ParamProduct)
		}
		return d.ItemDetails(ctx, item)
	case models.IntentCoCDetails:
		return d.CoCDetails(ctx, params.Get(models.ParamModelItem), params.Get(models.ParamCountryQuery))
	case models.IntentReport:
		return d.Report(ctx, params.Get(models.ParamReportName),
			params.Get(models.ParamSalesOrder),
			params.Get(models.ParamDeliveryName),
			params.Get(models.ParamPONumber))
	case models.IntentTracking:
		return d.Tracking(ctx, params.Get(models.ParamSalesOrder))
	default:
		return models.TextResult("Unknown intent."), nil
	}
}

// ItemDetails looks up an item or product by identifier.
func (d *Dispatcher) ItemDetails(ctx context.Context, item string) (*models.BackendResult, error) {
	if d.cfg.ItemURL == "" || d.cfg.ItemCode == "" {
		return models.TextResult("❌ Item details service configuration missing."), nil
	}

	q := url.Values{}
	q.Set("code", d.cfg.ItemCode)
	q.Set(models.ParamItem, item)

	resp, err := d.get(ctx, d.cfg.ItemURL, q)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving item **%s**: %v", item, err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TextResult(fmt.Sprintf("❌ Item **%s** not found in the database.", item)), nil
	}
	result, err := d.normalize(resp)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving item **%s**: %v", item, err)), nil
	}
	return result, nil
}

// CoCDetails looks up certificate-of-conformity details for a model item,
// optionally narrowed to one country.
func (d *Dispatcher) CoCDetails(ctx context.Context, modelItem, countryQuery string) (*models.BackendResult, error) {
	if d.cfg.CoCURL == "" || d.cfg.CoCCode == "" {
		return models.TextResult("❌ CoC service configuration missing."), nil
	}

	q := url.Values{}
	q.Set("code", d.cfg.CoCCode)
	q.Set(models.ParamModelItem, modelItem)
	if countryQuery != "" {
		q.Set(models.ParamCountryQuery, countryQuery)
	}

	resp, err := d.get(ctx, d.cfg.CoCURL, q)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving CoC for **%s**: %v", modelItem, err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TextResult(fmt.Sprintf("❌ Model item **%s** is not found or not certified.", modelItem)), nil
	}
	result, err := d.normalize(resp)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving CoC for **%s**: %v", modelItem, err)), nil
	}
	return result, nil
}

// Report requests a BI report. The report name is required; the order
// identifiers are forwarded when present.
func (d *Dispatcher) Report(ctx context.Context, reportName, salesOrder, deliveryName, poNumber string) (*models.BackendResult, error) {
	if d.cfg.ReportURL == "" || d.cfg.ReportCode == "" {
		return models.TextResult("❌ Report service configuration missing."), nil
	}

	payload := map[string]string{"report": reportName}
	if salesOrder != "" {
		payload[models.ParamSalesOrder] = salesOrder
	}
	if deliveryName != "" {
		payload[models.ParamDeliveryName] = deliveryName
	}
	if poNumber != "" {
		payload[models.ParamPONumber] = poNumber
	}

	q := url.Values{}
	q.Set("code", d.cfg.ReportCode)

	resp, err := d.post(ctx, d.cfg.ReportURL, q, payload)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error generating report **%s**: %v", reportName, err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TextResult(fmt.Sprintf("❌ Report **%s** not found or invalid parameters.", reportName)), nil
	}
	result, err := d.normalize(resp)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error generating report **%s**: %v", reportName, err)), nil
	}
	return result, nil
}

// Tracking looks up delivery tracking for a sales order.
func (d *Dispatcher) Tracking(ctx context.Context, salesOrder string) (*models.BackendResult, error) {
	if d.cfg.TrackingURL == "" || d.cfg.TrackingCode == "" {
		return models.TextResult("❌ Tracking service configuration missing."), nil
	}

	q := url.Values{}
	q.Set("code", d.cfg.TrackingCode)
	q.Set(models.ParamSalesOrder, salesOrder)

	resp, err := d.get(ctx, d.cfg.TrackingURL, q)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving tracking info for **%s**: %v", salesOrder, err)), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return models.TextResult(fmt.Sprintf("❌ Tracking info not found for sales order **%s**.", salesOrder)), nil
	}
	result, err := d.normalize(resp)
	if err != nil {
		return models.TextResult(fmt.Sprintf("❌ Error retrieving tracking info for **%s**: %v", salesOrder, err)), nil
	}
	return result, nil
}

func (d *Dispatcher) get(ctx context.Context, rawURL string, q url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return d.client.Do(req)
}

func (d *Dispatcher) post(ctx context.Context, rawURL string, q url.Values, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL+"?"+q.Encode(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return d.client.Do(req)
}
