package asaas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrPaymentNotFound - the processor no longer knows the payment id.
// Distinct from a transient error or a poll timeout.
var ErrPaymentNotFound = errors.New("processor payment not found")

// ProcessorError - non 2xx response from the processor with the decoded detail
type ProcessorError struct {
	StatusCode  int
	Description string
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error (%d): %s", e.StatusCode, e.Description)
}

// AsaasProcessor structure
type AsaasProcessor struct {
	apiKey string
	apiUrl string
	client *http.Client
}

// Init the processor client. Sandbox keys carry the marker substring and
// route to the sandbox url; there is no separate environment flag.
func Init(apiKey, apiUrl, sandboxApiUrl, sandboxMarker string) *AsaasProcessor {
	url := apiUrl
	if sandboxMarker != "" && strings.Contains(apiKey, sandboxMarker) {
		url = sandboxApiUrl
	}
	return &AsaasProcessor{
		apiKey: apiKey,
		apiUrl: url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *AsaasProcessor) request(method, path string, body []byte) ([]byte, int, error) {
	req, err := http.NewRequest(method, p.apiUrl+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "processor request failed")
	}
	defer resp.Body.Close()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrap(err, "unable to read processor response")
	}

	return respBody, resp.StatusCode, nil
}

func decodeError(respBody []byte, statusCode int) error {
	apiErr := apiError{}
	description := ""
	if err := json.Unmarshal(respBody, &apiErr); err == nil && len(apiErr.Errors) > 0 {
		description = apiErr.Errors[0].Description
	}
	return &ProcessorError{StatusCode: statusCode, Description: description}
}

// FindCustomerByEmail returns the first processor customer matching the email,
// or nil when none exists
func (p *AsaasProcessor) FindCustomerByEmail(email string) (*Customer, error) {
	respBody, status, err := p.request(http.MethodGet, "/customers?email="+url.QueryEscape(email), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeError(respBody, status)
	}

	result := customerListResponse{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errors.Wrap(err, "unable to decode customer search response")
	}
	if result.TotalCount == 0 || len(result.Data) == 0 {
		return nil, nil
	}
	return &result.Data[0], nil
}

// CreateCustomer registers a customer with the processor
func (p *AsaasProcessor) CreateCustomer(customer Customer) (*Customer, error) {
	body, err := json.Marshal(customer)
	if err != nil {
		return nil, err
	}

	respBody, status, err := p.request(http.MethodPost, "/customers", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, decodeError(respBody, status)
	}

	created := Customer{}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, errors.Wrap(err, "unable to decode customer response")
	}
	return &created, nil
}

// CreatePayment creates a processor side charge tagged with the order id as
// external reference
func (p *AsaasProcessor) CreatePayment(request CreatePaymentRequest) (*Payment, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	respBody, status, err := p.request(http.MethodPost, "/payments", body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, decodeError(respBody, status)
	}

	payment := Payment{}
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, errors.Wrap(err, "unable to decode payment response")
	}
	return &payment, nil
}

// GetPayment fetches the current processor status of a charge. A processor
// side 404 yields ErrPaymentNotFound.
func (p *AsaasProcessor) GetPayment(paymentID string) (*Payment, error) {
	respBody, status, err := p.request(http.MethodGet, "/payments/"+url.PathEscape(paymentID), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, ErrPaymentNotFound
	}
	if status != http.StatusOK {
		return nil, decodeError(respBody, status)
	}

	payment := Payment{}
	if err := json.Unmarshal(respBody, &payment); err != nil {
		return nil, errors.Wrap(err, "unable to decode payment response")
	}
	return &payment, nil
}

// CentsToValue converts integer cents to the processor's decimal value
func CentsToValue(cents int64) float64 {
	return float64(cents) / 100
}
