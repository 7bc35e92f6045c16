package petpro

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"petsync/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
)

const maxErrorBodyLen = 512

// Client talks to the pet professionals API, the system of record for
// customers, pets, services and bookings. Retries are a transport concern of
// the deployment (reverse proxy / API gateway), not of this client.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		},
	}, nil
}

func (c *Client) ListCustomers(ctx context.Context, professionalID string) ([]Customer, error) {
	var result []Customer
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/customers/professional/"+professionalID, nil, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to list customers for professional %s", professionalID)
	}

	return result, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer Customer) (*Customer, error) {
	var result Customer
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/customers", customer, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to create customer")
	}

	return &result, nil
}

// UpdateCustomerPets upserts the pet list of an existing customer. Pets with
// an id are updated, pets without one are created.
func (c *Client) UpdateCustomerPets(ctx context.Context, customer Customer) (*Customer, error) {
	if customer.ID == "" {
		return nil, oops.Errorf("customer id is required for pet upsert")
	}

	var result Customer
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/customers/"+customer.ID, customer, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to update pets for customer %s", customer.ID)
	}

	return &result, nil
}

func (c *Client) ListServices(ctx context.Context, professionalID string) ([]Service, error) {
	var result []Service
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/services/professional/"+professionalID+"/active", nil, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to list services for professional %s", professionalID)
	}

	return result, nil
}

func (c *Client) ListBookings(ctx context.Context, professionalID string) ([]Booking, error) {
	var result []Booking
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/bookings/professional/"+professionalID, nil, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to list bookings for professional %s", professionalID)
	}

	return result, nil
}

func (c *Client) CreateBooking(ctx context.Context, booking Booking) (*Booking, error) {
	var result Booking
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/bookings", booking, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to create booking")
	}

	return &result, nil
}

func (c *Client) UpdateBooking(ctx context.Context, bookingID string, booking Booking) (*Booking, error) {
	var result Booking
	if err := c.doJSON(ctx, http.MethodPut, "/api/v1/bookings/"+bookingID, booking, &result); err != nil {
		return nil, oops.Wrapf(err, "failed to update booking %s", bookingID)
	}

	return &result, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return oops.Wrapf(err, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.API.BaseURL+path, reqBody)
	if err != nil {
		return oops.Wrapf(err, "failed to create request")
	}

	if c.cfg.API.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.API.Key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.Wrapf(err, "request failed: %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return oops.Wrapf(err, "failed to read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		snippet := respBody
		if len(snippet) > maxErrorBodyLen {
			snippet = snippet[:maxErrorBodyLen]
		}

		return oops.
			With("status", resp.StatusCode).
			With("body", string(snippet)).
			Errorf("api error %d: %s %s", resp.StatusCode, method, path)
	}

	if out != nil && len(respBody) > 0 {
		if err = json.Unmarshal(respBody, out); err != nil {
			return oops.Wrapf(err, "failed to unmarshal response")
		}
	}

	return nil
}
