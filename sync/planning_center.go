// ABOUTME: Planning Center People API client for list membership
// ABOUTME: Resolves lists by name and follows links.next pagination to collect contacts
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harperreed/groupsync/models"
	"go.uber.org/zap"
)

const defaultPlanningCenterURL = "https://api.planningcenteronline.com"

// PlanningCenterClient reads list members from Planning Center People.
type PlanningCenterClient struct {
	appID   string
	secret  string
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// PlanningCenterOption configures a PlanningCenterClient.
type PlanningCenterOption func(*PlanningCenterClient)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) PlanningCenterOption {
	return func(c *PlanningCenterClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) PlanningCenterOption {
	return func(c *PlanningCenterClient) {
		c.http = client
	}
}

// WithPlanningCenterLogger sets the logger used for request tracing.
func WithPlanningCenterLogger(logger *zap.Logger) PlanningCenterOption {
	return func(c *PlanningCenterClient) {
		c.logger = logger
	}
}

// NewPlanningCenterClient creates a client authenticating with an application id
// and secret (personal access token).
func NewPlanningCenterClient(appID, secret string, opts ...PlanningCenterOption) *PlanningCenterClient {
	c := &PlanningCenterClient{
		appID:   appID,
		secret:  secret,
		baseURL: defaultPlanningCenterURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// resourceID accepts both string and numeric JSON ids.
type resourceID string

func (id *resourceID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = resourceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = resourceID(n.String())
	return nil
}

type listsResponse struct {
	Data []struct {
		ID         resourceID `json:"id"`
		Attributes struct {
			Name string `json:"name"`
		} `json:"attributes"`
	} `json:"data"`
}

type peoplePage struct {
	Data     []person       `json:"data"`
	Included []includedItem `json:"included"`
	Links    struct {
		Next string `json:"next"`
	} `json:"links"`
}

type person struct {
	ID         resourceID `json:"id"`
	Attributes struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"attributes"`
	Relationships struct {
		Emails struct {
			Data []struct {
				ID resourceID `json:"id"`
			} `json:"data"`
		} `json:"emails"`
	} `json:"relationships"`
}

type includedItem struct {
	ID         resourceID `json:"id"`
	Type       string     `json:"type"`
	Attributes struct {
		Address string `json:"address"`
	} `json:"attributes"`
}

// FindListID resolves a list name to its id using a case-insensitive exact match.
func (c *PlanningCenterClient) FindListID(ctx context.Context, listName string) (string, error) {
	query := url.Values{"where[name]": {listName}}

	var lists listsResponse
	if err := c.do(ctx, http.MethodGet, "/people/v2/lists", query.Encode(), &lists); err != nil {
		return "", err
	}

	for _, list := range lists.Data {
		if strings.EqualFold(list.Attributes.Name, listName) {
			return string(list.ID), nil
		}
	}

	return "", &ListNotFoundError{ListName: listName}
}

// GetContacts returns every person on the named list who has an email address,
// in page order.
func (c *PlanningCenterClient) GetContacts(ctx context.Context, listName string) ([]models.Contact, error) {
	listID, err := c.FindListID(ctx, listName)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/people/v2/lists/%s/people", url.PathEscape(listID))
	rawQuery := url.Values{"include": {"emails"}}.Encode()

	contacts := []models.Contact{}
	for page := 1; ; page++ {
		var resp peoplePage
		if err := c.do(ctx, http.MethodGet, path, rawQuery, &resp); err != nil {
			return nil, err
		}

		pageContacts := contactsFromPage(&resp)
		contacts = append(contacts, pageContacts...)
		c.logger.Debug("fetched planning center page",
			zap.String("list", listName),
			zap.Int("page", page),
			zap.Int("people", len(resp.Data)),
			zap.Int("contacts", len(pageContacts)),
		)

		if resp.Links.Next == "" {
			break
		}

		next, err := url.Parse(resp.Links.Next)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next page link %q: %w", resp.Links.Next, err)
		}
		rawQuery = next.RawQuery
	}

	return contacts, nil
}

// RefreshList asks Planning Center to re-run a list's rules so its membership is current.
func (c *PlanningCenterClient) RefreshList(ctx context.Context, listName string) error {
	listID, err := c.FindListID(ctx, listName)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/people/v2/lists/%s/run", url.PathEscape(listID))
	return c.do(ctx, http.MethodPost, path, "", nil)
}

// contactsFromPage converts one page of people into contacts, skipping anyone
// whose first email relationship does not resolve to an address.
func contactsFromPage(page *peoplePage) []models.Contact {
	emailMap := make(map[resourceID]string, len(page.Included))
	for _, item := range page.Included {
		if item.Type == "Email" {
			emailMap[item.ID] = item.Attributes.Address
		}
	}

	contacts := make([]models.Contact, 0, len(page.Data))
	for _, p := range page.Data {
		related := p.Relationships.Emails.Data
		if len(related) == 0 {
			continue
		}

		address := emailMap[related[0].ID]
		if address == "" {
			continue
		}

		contacts = append(contacts, models.Contact{
			FirstName: p.Attributes.FirstName,
			LastName:  p.Attributes.LastName,
			Email:     address,
		})
	}

	return contacts
}

func (c *PlanningCenterClient) do(ctx context.Context, method, path, rawQuery string, out any) error {
	endpoint := c.baseURL + path
	if rawQuery != "" {
		endpoint += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.appID, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, URL: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Err:        errors.New(string(bytes.TrimSpace(body))),
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Method: method, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
