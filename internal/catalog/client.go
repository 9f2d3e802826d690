package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ecatalog-tools/ecatalog-cli/internal/auth"
	"github.com/ecatalog-tools/ecatalog-cli/internal/util"
)

// Client issues authenticated requests against the catalog management API.
// When a token manager is attached, every request first ensures the held
// credential is outside the expiry lookahead window, refreshing it if needed,
// before injecting the bearer token.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      *auth.TokenManager
	staticToken string
}

// NewClient creates a catalog API client. The token manager may be nil when a
// static access token is supplied via SetAccessToken.
func NewClient(baseURL string, tokens *auth.TokenManager) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     tokens,
	}
}

// SetAccessToken installs a static bearer token, used when OAuth is not
// configured (for example against a local development instance).
func (c *Client) SetAccessToken(token string) {
	c.staticToken = token
}

// do performs one authenticated request and returns the raw response body.
// Non-2xx responses become APIError; both outcomes are logged with method,
// URL, and status.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) ([]byte, error) {
	if c.tokens != nil && c.tokens.Current() != nil {
		if err := c.tokens.EnsureValid(ctx); err != nil {
			return nil, err
		}
	}

	fullURL := c.baseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token := c.bearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		log.Debugf("Request authorized with %s", util.MaskAuthorizationHeader(req.Header.Get("Authorization")))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Errorf("Request failed: %s %s: %v", method, fullURL, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	log.Infof("%s %s - Status: %d", method, fullURL, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Method: method, URL: fullURL, StatusCode: resp.StatusCode, Body: string(respBody)}
		log.Errorf("HTTP Error: %v", apiErr)
		return nil, apiErr
	}

	return respBody, nil
}

func (c *Client) bearerToken() string {
	if c.tokens != nil && c.tokens.Current() != nil {
		return c.tokens.Current().AccessToken
	}
	return c.staticToken
}

// decode unmarshals a successful response body, reporting a DecodeError on
// malformed payloads. Empty bodies decode to the zero value.
func decode[T any](endpoint string, body []byte) (*T, error) {
	var out T
	if len(body) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		log.Errorf("JSON Decode Error for %s: %v", endpoint, err)
		return nil, &DecodeError{URL: endpoint, Cause: err}
	}
	return &out, nil
}

// LookupSKU looks up a SKU's type, site, and division availability.
func (c *Client) LookupSKU(ctx context.Context, sku string) (*SkuLookupResponse, error) {
	body, err := c.do(ctx, http.MethodGet, "/sku/"+sku+"/lookup", nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[SkuLookupResponse]("/sku/"+sku+"/lookup", body)
}

// GetItem fetches an item by SKU.
func (c *Client) GetItem(ctx context.Context, sku string) (*Item, error) {
	body, err := c.do(ctx, http.MethodGet, "/item/"+sku, nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[Item]("/item/"+sku, body)
}

// CreateItem creates a new item. On success the API responds with the work
// request tracking the import; its ID is returned.
func (c *Client) CreateItem(ctx context.Context, item *ItemNew) (int64, error) {
	payload, err := json.Marshal(item)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize item: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/item", nil, payload)
	if err != nil {
		return 0, err
	}
	return workRequestID(body), nil
}

// UpdateItem partially updates an item; only the fields set on the update are
// sent.
func (c *Client) UpdateItem(ctx context.Context, sku string, update *ItemPartialUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to serialize item update: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, "/item/"+sku, nil, payload)
	return err
}

// DeleteItem deletes an item by SKU. The optional division restriction is
// only included in the body when set.
func (c *Client) DeleteItem(ctx context.Context, sku string, del *ItemDeleteRequest) error {
	payload, err := json.Marshal(del)
	if err != nil {
		return fmt.Errorf("failed to serialize delete request: %w", err)
	}
	_, err = c.do(ctx, http.MethodDelete, "/item/"+sku, nil, payload)
	return err
}

// GetRoom fetches a room by SKU.
func (c *Client) GetRoom(ctx context.Context, sku string) (*Room, error) {
	body, err := c.do(ctx, http.MethodGet, "/room/"+sku, nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[Room]("/room/"+sku, body)
}

// CreateRoom creates a new room.
func (c *Client) CreateRoom(ctx context.Context, room *Room) error {
	payload, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to serialize room: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/room", nil, payload)
	return err
}

// UpdateRoom partially updates a room with an arbitrary sparse patch.
func (c *Client) UpdateRoom(ctx context.Context, sku string, patch map[string]any) error {
	payload, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to serialize room patch: %w", err)
	}
	_, err = c.do(ctx, http.MethodPatch, "/room/"+sku, nil, payload)
	return err
}

// DeleteRoom deletes a room by SKU.
func (c *Client) DeleteRoom(ctx context.Context, sku string, del *ItemDeleteRequest) error {
	payload, err := json.Marshal(del)
	if err != nil {
		return fmt.Errorf("failed to serialize delete request: %w", err)
	}
	_, err = c.do(ctx, http.MethodDelete, "/room/"+sku, nil, payload)
	return err
}

// SwapRoomItems swaps items in a room across the given divisions.
func (c *Client) SwapRoomItems(ctx context.Context, swap *SwapRoomItemsRequest) (int64, error) {
	payload, err := json.Marshal(swap)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize swap request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/room/swap-items", nil, payload)
	if err != nil {
		return 0, err
	}
	return workRequestID(body), nil
}

// PrevalidateSubstitution runs a SKU substitution request through the API's
// validation without submitting it.
func (c *Client) PrevalidateSubstitution(ctx context.Context, sub *SkuSubstitutionRequest) ([]byte, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize substitution request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/sku/substitution/prevalidate", nil, payload)
}

// SubmitSubstitution submits a SKU substitution request.
func (c *Client) SubmitSubstitution(ctx context.Context, sub *SkuSubstitutionRequest) (int64, error) {
	payload, err := json.Marshal(sub)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize substitution request: %w", err)
	}
	body, err := c.do(ctx, http.MethodPost, "/sku/substitution", nil, payload)
	if err != nil {
		return 0, err
	}
	return workRequestID(body), nil
}

// GetWorkRequest fetches a work request by ID.
func (c *Client) GetWorkRequest(ctx context.Context, id int64) (*WorkRequest, error) {
	endpoint := "/workrequests/" + strconv.FormatInt(id, 10)
	body, err := c.do(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return nil, err
	}
	return decode[WorkRequest](endpoint, body)
}

// ListWorkRequests lists work requests, optionally filtered by status and
// route name.
func (c *Client) ListWorkRequests(ctx context.Context, status, routeName string) ([]WorkRequest, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if routeName != "" {
		query.Set("route_name", routeName)
	}

	body, err := c.do(ctx, http.MethodGet, "/workrequests/", query, nil)
	if err != nil {
		return nil, err
	}

	var out []WorkRequest
	if len(body) > 0 {
		if err = json.Unmarshal(body, &out); err != nil {
			log.Errorf("JSON Decode Error for /workrequests/: %v", err)
			return nil, &DecodeError{URL: "/workrequests/", Cause: err}
		}
	}
	return out, nil
}

// ProcessWorkRequests asks the API to process the given work request IDs.
func (c *Client) ProcessWorkRequests(ctx context.Context, ids []int64) ([]byte, error) {
	payload, err := sjson.SetBytes([]byte(`{}`), "workrequest_ids", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build process request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/workrequests/process", nil, payload)
}

// ProcessWorkflows triggers workflow processing for a flow type. The
// workrequest_ids field is only present in the body when IDs are supplied.
func (c *Client) ProcessWorkflows(ctx context.Context, flowType string, ids []int64) ([]byte, error) {
	query := url.Values{"flow_type": {flowType}}

	payload := []byte(`{}`)
	if len(ids) > 0 {
		var err error
		if payload, err = sjson.SetBytes(payload, "workrequest_ids", ids); err != nil {
			return nil, fmt.Errorf("failed to build workflow request: %w", err)
		}
	}

	return c.do(ctx, http.MethodPost, "/workflows/process", query, payload)
}

// workRequestID pulls the work request identifier out of a creation
// response. The API has used both WorkrequestId and workrequest_id casings;
// zero means the response carried none.
func workRequestID(body []byte) int64 {
	if id := gjson.GetBytes(body, "WorkrequestId"); id.Exists() {
		return id.Int()
	}
	return gjson.GetBytes(body, "workrequest_id").Int()
}
