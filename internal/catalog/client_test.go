package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecatalog-tools/ecatalog-cli/internal/auth"
	"github.com/ecatalog-tools/ecatalog-cli/internal/config"
)

// recordedRequest captures what the fake catalog API saw for one call.
type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   []byte
}

func newTestAPI(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()

	last := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		last.method = r.Method
		last.path = r.URL.Path
		last.query = r.URL.RawQuery
		last.auth = r.Header.Get("Authorization")
		last.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, nil)
	client.SetAccessToken("static-token")
	return client, last
}

func TestBearerHeaderInjection(t *testing.T) {
	t.Parallel()

	client, last := newTestAPI(t, http.StatusOK, `{"type":"Item","site":"SE","divisions":{"FL":true},"exists":true}`)

	if _, err := client.LookupSKU(context.Background(), "100200300"); err != nil {
		t.Fatalf("LookupSKU() error = %v", err)
	}

	if last.auth != "Bearer static-token" {
		t.Errorf("Authorization = %q, want Bearer static-token", last.auth)
	}
	if last.method != http.MethodGet || last.path != "/sku/100200300/lookup" {
		t.Errorf("request = %s %s, want GET /sku/100200300/lookup", last.method, last.path)
	}
}

func TestLookupSKUDecodesResponse(t *testing.T) {
	t.Parallel()

	client, _ := newTestAPI(t, http.StatusOK, `{"type":"Room","site":"FL","divisions":{"FL":true,"SE":false},"exists":true}`)

	resp, err := client.LookupSKU(context.Background(), "400500600")
	if err != nil {
		t.Fatalf("LookupSKU() error = %v", err)
	}
	if resp.Type != "Room" || resp.Site != "FL" {
		t.Errorf("response = %+v, want Room/FL", resp)
	}
	if !resp.Exists {
		t.Error("Exists should be true")
	}
	if len(resp.Divisions) != 2 {
		t.Errorf("Divisions = %v, want two entries", resp.Divisions)
	}
}

func TestAPIErrorOnFailureStatus(t *testing.T) {
	t.Parallel()

	client, _ := newTestAPI(t, http.StatusNotFound, `{"detail":"sku not found"}`)

	_, err := client.GetItem(context.Background(), "999")
	if err == nil {
		t.Fatal("GetItem() should fail on 404")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v should be an APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Method != http.MethodGet {
		t.Errorf("Method = %q, want GET", apiErr.Method)
	}
	if _, ok := IsAPIError(err); !ok {
		t.Error("IsAPIError() should recognize the error")
	}
}

func TestDecodeErrorOnMalformedBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestAPI(t, http.StatusOK, `{"type": not-json`)

	_, err := client.LookupSKU(context.Background(), "123")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error %v should be a DecodeError", err)
	}
}

func TestUpdateItemSendsOnlySetFields(t *testing.T) {
	t.Parallel()

	client, last := newTestAPI(t, http.StatusOK, `{}`)

	title := "New title"
	err := client.UpdateItem(context.Background(), "123", &ItemPartialUpdate{Title: &title})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	if last.method != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", last.method)
	}

	var sent map[string]any
	if err := json.Unmarshal(last.body, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(sent) != 1 {
		t.Errorf("body = %v, want only the title field", sent)
	}
	if sent["Title"] != "New title" {
		t.Errorf("Title = %v, want New title", sent["Title"])
	}
}

func TestCreateItemReturnsWorkRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		want     int64
	}{
		{"pascal casing", `{"WorkrequestId": 42}`, 42},
		{"snake casing", `{"workrequest_id": 17}`, 17},
		{"no id", `{}`, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, _ := newTestAPI(t, http.StatusOK, tt.response)
			id, err := client.CreateItem(context.Background(), &ItemNew{Sku: "123", Site: "SE"})
			if err != nil {
				t.Fatalf("CreateItem() error = %v", err)
			}
			if id != tt.want {
				t.Errorf("work request ID = %d, want %d", id, tt.want)
			}
		})
	}
}

func TestListWorkRequestsQuery(t *testing.T) {
	t.Parallel()

	client, last := newTestAPI(t, http.StatusOK, `[{"id":1,"status":"Pending"}]`)

	reqs, err := client.ListWorkRequests(context.Background(), "Pending", "item-import")
	if err != nil {
		t.Fatalf("ListWorkRequests() error = %v", err)
	}
	if len(reqs) != 1 || reqs[0].Status != "Pending" {
		t.Errorf("work requests = %+v, want one pending entry", reqs)
	}

	query := last.query
	for _, want := range []string{"status=Pending", "route_name=item-import"} {
		if !containsParam(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
}

func TestProcessWorkflowsBodyShape(t *testing.T) {
	t.Parallel()

	t.Run("with ids", func(t *testing.T) {
		t.Parallel()

		client, last := newTestAPI(t, http.StatusOK, `{}`)
		if _, err := client.ProcessWorkflows(context.Background(), "item", []int64{1, 2}); err != nil {
			t.Fatalf("ProcessWorkflows() error = %v", err)
		}

		var sent map[string]any
		if err := json.Unmarshal(last.body, &sent); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if _, ok := sent["workrequest_ids"]; !ok {
			t.Errorf("body = %v, want workrequest_ids present", sent)
		}
		if !containsParam(last.query, "flow_type=item") {
			t.Errorf("query = %q, want flow_type=item", last.query)
		}
	})

	t.Run("without ids", func(t *testing.T) {
		t.Parallel()

		client, last := newTestAPI(t, http.StatusOK, `{}`)
		if _, err := client.ProcessWorkflows(context.Background(), "room", nil); err != nil {
			t.Fatalf("ProcessWorkflows() error = %v", err)
		}

		var sent map[string]any
		if err := json.Unmarshal(last.body, &sent); err != nil {
			t.Fatalf("request body is not JSON: %v", err)
		}
		if _, ok := sent["workrequest_ids"]; ok {
			t.Errorf("body = %v, want workrequest_ids absent", sent)
		}
	})
}

func TestManagedTokenFlowsThrough(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"managed-token","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenServer.Close)

	var gotAuth string
	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"type":"Item","site":"SE","divisions":{},"exists":true}`))
	}))
	t.Cleanup(apiServer.Close)

	cfg := &config.OAuthConfig{
		ClientID:     "c1",
		ClientSecret: "s1",
		TokenURL:     tokenServer.URL,
	}
	manager := auth.NewTokenManager(cfg, apiServer.URL, auth.NewTokenStoreAt(t.TempDir()))
	if _, err := manager.AuthenticateM2M(context.Background(), false); err != nil {
		t.Fatalf("AuthenticateM2M() error = %v", err)
	}

	client := NewClient(apiServer.URL, manager)
	if _, err := client.LookupSKU(context.Background(), "123"); err != nil {
		t.Fatalf("LookupSKU() error = %v", err)
	}

	if gotAuth != "Bearer managed-token" {
		t.Errorf("Authorization = %q, want Bearer managed-token", gotAuth)
	}
}

func containsParam(query, param string) bool {
	for _, part := range strings.Split(query, "&") {
		if part == param {
			return true
		}
	}
	return false
}
