package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parra-inc/parra-cli/internal/auth"
)

func testNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestSession(t *testing.T) *auth.Session {
	t.Helper()

	h := auth.NewTestHelpers()
	manager, _, _ := auth.NewMockBuilder().
		WithStoredCredential(h.ValidCredential(testNow())).
		WithNow(testNow).
		Build()
	return auth.NewSession(manager)
}

func jsonBody(t *testing.T, v interface{}) *http.Response {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(bytes.NewReader(data)),
	}
}

func TestClient_AttachesBearerToken(t *testing.T) {
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer valid-token", req.Header.Get("Authorization"))
			return jsonBody(t, &Tenant{ID: "tenant-1", Name: "Acme"}), nil
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)
	tenant, err := client.GetTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", tenant.Name)
	assert.Len(t, doer.DoCalls, 1)
}

func TestClient_RefreshesBeforeRequest(t *testing.T) {
	h := auth.NewTestHelpers()
	manager, provider, _ := auth.NewMockBuilder().
		WithStoredCredential(h.ExpiringCredential(testNow())).
		WithRefreshResult(&auth.RefreshResponse{
			AccessToken: "refreshed-access",
			ExpiresIn:   7200,
		}, nil).
		WithNow(testNow).
		Build()
	session := auth.NewSession(manager)

	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer refreshed-access", req.Header.Get("Authorization"))
			return jsonBody(t, &Tenant{ID: "tenant-1"}), nil
		},
	}

	client := NewClientWithDoer(session, "https://api.test/v1", doer)
	_, err := client.GetTenant(context.Background(), "tenant-1")
	require.NoError(t, err)
	assert.Len(t, provider.RefreshGrantCalls, 1)
}

func TestClient_CurrentUserIsCached(t *testing.T) {
	calls := 0
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			calls++
			assert.Equal(t, "/v1/user-info", req.URL.Path)
			return jsonBody(t, userInfoResponse{User: User{ID: "user-1", Email: "dev@example.com"}}), nil
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)

	first, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	second, err := client.CurrentUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "identity should be fetched once per process")
}

func TestClient_ListTenantsUsesUserID(t *testing.T) {
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			switch req.URL.Path {
			case "/v1/user-info":
				return jsonBody(t, userInfoResponse{User: User{ID: "user-1"}}), nil
			case "/v1/users/user-1/tenants":
				return jsonBody(t, []Tenant{{ID: "t1", Name: "One"}, {ID: "t2", Name: "Two"}}), nil
			default:
				t.Fatalf("unexpected path %s", req.URL.Path)
				return nil, nil
			}
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)
	tenants, err := client.ListTenants(context.Background())
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "One", tenants[0].Name)
}

func TestClient_ListApplications(t *testing.T) {
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "/v1/tenants/t1/applications", req.URL.Path)
			assert.Equal(t, "10000", req.URL.Query().Get("$top"))
			return jsonBody(t, applicationCollection{Data: []Application{
				{ID: "a1", Name: "My App", Type: "ios"},
			}}), nil
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)
	apps, err := client.ListApplications(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "My App", apps[0].Name)
}

func TestClient_CreateApplication(t *testing.T) {
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			var body applicationRequest
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "My App", body.Name)
			assert.Equal(t, "ios", body.Type)
			assert.Equal(t, "com.acme.my-app", body.IOSBundleID)
			assert.True(t, body.IsNewProject)

			return jsonBody(t, &Application{ID: "a1", Name: "My App", Type: "ios"}), nil
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)
	app, err := client.CreateApplication(context.Background(), "t1", "My App", "com.acme.my-app")
	require.NoError(t, err)
	assert.Equal(t, "a1", app.ID)
}

func TestClient_SurfacesAPIErrors(t *testing.T) {
	doer := &auth.MockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(bytes.NewBufferString(`{"message":"tenant not found"}`)),
			}, nil
		},
	}

	client := NewClientWithDoer(newTestSession(t), "https://api.test/v1", doer)
	_, err := client.GetTenant(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "tenant not found")
}

func TestClient_AuthFailureShortCircuits(t *testing.T) {
	manager, _, _ := auth.NewMockBuilder().
		WithConfirmAnswer(false).
		Build()
	session := auth.NewSession(manager)

	doer := &auth.MockHTTPClient{}
	client := NewClientWithDoer(session, "https://api.test/v1", doer)

	_, err := client.GetTenant(context.Background(), "t1")
	require.Error(t, err)
	assert.True(t, auth.IsKind(err, auth.KindCancelled))
	assert.Empty(t, doer.DoCalls)
}
