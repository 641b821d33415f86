package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"climatehub.dev/hub/internal/clock"
	"climatehub.dev/hub/internal/errors"
	"climatehub.dev/hub/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventResponse writes a {"event":{"header":{...},"payload":<json>}} body,
// the two-stage envelope shape every cloud response uses.
func eventResponse(w http.ResponseWriter, headerName string, payload any) {
	inner, _ := json.Marshal(payload)
	body, _ := json.Marshal(map[string]any{
		"event": map[string]any{
			"header":  map[string]any{"name": headerName},
			"payload": json.RawMessage(inner),
		},
	})
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(protocol.RegionEU, nil, nil, clock.NewFake(time.Unix(1700000000, 0)))
	c.baseURL = srv.URL
	return c, srv.Close
}

func TestLoginStoresToken(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/account/login", r.URL.Path)
		assert.Equal(t, protocol.SpoofUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "1700000000", r.Header.Get("timestamp"))
		assert.NotEmpty(t, r.Header.Get("token"))
		eventResponse(w, "LoginResponse", loginResponsePayload{Token: "tok-123", UserID: "user-1"})
	}))
	defer closeSrv()

	err := c.Login(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "tok-123", c.SessionToken())
	assert.Equal(t, "user-1", c.UserID())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		eventResponse(w, "LoginResponse", loginResponsePayload{Token: ""})
	}))
	defer closeSrv()

	err := c.Login(context.Background(), "user@example.com", "hunter2")
	require.Error(t, err)
	assert.Equal(t, errors.KindAuthentication, errors.GetKind(err))
}

func TestGetFamiliesSendsAuthHeaderAfterLogin(t *testing.T) {
	var sawSession, sawUserID string
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/login":
			eventResponse(w, "LoginResponse", loginResponsePayload{Token: "tok-abc", UserID: "user-1"})
		case "/appsync/group/member/getfamilylist":
			sawSession = r.Header.Get("loginsession")
			sawUserID = r.Header.Get("userid")
			eventResponse(w, "getFamilyList", familiesResponsePayload{Families: []Family{{FamilyID: "fam-1", Name: "Home"}}})
		}
	}))
	defer closeSrv()

	require.NoError(t, c.Login(context.Background(), "user@example.com", "hunter2"))
	families, err := c.GetFamilies(context.Background())
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, "fam-1", families[0].FamilyID)
	assert.Equal(t, "tok-abc", sawSession)
	assert.Equal(t, "user-1", sawUserID)
}

func TestGetDevicesMergesSharedDevices(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appsync/group/dev/query", r.URL.Path)
		eventResponse(w, "getDeviceList", devicesResponsePayload{
			Devices:         []Device{{EndpointID: "ep-1", FriendlyName: "Living Room", ProductID: "p1", Cookie: "c1"}},
			SharedFromOther: []Device{{EndpointID: "ep-2", FriendlyName: "Shared Unit"}},
		})
	}))
	defer closeSrv()

	devices, err := c.GetDevices(context.Background(), "fam-1")
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "ep-1", devices[0].EndpointID)
	assert.Equal(t, "ep-2", devices[1].EndpointID)
}

func TestBulkQueryState(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device/control/v2/querystate", r.URL.Path)
		eventResponse(w, "queryState", map[string]any{
			"status": 0,
			"data":   []map[string]any{{"did": "ep-1", "status": 0}},
		})
	}))
	defer closeSrv()

	states, err := c.BulkQueryState(context.Background(), []protocol.DeviceRef{{EndpointID: "ep-1"}})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.True(t, states[0].Online)
}

func TestGetParams(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device/control/v2/sdkcontrol", r.URL.Path)
		assert.Equal(t, protocol.License, r.URL.Query().Get("license"))
		dataJSON, _ := json.Marshal(map[string]any{"params": []string{"temp"}, "vals": [][]map[string]int{{{"val": 220, "idx": 1}}}})
		eventResponse(w, "KeyValueControl", map[string]any{"status": 0, "data": string(dataJSON)})
	}))
	defer closeSrv()

	params, err := c.GetParams(context.Background(), protocol.DeviceRef{EndpointID: "ep-1"}, protocol.ACParams)
	require.NoError(t, err)
	assert.Equal(t, 220, params["temp"])
}

func TestGetParamsSurfacesDeviceOffline(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]any{
			"event": map[string]any{
				"header":  map[string]any{"name": "ErrorResponse"},
				"payload": map[string]any{"type": "ENDPOINT_UNREACHABLE", "message": "offline", "status": -1},
			},
		})
		w.Write(body)
	}))
	defer closeSrv()

	_, err := c.GetParams(context.Background(), protocol.DeviceRef{EndpointID: "ep-1"}, protocol.ACParams)
	require.Error(t, err)
	assert.Equal(t, errors.KindDeviceOffline, errors.GetKind(err))
}

func TestSetParamsSurfacesVendorError(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		body, _ := json.Marshal(map[string]any{
			"event": map[string]any{
				"header":  map[string]any{"name": "ErrorResponse"},
				"payload": map[string]any{"type": "AuxAPIError", "message": "busy", "status": -49002},
			},
		})
		w.Write(body)
	}))
	defer closeSrv()

	err := c.SetParams(context.Background(), protocol.DeviceRef{EndpointID: "ep-1"}, map[string]int{"pwr": 1})
	require.Error(t, err)
	assert.Equal(t, errors.KindServerBusy, errors.GetKind(err))
}

func TestPostSurfacesNonOKStatus(t *testing.T) {
	c, closeSrv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer closeSrv()

	_, err := c.GetFamilies(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.KindClimateHub, errors.GetKind(err))
}
