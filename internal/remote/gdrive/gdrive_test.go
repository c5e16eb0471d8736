package gdrive

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/lherron/gxcopy/internal/domain"
)

// newTestClient points a Client at handler via a local endpoint.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "",
		option.WithEndpoint(srv.URL+"/drive/v3/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return c
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestListChildren(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/files"), r.URL.Path)
		assert.Equal(t, "'root1' in parents and trashed=false", r.URL.Query().Get("q"))

		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(t, w, map[string]interface{}{
				"nextPageToken": "p2",
				"files": []map[string]interface{}{{
					"id":          "f1",
					"name":        "Lab notes",
					"mimeType":    "application/vnd.google-apps.document",
					"parents":     []string{"root1"},
					"webViewLink": "https://docs/f1",
					"owners":      []map[string]string{{"displayName": "Alice", "emailAddress": "alice@school.org"}},
				}},
			})
			return
		}
		assert.Equal(t, "p2", r.URL.Query().Get("pageToken"))
		writeJSON(t, w, map[string]interface{}{
			"files": []map[string]interface{}{{
				"id": "d1", "name": "Labs", "mimeType": domain.FolderMimeType, "parents": []string{"root1"},
			}},
		})
	})

	page, err := c.ListChildren(context.Background(), "root1", "")
	require.NoError(t, err)
	assert.Equal(t, "p2", page.NextPageToken)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.Item{
		ID:        "f1",
		Name:      "Lab notes",
		Kind:      domain.KindFile,
		ParentIDs: []string{"root1"},
		Owners:    []domain.Owner{{DisplayName: "Alice", Email: "alice@school.org"}},
		ViewLink:  "https://docs/f1",
	}, page.Items[0])

	page, err = c.ListChildren(context.Background(), "root1", "p2")
	require.NoError(t, err)
	assert.Empty(t, page.NextPageToken)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Items[0].IsFolder())
}

func TestStatusErrorsAreClassified(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"code":503,"message":"backend unavailable"}}`)
	})

	_, err := c.GetItem(context.Background(), "x")
	apiErr, ok := domain.AsAPIError(err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.True(t, apiErr.Transient())
}

func TestMoveFileSendsParents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/f1"), r.URL.Path)
		assert.Equal(t, "td1", r.URL.Query().Get("addParents"))
		assert.Equal(t, "src1", r.URL.Query().Get("removeParents"))
		assert.Equal(t, "true", r.URL.Query().Get("supportsAllDrives"))
		writeJSON(t, w, map[string]interface{}{"id": "f1", "name": "F", "parents": []string{"td1"}})
	})

	it, err := c.MoveFile(context.Background(), "f1", "src1", "td1")
	require.NoError(t, err)
	assert.Equal(t, []string{"td1"}, it.ParentIDs)
}

func TestCopyFileSendsNameAndParent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/files/f1/copy"), r.URL.Path)

		var body struct {
			Name    string   `json:"name"`
			Parents []string `json:"parents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "MULTIFILE F", body.Name)
		assert.Equal(t, []string{"td1"}, body.Parents)

		writeJSON(t, w, map[string]interface{}{"id": "c1", "name": body.Name, "parents": body.Parents})
	})

	it, err := c.CopyFile(context.Background(), "f1", "td1", "MULTIFILE F")
	require.NoError(t, err)
	assert.Equal(t, "c1", it.ID)
}

func TestForbiddenCopyIsDenied(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"error":{"code":403,"message":"insufficient permissions"}}`)
	})

	_, err := c.CopyFile(context.Background(), "f1", "td1", "F")
	apiErr, ok := domain.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.Denied())
}

func TestTeamDrives(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/drives"), r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, map[string]interface{}{
				"drives": []map[string]string{{"id": "td1", "name": "Physics"}},
			})
		case http.MethodPost:
			assert.Equal(t, "req-123", r.URL.Query().Get("requestId"))
			writeJSON(t, w, map[string]string{"id": "td2", "name": "Chemistry"})
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	})

	page, err := c.ListTeamDrives(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []domain.TeamDrive{{ID: "td1", Name: "Physics"}}, page.Drives)

	td, err := c.CreateTeamDrive(context.Background(), "req-123", "Chemistry")
	require.NoError(t, err)
	assert.Equal(t, "td2", td.ID)
}
