package clientcli_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/pmsgate/clientcli"
)

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:8000", Token: "abc"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", client.Endpoint())
	})

	t.Run("empty endpoint uses default", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{})
		require.NoError(t, err)
		assert.Equal(t, clientcli.DefaultEndpoint, client.Endpoint())
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://localhost:8000/"})
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000", client.Endpoint())
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := clientcli.New(nil)
		assert.ErrorIs(t, err, clientcli.ErrConfigRequired)
	})
}

func TestClient_Login(t *testing.T) {
	t.Run("token member", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/login", r.URL.Path)
			assert.Empty(t, r.Header.Get("Authorization"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"user": "ada@example.com", "password": "s3cret"}, body)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"session-1","people_id":7}`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
		require.NoError(t, err)

		result, err := client.Login(context.Background(), "ada@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "session-1", result.Token)
		assert.Equal(t, "ada@example.com", result.User)
		assert.JSONEq(t, `{"token":"session-1","people_id":7}`, string(result.Raw))
	})

	t.Run("invalid credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Id not found (or no read access)"}`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = client.Login(context.Background(), "a", "b")
		require.Error(t, err)
		assert.ErrorIs(t, err, clientcli.ErrNotFound)

		var apiErr *clientcli.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "Id not found (or no read access)", apiErr.Message)
		assert.True(t, apiErr.IsNotFound())
	})

	t.Run("result without token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
		require.NoError(t, err)

		_, err = client.Login(context.Background(), "a", "b")
		assert.ErrorIs(t, err, clientcli.ErrNoToken)
	})
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"json string", `"abc"`, "abc", false},
		{"object member", `{"token":"abc"}`, "abc", false},
		{"empty string", `""`, "", true},
		{"null", `null`, "", true},
		{"object without token", `{"id":1}`, "", true},
		{"numeric token", `{"token":5}`, "", true},
		{"array", `["abc"]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := clientcli.ExtractToken(json.RawMessage(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, clientcli.ErrNoToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("sends token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/people/7", r.URL.Path)
			assert.Equal(t, []string{"session-1"}, r.Header.Values("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":7,"name":"Ada"}` + "\n"))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Token: "session-1"})
		require.NoError(t, err)

		result, err := client.Get(context.Background(), "/people/7")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, result.Status)
		assert.Equal(t, `{"id":7,"name":"Ada"}`, string(result.Body))
	})

	t.Run("requires token", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Endpoint: "http://127.0.0.1:1"})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), "/people")
		assert.ErrorIs(t, err, clientcli.ErrTokenRequired)
	})

	t.Run("relative path", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Token: "t"})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), "people")
		assert.ErrorIs(t, err, clientcli.ErrInvalidPath)

		_, err = client.Get(context.Background(), "  ")
		assert.ErrorIs(t, err, clientcli.ErrEmptyPath)
	})

	t.Run("unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"No Authorization header found"}`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Token: "t"})
		require.NoError(t, err)

		_, err = client.Get(context.Background(), "/roles")
		assert.ErrorIs(t, err, clientcli.ErrUnauthorized)
		assert.Contains(t, err.Error(), "401 - No Authorization header found")
	})
}

func TestClient_Send(t *testing.T) {
	t.Run("put body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/roles/3", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, `{"name":"admin"}`, string(body))

			_, _ = w.Write([]byte(`true`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Token: "t"})
		require.NoError(t, err)

		result, err := client.Send(context.Background(), "put", "/roles/3", json.RawMessage(`{"name":"admin"}`))
		require.NoError(t, err)
		assert.Equal(t, http.MethodPut, result.Method)
		assert.Equal(t, "true", string(result.Body))
	})

	t.Run("invalid body", func(t *testing.T) {
		client, err := clientcli.New(&clientcli.Config{Token: "t"})
		require.NoError(t, err)

		_, err = client.Send(context.Background(), http.MethodPost, "/people", json.RawMessage(`{oops`))
		assert.ErrorIs(t, err, clientcli.ErrInvalidJSON)
	})

	t.Run("application error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"role name taken"}`))
		}))
		defer server.Close()

		client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Token: "t"})
		require.NoError(t, err)

		_, err = client.Send(context.Background(), http.MethodPost, "/roles", json.RawMessage(`{"name":"admin"}`))
		assert.ErrorIs(t, err, clientcli.ErrBadRequest)
		assert.Contains(t, err.Error(), "role name taken")
	})
}

func TestClient_PasswordFlow(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/password_forgot":
			assert.Equal(t, "ada@example.com", body["email"])
		case "/password_reset":
			assert.Equal(t, "R", body["token"])
			assert.Equal(t, "N", body["password"])
		}
		_, _ = w.Write([]byte(`true`))
	}))
	defer server.Close()

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = client.ForgotPassword(context.Background(), "ada@example.com")
	require.NoError(t, err)
	_, err = client.ResetPassword(context.Background(), "R", "N")
	require.NoError(t, err)

	assert.Equal(t, []string{"/password_forgot", "/password_reset"}, paths)
}

func TestClient_NonJSONResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy</html>"))
	}))
	defer server.Close()

	client, err := clientcli.New(&clientcli.Config{Endpoint: server.URL, Token: "t"})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/people")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")
}
