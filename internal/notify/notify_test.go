package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotify(t *testing.T) {
	var received Summary
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier(server.URL)
	err := n.Notify(context.Background(), Summary{
		Slug:      "vaaranam-aayiram-ninaikatha-bgm",
		MediaName: "Vaaranam Aayiram",
		ItemName:  "Ninaikatha",
	})

	assert.NoError(t, err)
	assert.Equal(t, "vaaranam-aayiram-ninaikatha-bgm", received.Slug)
}

func TestWebhookNotifyErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := NewNotifier(server.URL)
	err := n.Notify(context.Background(), Summary{Slug: "x"})

	assert.Error(t, err)
}

func TestNoopNotifierWhenUnconfigured(t *testing.T) {
	n := NewNotifier("")

	assert.NoError(t, n.Notify(context.Background(), Summary{Slug: "x"}))
}
