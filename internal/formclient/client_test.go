package formclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enteredValues() Values {
	return Values{
		Name:    "Jane Pilot",
		Email:   "jane@example.com",
		Program: "Discovery Flight",
		Message: "Hello",
	}
}

func TestSubmitSuccessClearsForm(t *testing.T) {
	var received submitPayload

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.Close)

	ctrl := New(ts.URL, ts.Client())
	assert.Equal(t, StatusIdle, ctrl.Status())
	assert.Equal(t, DefaultProgram, ctrl.Values().Program)

	ctrl.Set(enteredValues())
	require.NoError(t, ctrl.Submit(context.Background()))

	assert.Equal(t, StatusSent, ctrl.Status())
	assert.Empty(t, ctrl.ErrorMessage())
	assert.Equal(t, defaultValues(), ctrl.Values(), "success must reset the form")

	assert.Equal(t, "Jane Pilot", received.Name)
	assert.Equal(t, "", received.Honey, "human submissions keep the honeypot empty")
}

func TestSubmitServerErrorPreservesForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"ok":false,"error":"Server error. Please try again later."}`))
	}))
	t.Cleanup(ts.Close)

	ctrl := New(ts.URL, ts.Client())
	entered := enteredValues()
	ctrl.Set(entered)

	err := ctrl.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, StatusError, ctrl.Status())
	assert.Equal(t, "Server error. Please try again later.", ctrl.ErrorMessage())
	assert.Equal(t, entered, ctrl.Values(), "failure must not clear the form")
}

func TestSubmitUnparseableErrorBodyFallsBack(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream exploded</html>"))
	}))
	t.Cleanup(ts.Close)

	ctrl := New(ts.URL, ts.Client())
	ctrl.Set(enteredValues())

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, StatusError, ctrl.Status())
	assert.Equal(t, "Something went wrong. Please try again.", ctrl.ErrorMessage())
}

func TestSubmitNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing is listening any more

	ctrl := New(ts.URL, nil)
	entered := enteredValues()
	ctrl.Set(entered)

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, StatusError, ctrl.Status())
	assert.Equal(t, "Network error. Please try again.", ctrl.ErrorMessage())
	assert.Equal(t, entered, ctrl.Values())
}

func TestSubmitBlocksConcurrentSubmission(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.Close)

	ctrl := New(ts.URL, ts.Client())
	ctrl.Set(enteredValues())

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Submit(context.Background())
	}()

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("first submission never reached the server")
	}

	assert.Equal(t, StatusSending, ctrl.Status())
	assert.ErrorIs(t, ctrl.Submit(context.Background()), ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StatusSent, ctrl.Status())
}

func TestSubmitRetryAfterError(t *testing.T) {
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error":"Please fill out name, email, and message."}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(ts.Close)

	ctrl := New(ts.URL, ts.Client())
	ctrl.Set(Values{Email: "jane@example.com"})

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, StatusError, ctrl.Status())
	assert.Equal(t, "Please fill out name, email, and message.", ctrl.ErrorMessage())

	// The user fills in the gaps and tries again; error state is not sticky.
	ctrl.Set(enteredValues())
	require.NoError(t, ctrl.Submit(context.Background()))
	assert.Equal(t, StatusSent, ctrl.Status())
	assert.Empty(t, ctrl.ErrorMessage())
}

func TestOrientationRequestValues(t *testing.T) {
	req := OrientationRequest{
		Name:       "Jane Pilot",
		Email:      "jane@example.com",
		Goal:       "Private Pilot (PPL)",
		Experience: "No flight time yet",
	}

	v := req.Values()
	assert.Equal(t, OrientationProgram, v.Program)
	assert.True(t, strings.HasPrefix(v.Message, "ORIENTATION BOOKING REQUEST\n"))
	assert.Contains(t, v.Message, "Preferred Availability: N/A")
	assert.Contains(t, v.Message, "Goal: Private Pilot (PPL)")
	assert.Contains(t, v.Message, "Questions / Notes:\nN/A")
}
