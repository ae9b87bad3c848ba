//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

type product struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func TestSystem_E2E_CreateAndNotify(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")

	var products []product
	doJSON(t, http.MethodGet, baseURL+"/products", nil, &products, 200)
	if len(products) < 3 {
		t.Fatalf("expected seeded products, got %d", len(products))
	}

	id := 1000 + rand.Intn(1_000_000)
	var created product
	loc := doJSON(t, http.MethodPost, baseURL+"/products", product{ID: id, Name: "Widget"}, &created, 201)
	if created.ID != id || created.Name != "Widget" {
		t.Fatalf("created=%+v", created)
	}
	if !strings.HasSuffix(loc, "/products/"+strconv.Itoa(id)) {
		t.Fatalf("location=%q", loc)
	}

	assertNotified(t, id)

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartService(t, ctx, "catalog")
		waitReady(t, ctx, baseURL+"/readyz")
		assertNotified(t, id)
	}
}

func assertNotified(t *testing.T, id int) {
	t.Helper()

	var got product
	doJSON(t, http.MethodGet, baseURL+"/products/"+strconv.Itoa(id), nil, &got, 200)
	if !strings.HasPrefix(got.Name, "Widget") ||
		!strings.Contains(got.Name, "Cache Invalidated") ||
		!strings.Contains(got.Name, "Email sent") {
		t.Fatalf("product %d name=%q", id, got.Name)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

// doJSON returns the Location header of the response.
func doJSON(t *testing.T, method, url string, body any, out any, want int) string {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		t.Fatalf("%s %s: status=%d want=%d", method, url, resp.StatusCode, want)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.Header.Get("Location")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
