package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

const baseURL = "http://localhost:3000/api"

// Smoke test for the history endpoints against a locally running
// server. Registers a throwaway user, builds a page, mutates blocks
// and walks the history views.
//
// Usage: go run scripts/test_history_api.go

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func dataField(body []byte) map[string]interface{} {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	json.Unmarshal(body, &envelope)
	return envelope.Data
}

func titled(text string) map[string]interface{} {
	return map[string]interface{}{"title": []interface{}{[]interface{}{text}}}
}

func main() {
	color.Cyan("Starting Block History API Smoke Test\n")

	// 1. Register + login
	color.Yellow("\n[AUTH] 1. Register throwaway user")
	email := "smoke-" + uuid.NewString() + "@example.com"
	resp, body, err := sendRequest("POST", "/auth/v1/register", "", map[string]interface{}{
		"email": email, "full_name": "Smoke Tester", "password": "supersecret1",
	})
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)

	color.Yellow("\n[AUTH] 2. Login")
	resp, body, err = sendRequest("POST", "/auth/v1/login", "", map[string]interface{}{
		"email": email, "password": "supersecret1",
	})
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	token, _ := dataField(body)["access_token"].(string)
	color.Green("Status: %s", resp.Status)

	// 2. Create a page
	color.Yellow("\n[PAGE] 3. Create page")
	resp, body, err = sendRequest("POST", "/page/v1/", token, map[string]interface{}{
		"title": "Smoke Test Page",
	})
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	pageId, _ := dataField(body)["id"].(string)
	color.Green("Status: %s (page %s)", resp.Status, pageId)

	// 3. Bulk save with history
	color.Yellow("\n[BLOCK] 4. Save blocks with history")
	resp, body, err = sendRequest("PUT", "/page/v1/"+pageId+"/blocks/", token, map[string]interface{}{
		"blocks": []map[string]interface{}{
			{"type": "heading", "properties": titled("Smoke Test Page")},
			{"type": "paragraph", "properties": titled("First paragraph")},
			{"type": "list", "properties": titled("Item one")},
		},
		"save_history": true,
	})
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(dataField(body))

	// 4. Timeline
	color.Yellow("\n[HISTORY] 5. Timeline")
	resp, body, err = sendRequest("GET", "/page/v1/"+pageId+"/history/timeline", token, nil)
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	fmt.Println(string(body))

	// 5. Snapshots
	color.Yellow("\n[HISTORY] 6. Recent snapshots")
	resp, body, err = sendRequest("GET", "/page/v1/"+pageId+"/history/snapshots", token, nil)
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	fmt.Println(string(body))

	// 6. Cleanup with a generous window
	color.Yellow("\n[HISTORY] 7. Retention cleanup (365 days)")
	resp, body, err = sendRequest("POST", "/history/v1/cleanup?days=365", token, nil)
	if err != nil || resp.StatusCode >= 300 {
		color.Red("Failed: %v (%s)", err, string(body))
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(dataField(body))

	color.Cyan("\nSmoke test finished")
}
