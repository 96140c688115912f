package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestContext drives a scenario against a running back-office instance. It
// keeps the last HTTP exchange and the ids captured along the way so later
// steps can say "the application" without repeating identifiers.
type TestContext struct {
	baseURL    string
	adminToken string
	client     *http.Client

	tenantID string
	role     string
	tokens   map[string]string

	lastStatus int
	lastBody   []byte

	applicationID string
	documentID    string
	referenceID   string
	accountID     string
}

// NewTestContext points the suite at a deployed instance. adminToken must
// match the server's admin token so scenarios can mint their own credentials.
func NewTestContext(baseURL, adminToken string) *TestContext {
	return &TestContext{
		baseURL:    strings.TrimRight(baseURL, "/"),
		adminToken: adminToken,
		client:     &http.Client{Timeout: 10 * time.Second},
		tokens:     make(map[string]string),
	}
}

// Reset gives the scenario a fresh tenant so runs never observe each other's
// applications, and drops all state carried over from the previous scenario.
func (tc *TestContext) Reset() {
	tc.tenantID = uuid.NewString()
	tc.role = ""
	tc.tokens = make(map[string]string)
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.applicationID = ""
	tc.documentID = ""
	tc.referenceID = ""
	tc.accountID = ""
}

// SignInAs mints a token for the given role inside the scenario's tenant and
// makes it the Authorization credential for subsequent requests. Tokens are
// cached per role so a scenario can switch back and forth between actors.
func (tc *TestContext) SignInAs(role string) error {
	if _, ok := tc.tokens[role]; ok {
		tc.role = role
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"actor_id":  uuid.NewString(),
		"tenant_id": tc.tenantID,
		"role":      role,
		"ttl":       "30m",
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+"/admin/tokens", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Token", tc.adminToken)

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("minting %s token: %w", role, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("minting %s token: unexpected status %d: %s", role, resp.StatusCode, body)
	}

	var minted struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &minted); err != nil {
		return fmt.Errorf("minting %s token: %w", role, err)
	}
	if minted.Token == "" {
		return fmt.Errorf("minting %s token: response carried no token", role)
	}

	tc.tokens[role] = minted.Token
	tc.role = role
	return nil
}

// POST sends a JSON body to the given path as the signed-in actor and records
// the response for later assertions. A nil body sends an empty request.
func (tc *TestContext) POST(path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

// GET fetches the given path as the signed-in actor. Extra headers override
// any defaults of the same name.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequest(http.MethodGet, tc.baseURL+path, nil)
	if err != nil {
		return err
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	if tc.role != "" && req.Header.Get("Authorization") == "" {
		if token := tc.tokens[tc.role]; token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.lastStatus = resp.StatusCode
	tc.lastBody = body
	return nil
}

// GetLastResponseStatus returns the HTTP status of the most recent exchange.
func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

// GetLastResponseBody returns the raw body of the most recent exchange so
// steps can decode shapes the generic field accessor does not cover.
func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

// GetResponseField walks a dot-separated path through the last JSON response
// and returns the value found there. It errors when the response is not an
// object or the path is absent, carrying the body for diagnostics.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(tc.lastBody, &payload); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w (body: %s)", err, tc.lastBody)
	}
	var current interface{} = payload
	for _, part := range strings.Split(field, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		value, ok := obj[part]
		if !ok {
			return nil, fmt.Errorf("field %q not present in response: %s", field, tc.lastBody)
		}
		current = value
	}
	return current, nil
}

// TenantID exposes the scenario's tenant for steps that mint extra actors.
func (tc *TestContext) TenantID() string {
	return tc.tenantID
}

// Saved-id accessors. Steps store the ids they create so later steps can
// build paths without parsing responses again.

func (tc *TestContext) SetApplicationID(id string) { tc.applicationID = id }
func (tc *TestContext) GetApplicationID() string   { return tc.applicationID }

func (tc *TestContext) SetDocumentID(id string) { tc.documentID = id }
func (tc *TestContext) GetDocumentID() string   { return tc.documentID }

func (tc *TestContext) SetReferenceID(id string) { tc.referenceID = id }
func (tc *TestContext) GetReferenceID() string   { return tc.referenceID }

func (tc *TestContext) SetAccountID(id string) { tc.accountID = id }
func (tc *TestContext) GetAccountID() string   { return tc.accountID }
