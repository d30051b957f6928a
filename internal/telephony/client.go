// Package telephony is the HTTP client for the external voice-call
// service. The backend only asks for calls; dialing, retries on the line
// and speech all happen on the other side.
package telephony

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"carecall/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// requestTimeout bounds one webhook round trip.
const requestTimeout = 10 * time.Second

// MedicineInfo describes the medicine for the voice prompt.
type MedicineInfo struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	NextDoseTime string `json:"next_dose_time"`
	Instructions string `json:"instructions,omitempty"`
}

// CallReminderRequest asks the voice service to place a dose reminder call.
type CallReminderRequest struct {
	PhoneNumber        string       `json:"phone_number"`
	UserName           string       `json:"user_name"`
	UserType           string       `json:"user_type"`
	Medicine           MedicineInfo `json:"medicine"`
	HeadOfFamilyPhones []string     `json:"head_of_family_phones"`
	IsHeadOfFamilyCall bool         `json:"is_head_of_family_call"`
	PatientName        string       `json:"patient_name,omitempty"`
}

// CallBuyRequest asks for a purchase reminder call when supply runs low.
type CallBuyRequest struct {
	CallReminderRequest
	RemainingCount int `json:"remaining_count"`
	DaysSupplyLeft int `json:"days_supply_left"`
}

// CallResponse is the voice service's answer to a call request.
type CallResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	DispatchID string `json:"dispatch_id"`
}

// Client talks to the voice service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
	enabled    bool
	debug      bool
}

// NewClient creates a voice service client. An empty baseURL creates a
// disabled client that skips all calls.
func NewClient(baseURL, apiKey, apiSecret string, debug bool) *Client {
	if baseURL == "" {
		log.Println("Voice service disabled: VOICE_BASE_URL not configured")
		return &Client{enabled: false, debug: debug}
	}

	log.Printf("Voice service enabled: url=%s", baseURL)
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		httpClient: &http.Client{Timeout: requestTimeout},
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the client will actually place requests.
func (c *Client) IsEnabled() bool {
	return c.enabled
}

// CallReminder requests a dose reminder call.
func (c *Client) CallReminder(ctx context.Context, req CallReminderRequest) (*CallResponse, error) {
	if !c.enabled {
		log.Printf("Skipping voice call (service disabled): reminder for %s", req.UserName)
		return nil, nil
	}
	return c.post(ctx, "/call-reminder", req)
}

// CallBuy requests a purchase reminder call for a low medication supply.
func (c *Client) CallBuy(ctx context.Context, req CallBuyRequest) (*CallResponse, error) {
	if !c.enabled {
		log.Printf("Skipping voice call (service disabled): buy reminder for %s", req.UserName)
		return nil, nil
	}
	return c.post(ctx, "/call-buy", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (*CallResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call request: %w", err)
	}

	if c.debug {
		log.Printf("[DEBUG] Voice request POST %s%s: %s", c.baseURL, path, body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build call request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.apiKey != "" && c.apiSecret != "" {
		token, err := c.authToken()
		if err != nil {
			return nil, fmt.Errorf("failed to sign voice request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("voice service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("voice service returned %d: %s", resp.StatusCode, snippet)
	}

	var callResp CallResponse
	if err := json.NewDecoder(resp.Body).Decode(&callResp); err != nil {
		return nil, fmt.Errorf("failed to decode voice response: %w", err)
	}
	if !callResp.Success {
		return &callResp, fmt.Errorf("voice service rejected call: %s", callResp.Message)
	}

	log.Printf("Voice call dispatched: path=%s, dispatch_id=%s", path, callResp.DispatchID)
	return &callResp, nil
}

// authToken mints a short-lived HS256 bearer from the configured API
// key/secret pair.
func (c *Client) authToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.apiKey,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(5 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.apiSecret))
}

// UserTypeFor maps a member age group onto the voice service's user types.
func UserTypeFor(ageGroup string) string {
	switch ageGroup {
	case models.AgeGroupMinor:
		return "kid"
	case models.AgeGroupSenior:
		return "senior"
	default:
		return "adult"
	}
}
