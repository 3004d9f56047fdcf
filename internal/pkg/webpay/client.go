// Package webpay é o cliente da API REST do Transbank Webpay Plus (v1.2):
// criação da transação e confirmação (commit) após o retorno do navegador.
package webpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"brasero/internal/domain"
)

const transactionsPath = "/rswebpaytransaction/api/webpay/v1.2/transactions"

// Config são as credenciais do comércio.
type Config struct {
	CommerceCode string
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
}

// Client implementa o gateway de pagamento sobre HTTP.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient cria o cliente; Timeout zero usa 30s.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// APIError é uma resposta não-2xx do Transbank.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("webpay: status %d: %s", e.StatusCode, e.Message)
}

type createRequest struct {
	BuyOrder  string `json:"buy_order"`
	SessionID string `json:"session_id"`
	Amount    int64  `json:"amount"`
	ReturnURL string `json:"return_url"`
}

type createResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type commitResponse struct {
	VCI        string  `json:"vci"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
	BuyOrder   string  `json:"buy_order"`
	SessionID  string  `json:"session_id"`
	CardDetail struct {
		CardNumber string `json:"card_number"`
	} `json:"card_detail"`
	AccountingDate     string    `json:"accounting_date"`
	TransactionDate    time.Time `json:"transaction_date"`
	AuthorizationCode  string    `json:"authorization_code"`
	PaymentTypeCode    string    `json:"payment_type_code"`
	ResponseCode       int       `json:"response_code"`
	InstallmentsAmount float64   `json:"installments_amount"`
	InstallmentsNumber int       `json:"installments_number"`
	Balance            float64   `json:"balance"`
}

// Create abre a transação e devolve o token e a URL do formulário de pagamento.
func (c *Client) Create(ctx context.Context, buyOrder, sessionID string, amount int64, returnURL string) (domain.GatewayTransaction, error) {
	var out createResponse
	err := c.do(ctx, http.MethodPost, transactionsPath, createRequest{
		BuyOrder:  buyOrder,
		SessionID: sessionID,
		Amount:    amount,
		ReturnURL: returnURL,
	}, &out)
	if err != nil {
		return domain.GatewayTransaction{}, err
	}
	if out.Token == "" || out.URL == "" {
		return domain.GatewayTransaction{}, fmt.Errorf("webpay: resposta de criação sem token ou url")
	}
	return domain.GatewayTransaction{Token: out.Token, URL: out.URL}, nil
}

// Commit confirma a transação identificada por token_ws.
func (c *Client) Commit(ctx context.Context, token string) (domain.CommitResult, error) {
	var out commitResponse
	if err := c.do(ctx, http.MethodPut, transactionsPath+"/"+url.PathEscape(token), nil, &out); err != nil {
		return domain.CommitResult{}, err
	}
	return domain.CommitResult{
		VCI:                out.VCI,
		Amount:             int64(math.Round(out.Amount)),
		Status:             out.Status,
		BuyOrder:           out.BuyOrder,
		SessionID:          out.SessionID,
		CardNumber:         out.CardDetail.CardNumber,
		AccountingDate:     out.AccountingDate,
		TransactionDate:    out.TransactionDate,
		AuthorizationCode:  out.AuthorizationCode,
		PaymentTypeCode:    out.PaymentTypeCode,
		ResponseCode:       out.ResponseCode,
		InstallmentsAmount: int64(math.Round(out.InstallmentsAmount)),
		InstallmentsNumber: out.InstallmentsNumber,
		Balance:            int64(math.Round(out.Balance)),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("webpay: encode: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("webpay: request: %w", err)
	}
	req.Header.Set("Tbk-Api-Key-Id", c.cfg.CommerceCode)
	req.Header.Set("Tbk-Api-Key-Secret", c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webpay: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("webpay: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			ErrorMessage string `json:"error_message"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if apiErr.ErrorMessage == "" {
			apiErr.ErrorMessage = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.ErrorMessage}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("webpay: decode: %w", err)
	}
	return nil
}
