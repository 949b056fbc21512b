package solana

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPClient_GetTokenBalance(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		if req.Method != "getTokenAccountsByOwner" {
			t.Errorf("expected method getTokenAccountsByOwner, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": []map[string]interface{}{
					{
						"pubkey": "acct1",
						"account": map[string]interface{}{
							"data": map[string]interface{}{
								"parsed": map[string]interface{}{
									"info": map[string]interface{}{
										"tokenAmount": map[string]interface{}{
											"amount":   "100000000000",
											"decimals": 6,
											"uiAmount": 100000.0,
										},
									},
								},
							},
						},
					},
					{
						"pubkey": "acct2",
						"account": map[string]interface{}{
							"data": map[string]interface{}{
								"parsed": map[string]interface{}{
									"info": map[string]interface{}{
										"tokenAmount": map[string]interface{}{
											// uiAmount missing: raw/decimals fallback
											"amount":   "2500000",
											"decimals": 6,
										},
									},
								},
							},
						},
					},
				},
			},
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)
	ctx := context.Background()

	balance, err := client.GetTokenBalance(ctx, "ownerWallet", "mintAddr")
	if err != nil {
		t.Fatalf("GetTokenBalance: %v", err)
	}

	if balance != 100002.5 {
		t.Errorf("expected balance 100002.5, got %v", balance)
	}
}

func TestHTTPClient_GetTokenBalance_NoAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  map[string]interface{}{"value": []interface{}{}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	balance, err := client.GetTokenBalance(context.Background(), "ownerWallet", "mintAddr")
	if err != nil {
		t.Fatalf("GetTokenBalance: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected 0 balance for wallet without token accounts, got %v", balance)
	}
}

func TestHTTPClient_GetLatestBlockhash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "getLatestBlockhash" {
			t.Errorf("expected method getLatestBlockhash, got %s", req.Method)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": map[string]interface{}{
					"blockhash": "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLjsQJqRzmtkB",
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if hash != "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLjsQJqRzmtkB" {
		t.Errorf("unexpected blockhash %q", hash)
	}
}

func TestHTTPClient_SendTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Method != "sendTransaction" {
			t.Errorf("expected method sendTransaction, got %s", req.Method)
		}
		if len(req.Params) < 1 || req.Params[0] != "c2lnbmVkdHg=" {
			t.Errorf("expected base64 tx as first param, got %v", req.Params)
		}

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7",
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	sig, err := client.SendTransaction(context.Background(), "c2lnbmVkdHg=")
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig == "" {
		t.Error("expected non-empty signature")
	}
}

func TestHTTPClient_GetSignatureStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": []interface{}{
					map[string]interface{}{
						"slot":               int64(123456),
						"confirmations":      5,
						"confirmationStatus": "confirmed",
						"err":                nil,
					},
					nil,
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL)

	statuses, err := client.GetSignatureStatuses(context.Background(), []string{"sig1", "sig2"})
	if err != nil {
		t.Fatalf("GetSignatureStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Confirmed() {
		t.Error("expected first signature confirmed")
	}
	if statuses[1] != nil {
		t.Error("expected nil status for unknown signature")
	}
}

func TestHTTPClient_RPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error": map[string]interface{}{
				"code":    -32602,
				"message": "invalid params",
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	_, err := client.GetLatestBlockhash(context.Background())
	if err == nil {
		t.Fatal("expected RPC error")
	}
	if calls.Load() != 1 {
		t.Errorf("RPC errors must not be retried, got %d calls", calls.Load())
	}
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req rpcRequest
		json.NewDecoder(r.Body).Decode(&req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result": map[string]interface{}{
				"value": map[string]interface{}{"blockhash": "abc"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, WithRetryDelay(time.Millisecond))

	hash, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if hash != "abc" {
		t.Errorf("unexpected blockhash %q", hash)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}
