package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, content string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  DefaultModel,
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL+"/v1", "")
}

func TestTransactionDrafts(t *testing.T) {
	content := "```json\n[{\"type\":\"expense\",\"description\":\"mercado\",\"amount\":45.9},{\"type\":\"income\",\"description\":\"revisão bomba\",\"amount\":500,\"paymentMethod\":\"Cartão\"}]\n```"
	client := newTestClient(t, content)

	drafts, err := client.TransactionDrafts(context.Background(), "mercado 45,90")
	if err != nil {
		t.Fatalf("TransactionDrafts() error = %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(drafts))
	}
	if drafts[0].Type != "expense" || drafts[0].Description != "mercado" {
		t.Errorf("unexpected first draft: %+v", drafts[0])
	}
	if drafts[0].Amount.String() != "45.9" {
		t.Errorf("Amount = %q, want 45.9", drafts[0].Amount)
	}
	if drafts[1].PaymentMethod != "Cartão" {
		t.Errorf("PaymentMethod = %q, want Cartão", drafts[1].PaymentMethod)
	}
}

func TestTransactionDrafts_BareJSON(t *testing.T) {
	client := newTestClient(t, `[{"type":"expense","description":"luz","amount":120}]`)

	drafts, err := client.TransactionDrafts(context.Background(), "luz 120")
	if err != nil {
		t.Fatalf("TransactionDrafts() error = %v", err)
	}
	if len(drafts) != 1 || drafts[0].Description != "luz" {
		t.Errorf("unexpected drafts: %+v", drafts)
	}
}

func TestTransactionDrafts_InvalidJSON(t *testing.T) {
	client := newTestClient(t, "desculpe, não entendi o texto")

	if _, err := client.TransactionDrafts(context.Background(), "???"); err == nil {
		t.Error("TransactionDrafts() should fail on non-JSON response")
	}
}

func TestServiceOrder(t *testing.T) {
	order := "01 REVISÃO NA BOMBA DE DIREÇÃO\n\nVALOR: R$500,00\nPAGAMENTO: CARTÃO 4X\nVEICULO: LIFAN\nPLACA: ous3j11"
	client := newTestClient(t, "  "+order+"\n")

	got, err := client.ServiceOrder(context.Background(), "revisão na bomba lifan placa ous3j11 500 cartão 4x")
	if err != nil {
		t.Fatalf("ServiceOrder() error = %v", err)
	}
	if got != order {
		t.Errorf("ServiceOrder() = %q, want %q", got, order)
	}
}

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[1,2]\n```", `[1,2]`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONString(tt.input); got != tt.want {
				t.Errorf("cleanJSONString(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
