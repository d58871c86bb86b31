package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	runner := NewRunnerWithWriters(&stdout, &stderr)
	args = append(args, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	code := runner.Run(args)
	return code, stdout.String(), stderr.String()
}

func decodeEnvelope(t *testing.T, raw string) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, raw)
	}
	return env
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if strings.TrimSpace(stdout) == "" {
		t.Fatal("expected version output")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	code, _, stderr := runCLI(t, "definitely-not-a-command")
	if code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
	env := decodeEnvelope(t, stderr)
	if env["success"] != false {
		t.Fatalf("expected failure envelope: %s", stderr)
	}
	errBody := env["error"].(map[string]any)
	if errBody["type"] != "usage_error" {
		t.Fatalf("unexpected error type: %v", errBody["type"])
	}
}

func TestRunEnableCommandsBlocks(t *testing.T) {
	code, _, stderr := runCLI(t, "version", "--enable-commands", "coins list")
	if code != 16 {
		t.Fatalf("exit code = %d, want 16", code)
	}
	env := decodeEnvelope(t, stderr)
	errBody := env["error"].(map[string]any)
	if errBody["type"] != "command_blocked" {
		t.Fatalf("unexpected error type: %v", errBody["type"])
	}
}

func TestRunSchemaCommand(t *testing.T) {
	code, stdout, stderr := runCLI(t, "schema", "coins")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr)
	}
	env := decodeEnvelope(t, stdout)
	data := env["data"].(map[string]any)
	if !strings.Contains(data["path"].(string), "coins") {
		t.Fatalf("unexpected schema root: %v", data["path"])
	}
	if data["subcommands"] == nil {
		t.Fatal("expected coin subcommands in schema")
	}
}

func TestRunUnknownNetwork(t *testing.T) {
	code, _, stderr := runCLI(t, "coins", "list", "--address", "0xa", "--network", "nopenet")
	if code != 10 {
		t.Fatalf("exit code = %d, want 10\n%s", code, stderr)
	}
}

func TestRunCoinsListAgainstFakeEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64 `json:"id"`
			Method string `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var result any
		switch req.Method {
		case "suix_getAllCoins":
			result = map[string]any{
				"data": []map[string]any{
					{"coinType": "0x2::sui::SUI", "coinObjectId": "0xc1", "version": "1", "digest": "D1", "balance": "3000000000"},
					{"coinType": "0x2::sui::SUI", "coinObjectId": "0xc2", "version": "1", "digest": "D2", "balance": "1000000000"},
				},
				"nextCursor":  nil,
				"hasNextPage": false,
			}
		case "suix_getCoinMetadata":
			result = map[string]any{
				"decimals": 9, "name": "Sui", "symbol": "SUI", "description": "", "iconUrl": nil,
			}
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	defer server.Close()

	code, stdout, stderr := runCLI(t, "coins", "list", "--address", "0xa", "--rpc-url", server.URL)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr)
	}
	env := decodeEnvelope(t, stdout)
	data := env["data"].(map[string]any)
	if data["total_coins"].(float64) != 2 {
		t.Fatalf("unexpected aggregation: %s", stdout)
	}
	groups := data["groups"].([]any)
	first := groups[0].(map[string]any)
	if first["symbol"] != "SUI" || first["formatted_balance"] != "4.0000" {
		t.Fatalf("unexpected group: %s", stdout)
	}
}

func TestRunCoinsSplitDryRunWithFakeBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	tmp := t.TempDir()
	script := filepath.Join(tmp, "sui")
	payload := `{"digest":"FakeDigest","effects":{"status":{"status":"success"},"gasUsed":{"computationCost":"100","storageCost":"10","storageRebate":"5"},"created":[]}}`
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho '"+payload+"'\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	t.Setenv("SUICOIN_SUI_BINARY", script)
	t.Setenv("SUICOIN_JOURNAL_PATH", filepath.Join(tmp, "ops.db"))
	t.Setenv("SUICOIN_JOURNAL_LOCK_PATH", filepath.Join(tmp, "ops.lock"))

	code, stdout, stderr := runCLI(t, "coins", "split", "--coin-id", "0xc1", "--amounts", "100,200", "--dry-run")
	if code != 0 {
		t.Fatalf("exit code = %d, stderr=%s", code, stderr)
	}
	env := decodeEnvelope(t, stdout)
	data := env["data"].(map[string]any)
	if data["success"] != true || data["digest"] != "FakeDigest" || data["gas_used"] != "105" {
		t.Fatalf("unexpected result: %s", stdout)
	}
}

func TestRunEnvActiveAddressFailureSanitized(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake")
	}
	tmp := t.TempDir()
	script := filepath.Join(tmp, "sui")
	stderrLine := "Error: keystore at /home/user/.sui/keystore holds suiprivkey1qabcdef"
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho '"+stderrLine+"' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	t.Setenv("SUICOIN_SUI_BINARY", script)

	code, _, stderr := runCLI(t, "env", "active-address")
	if code != 12 {
		t.Fatalf("exit code = %d, want 12\n%s", code, stderr)
	}
	env := decodeEnvelope(t, stderr)
	errBody := env["error"].(map[string]any)
	message := errBody["message"].(string)
	if strings.Contains(message, "/home/") || strings.Contains(message, "suiprivkey") {
		t.Fatalf("secret material leaked: %q", message)
	}
	if strings.HasPrefix(message, "Error:") {
		t.Fatalf("tool prefix not stripped: %q", message)
	}
}

func TestRunResultsOnlyProjectsData(t *testing.T) {
	code, stdout, _ := runCLI(t, "schema", "--results-only", "--select", "path")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(stdout), &data); err != nil {
		t.Fatalf("decode data: %v\n%s", err, stdout)
	}
	if _, ok := data["path"]; !ok {
		t.Fatalf("projection missed path field: %s", stdout)
	}
	if _, ok := data["subcommands"]; ok {
		t.Fatalf("projection kept extra field: %s", stdout)
	}
}
