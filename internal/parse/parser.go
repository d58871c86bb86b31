package parse

import (
	"encoding/json"
	"math/big"
	"regexp"
	"strings"

	clierr "github.com/afuentes/suicoin/internal/errors"
	"github.com/afuentes/suicoin/internal/model"
)

// genericParseFailure is the only message surfaced when neither parser
// recognizes the tool output; the raw text is deliberately discarded.
const genericParseFailure = "could not interpret tool output"

type txPayload struct {
	Digest  string     `json:"digest"`
	Effects *txEffects `json:"effects"`
}

type txEffects struct {
	TransactionDigest string `json:"transactionDigest"`
	Status            struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	} `json:"status"`
	GasUsed struct {
		ComputationCost string `json:"computationCost"`
		StorageCost     string `json:"storageCost"`
		StorageRebate   string `json:"storageRebate"`
	} `json:"gasUsed"`
	Created []struct {
		Reference struct {
			ObjectID string `json:"objectId"`
		} `json:"reference"`
	} `json:"created"`
}

// ParseStructured decodes the JSON form the tool emits for committed
// transactions (and for native-path dry runs).
func ParseStructured(raw string) (model.OperationResult, error) {
	var payload txPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return model.OperationResult{}, clierr.New(clierr.CodeParse, genericParseFailure)
	}

	result := model.OperationResult{Digest: payload.Digest}
	if payload.Effects == nil {
		if result.Digest == "" {
			return model.OperationResult{}, clierr.New(clierr.CodeParse, genericParseFailure)
		}
		result.Success = true
		return result, nil
	}

	effects := payload.Effects
	if result.Digest == "" {
		result.Digest = effects.TransactionDigest
	}
	result.Success = effects.Status.Status == "success"
	if !result.Success {
		msg := effects.Status.Error
		if strings.TrimSpace(msg) == "" {
			msg = "transaction failed"
		}
		result.Error = RewriteAbort(msg)
	}

	result.GasUsed = gasTotal(effects.GasUsed.ComputationCost, effects.GasUsed.StorageCost, effects.GasUsed.StorageRebate)
	for _, created := range effects.Created {
		if created.Reference.ObjectID != "" {
			result.NewCoinIDs = append(result.NewCoinIDs, created.Reference.ObjectID)
		}
	}
	return result, nil
}

var (
	statusPattern  = regexp.MustCompile(`execution status:\s*(\w+)`)
	gasCostPattern = regexp.MustCompile(`Estimated gas cost[^:\n]*:\s*(\d+)\s*MIST`)
	failurePattern = regexp.MustCompile(`execution status:\s*failure\s+due\s+to\s+([^\n]+)`)
)

// ParseDryRunText handles the free-text report of a transaction-block dry
// run, which cannot be requested in JSON form. A JSON fast path covers tool
// versions that emit structured output anyway.
func ParseDryRunText(raw string) (model.OperationResult, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		if result, err := ParseStructured(trimmed); err == nil {
			return result, nil
		}
	}

	statusMatch := statusPattern.FindStringSubmatch(raw)
	if statusMatch == nil {
		return model.OperationResult{}, clierr.New(clierr.CodeParse, genericParseFailure)
	}

	result := model.OperationResult{Success: statusMatch[1] == "success"}
	if gasMatch := gasCostPattern.FindStringSubmatch(raw); gasMatch != nil {
		result.GasUsed = gasMatch[1]
	}
	if !result.Success {
		if failMatch := failurePattern.FindStringSubmatch(raw); failMatch != nil {
			result.Error = RewriteAbort(failMatch[1])
		} else {
			result.Error = "dry run failed"
		}
	}
	return result, nil
}

// abortRewrites maps the known abort codes to user-facing phrases. Anything
// outside this small table passes through after sanitization.
var abortRewrites = []struct {
	substring string
	message   string
}{
	{"InsufficientCoinBalance", "Insufficient balance for this split"},
	{"InvalidResultArity", "Transaction produced an unexpected number of results"},
}

func RewriteAbort(clause string) string {
	for _, rewrite := range abortRewrites {
		if strings.Contains(clause, rewrite.substring) {
			return rewrite.message
		}
	}
	return SanitizeError(clause)
}

// gasTotal computes computationCost + storageCost - storageRebate with
// exact integer arithmetic. Missing fields count as zero. The rebate can
// exceed the costs when a transaction deletes objects; the total clamps at
// zero so the field stays an unsigned decimal string.
func gasTotal(computation, storage, rebate string) string {
	total := new(big.Int)
	total.Add(total, parseBig(computation))
	total.Add(total, parseBig(storage))
	total.Sub(total, parseBig(rebate))
	if total.Sign() < 0 {
		return "0"
	}
	if total.Sign() == 0 {
		return ""
	}
	return total.String()
}

func parseBig(v string) *big.Int {
	n, ok := new(big.Int).SetString(strings.TrimSpace(v), 10)
	if !ok {
		return new(big.Int)
	}
	return n
}
