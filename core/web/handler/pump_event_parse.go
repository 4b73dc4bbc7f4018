package handler

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"

	"github.com/soltrackdao/pump_relay/core/codec"
	"github.com/soltrackdao/pump_relay/core/model"
)

// ErrMissingInstruction reports a transaction record that carries no
// instructions at all, as opposed to one whose instructions simply do not
// belong to the watched program.
var ErrMissingInstruction = errors.New("transaction has no instructions")

// anchor event-CPI instructions prefix the event body with their own 8-byte
// instruction discriminator
const eventCPIPrefixLen = 8

// InstructionSelector picks the top-level instruction the event is expected
// to live in, or nil when no candidate exists.
type InstructionSelector func(in *HeliusData, programID string) *InstructionsData

// SelectLastInstruction keeps the original positional shortcut: the last
// top-level instruction is assumed to be the watched program's.
func SelectLastInstruction(in *HeliusData, programID string) *InstructionsData {
	if len(in.Instructions) == 0 {
		return nil
	}
	return &in.Instructions[len(in.Instructions)-1]
}

// SelectByProgram scans every top-level instruction and picks the last one
// actually owned by the watched program.
func SelectByProgram(in *HeliusData, programID string) *InstructionsData {
	for i := len(in.Instructions) - 1; i >= 0; i-- {
		if in.Instructions[i].ProgramID == programID {
			return &in.Instructions[i]
		}
	}
	return nil
}

func SelectorFromName(name string) InstructionSelector {
	if name == "scan" {
		return SelectByProgram
	}
	return SelectLastInstruction
}

// extractPumpEvent locates the event bytes inside the transaction's
// instruction tree. A (nil, nil) return means the transaction does not carry
// an event for the watched program, which is normal for TRANSFER records of
// other programs.
func extractPumpEvent(in *HeliusData, programID string, selector InstructionSelector) ([]byte, error) {
	if len(in.Instructions) == 0 {
		return nil, ErrMissingInstruction
	}

	instruction := selector(in, programID)
	if instruction == nil || instruction.ProgramID != programID {
		return nil, nil
	}

	if len(instruction.InnerInstructions) == 0 {
		return nil, nil
	}

	data := instruction.InnerInstructions[len(instruction.InnerInstructions)-1].Data
	if data == "" {
		return nil, nil
	}

	raw, err := base58.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode inner instruction data, %v", codec.ErrMalformedEvent, err)
	}

	if len(raw) <= eventCPIPrefixLen {
		return nil, fmt.Errorf("%w: inner instruction data of %d bytes is too short", codec.ErrMalformedEvent, len(raw))
	}

	return raw[eventCPIPrefixLen:], nil
}

func toDecimal(amount string, decimal int) float64 {
	da, ok := new(big.Float).SetString(amount)
	if !ok {
		return float64(0)
	}

	precision := new(big.Float).SetFloat64(math.Pow10(decimal))

	result := new(big.Float).Quo(da, precision)
	res, _ := result.Float64()

	return res
}

// symbolFromDescription picks the traded token's display symbol out of the
// helius description template ("<addr> transferred <amt> <SYMBOL> to ...").
// Any upstream template change silently breaks this; there is no structured
// source for the symbol in the payload.
func symbolFromDescription(description string) string {
	words := strings.Fields(description)
	if len(words) < 4 {
		return ""
	}
	return words[3]
}

// normalizeTradeEvent maps the decoded raw event into human-readable units:
// fixed-point amounts are scaled by the configured decimals and address
// fields become base-58 strings.
func normalizeTradeEvent(event *codec.Event, in *HeliusData, baseDecimals, tokenDecimals int) (model.PumpTradeData, error) {
	isBuy, err := event.Bool("isBuy")
	if err != nil {
		return model.PumpTradeData{}, fmt.Errorf("normalize trade event failed, %w", err)
	}

	solRaw, err := event.Uint64("solAmount")
	if err != nil {
		return model.PumpTradeData{}, fmt.Errorf("normalize trade event failed, %w", err)
	}

	tokenRaw, err := event.Uint64("tokenAmount")
	if err != nil {
		return model.PumpTradeData{}, fmt.Errorf("normalize trade event failed, %w", err)
	}

	user, err := event.PublicKey("user")
	if err != nil {
		return model.PumpTradeData{}, fmt.Errorf("normalize trade event failed, %w", err)
	}

	mint, err := event.PublicKey("mint")
	if err != nil {
		return model.PumpTradeData{}, fmt.Errorf("normalize trade event failed, %w", err)
	}

	return model.PumpTradeData{
		IsBuy:        isBuy,
		UserAddress:  user.String(),
		SolAmount:    toDecimal(fmt.Sprintf("%d", solRaw), baseDecimals),
		TokenAddress: mint.String(),
		TokenSymbol:  symbolFromDescription(in.Description),
		TokenAmount:  toDecimal(fmt.Sprintf("%d", tokenRaw), tokenDecimals),
		Signature:    in.Signature,
	}, nil
}
