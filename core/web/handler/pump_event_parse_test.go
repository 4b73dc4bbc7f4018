package handler

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltrackdao/pump_relay/core/codec"
)

const testProgramID = "6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"

// event-CPI instruction discriminator, opaque to the extractor
var testCPIPrefix = []byte{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

func buildTradeEventBody(t *testing.T, isBuy bool, solAmount, tokenAmount uint64, user, mint solana.PublicKey) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(mint.Bytes())
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, solAmount))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, tokenAmount))
	if isBuy {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(user.Bytes())
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, int64(1700000000)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(30_000_000_000)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(1_000_000_000_000)))

	return buf.Bytes()
}

func buildInnerData(t *testing.T, isBuy bool, solAmount, tokenAmount uint64, user, mint solana.PublicKey) string {
	t.Helper()

	discrim := codec.EventDiscriminator("TradeEvent")

	raw := append([]byte{}, testCPIPrefix...)
	raw = append(raw, discrim[:]...)
	raw = append(raw, buildTradeEventBody(t, isBuy, solAmount, tokenAmount, user, mint)...)

	return base58.Encode(raw)
}

func testKeys() (user, mint solana.PublicKey) {
	user = solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x22}, 32))
	mint = solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x11}, 32))
	return user, mint
}

func TestExtractPumpEventNoInstructions(t *testing.T) {
	tx := &HeliusData{Type: "TRANSFER", Signature: "SIG1"}

	_, err := extractPumpEvent(tx, testProgramID, SelectLastInstruction)
	assert.ErrorIs(t, err, ErrMissingInstruction)
}

func TestExtractPumpEventWrongProgram(t *testing.T) {
	user, mint := testKeys()
	tx := &HeliusData{
		Type:      "TRANSFER",
		Signature: "SIG1",
		Instructions: []InstructionsData{
			{
				ProgramID: "SomeOtherProgram1111111111111111111111111111",
				InnerInstructions: []InnerInstructionsData{
					{Data: buildInnerData(t, true, 1, 1, user, mint)},
				},
			},
		},
	}

	payload, err := extractPumpEvent(tx, testProgramID, SelectLastInstruction)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestExtractPumpEventNoInnerInstructions(t *testing.T) {
	tx := &HeliusData{
		Type:         "TRANSFER",
		Signature:    "SIG1",
		Instructions: []InstructionsData{{ProgramID: testProgramID}},
	}

	payload, err := extractPumpEvent(tx, testProgramID, SelectLastInstruction)
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestExtractPumpEventStripsCPIPrefix(t *testing.T) {
	user, mint := testKeys()
	tx := &HeliusData{
		Type:      "TRANSFER",
		Signature: "SIG1",
		Instructions: []InstructionsData{
			{ProgramID: "SomeOtherProgram1111111111111111111111111111"},
			{
				ProgramID: testProgramID,
				InnerInstructions: []InnerInstructionsData{
					{Data: "bogus"},
					{Data: buildInnerData(t, true, 500_000_000, 2_000_000, user, mint)},
				},
			},
		},
	}

	payload, err := extractPumpEvent(tx, testProgramID, SelectLastInstruction)
	require.NoError(t, err)
	require.NotNil(t, payload)

	discrim := codec.EventDiscriminator("TradeEvent")
	assert.Equal(t, discrim[:], payload[:codec.DiscriminatorSize])
}

func TestExtractPumpEventBadBase58(t *testing.T) {
	tx := &HeliusData{
		Type:      "TRANSFER",
		Signature: "SIG1",
		Instructions: []InstructionsData{
			{
				ProgramID: testProgramID,
				InnerInstructions: []InnerInstructionsData{
					{Data: "0OIl"}, // not base58
				},
			},
		},
	}

	_, err := extractPumpEvent(tx, testProgramID, SelectLastInstruction)
	assert.ErrorIs(t, err, codec.ErrMalformedEvent)
}

func TestSelectByProgram(t *testing.T) {
	tx := &HeliusData{
		Instructions: []InstructionsData{
			{ProgramID: testProgramID, Data: "first"},
			{ProgramID: "SomeOtherProgram1111111111111111111111111111"},
		},
	}

	// positional shortcut misses the watched instruction here
	last := SelectLastInstruction(tx, testProgramID)
	require.NotNil(t, last)
	assert.NotEqual(t, testProgramID, last.ProgramID)

	// scanning policy finds it
	scanned := SelectByProgram(tx, testProgramID)
	require.NotNil(t, scanned)
	assert.Equal(t, testProgramID, scanned.ProgramID)

	assert.Nil(t, SelectByProgram(&HeliusData{}, testProgramID))
}

func TestSelectorFromName(t *testing.T) {
	tx := &HeliusData{
		Instructions: []InstructionsData{
			{ProgramID: testProgramID},
			{ProgramID: "other"},
		},
	}

	assert.Equal(t, testProgramID, SelectorFromName("scan")(tx, testProgramID).ProgramID)
	assert.Equal(t, "other", SelectorFromName("last")(tx, testProgramID).ProgramID)
	assert.Equal(t, "other", SelectorFromName("")(tx, testProgramID).ProgramID)
}

func TestToDecimal(t *testing.T) {
	assert.Equal(t, 1.0, toDecimal("1000000000", 9))
	assert.Equal(t, 0.5, toDecimal("500000000", 9))
	assert.Equal(t, 2.0, toDecimal("2000000", 6))
	assert.Equal(t, 0.0, toDecimal("not a number", 9))
}

func TestSymbolFromDescription(t *testing.T) {
	assert.Equal(t, "PEPE", symbolFromDescription("7EcD transferred 1000 PEPE to 5abc"))
	assert.Equal(t, "", symbolFromDescription("too short"))
	assert.Equal(t, "", symbolFromDescription(""))
}

func TestNormalizeTradeEventRoundTrip(t *testing.T) {
	reg, err := codec.LoadIDLFile("")
	require.NoError(t, err)

	user, mint := testKeys()
	discrim := codec.EventDiscriminator("TradeEvent")
	payload := append(discrim[:], buildTradeEventBody(t, true, 1_000_000_000, 2_000_000, user, mint)...)

	event, err := reg.Decode(payload)
	require.NoError(t, err)

	tx := &HeliusData{
		Signature:   "SIG1",
		Description: "7EcD transferred 1000 PEPE to 5abc",
	}

	trade, err := normalizeTradeEvent(event, tx, 9, 6)
	require.NoError(t, err)

	assert.True(t, trade.IsBuy)
	assert.Equal(t, 1.0, trade.SolAmount)
	assert.Equal(t, 2.0, trade.TokenAmount)
	assert.Equal(t, user.String(), trade.UserAddress)
	assert.Equal(t, mint.String(), trade.TokenAddress)
	assert.Equal(t, "PEPE", trade.TokenSymbol)
	assert.Equal(t, "SIG1", trade.Signature)
}

func TestNormalizeTradeEventMissingField(t *testing.T) {
	event := &codec.Event{
		Name: "TradeEvent",
		Fields: map[string]interface{}{
			"isBuy": true,
		},
	}

	_, err := normalizeTradeEvent(event, &HeliusData{}, 9, 6)
	assert.Error(t, err)
}
