package codec

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tradeEventFixture struct {
	mint                 solana.PublicKey
	solAmount            uint64
	tokenAmount          uint64
	isBuy                bool
	user                 solana.PublicKey
	timestamp            int64
	virtualSolReserves   uint64
	virtualTokenReserves uint64
}

func defaultTradeEvent() tradeEventFixture {
	return tradeEventFixture{
		mint:                 solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x11}, 32)),
		solAmount:            1_000_000_000,
		tokenAmount:          2_000_000,
		isBuy:                true,
		user:                 solana.PublicKeyFromBytes(bytes.Repeat([]byte{0x22}, 32)),
		timestamp:            1700000000,
		virtualSolReserves:   30_000_000_000,
		virtualTokenReserves: 1_000_000_000_000,
	}
}

func (f tradeEventFixture) body(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.Write(f.mint.Bytes())
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.solAmount))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.tokenAmount))
	if f.isBuy {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.Write(f.user.Bytes())
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.timestamp))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.virtualSolReserves))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, f.virtualTokenReserves))

	return buf.Bytes()
}

func (f tradeEventFixture) payload(t *testing.T) []byte {
	t.Helper()

	discrim := EventDiscriminator("TradeEvent")
	return append(discrim[:], f.body(t)...)
}

func mustRegistry(t *testing.T) *Registry {
	t.Helper()

	reg, err := LoadIDL(defaultIDL)
	require.NoError(t, err)
	return reg
}

func TestDecodeTradeEvent(t *testing.T) {
	reg := mustRegistry(t)
	fixture := defaultTradeEvent()

	event, err := reg.Decode(fixture.payload(t))
	require.NoError(t, err)
	require.Equal(t, "TradeEvent", event.Name)
	require.Len(t, event.Fields, 8)

	isBuy, err := event.Bool("isBuy")
	require.NoError(t, err)
	assert.True(t, isBuy)

	solAmount, err := event.Uint64("solAmount")
	require.NoError(t, err)
	assert.Equal(t, fixture.solAmount, solAmount)

	tokenAmount, err := event.Uint64("tokenAmount")
	require.NoError(t, err)
	assert.Equal(t, fixture.tokenAmount, tokenAmount)

	user, err := event.PublicKey("user")
	require.NoError(t, err)
	assert.Equal(t, fixture.user, user)

	mint, err := event.PublicKey("mint")
	require.NoError(t, err)
	assert.Equal(t, fixture.mint, mint)

	timestamp, err := event.Int64("timestamp")
	require.NoError(t, err)
	assert.Equal(t, fixture.timestamp, timestamp)
}

func TestDecodeAsPositional(t *testing.T) {
	reg := mustRegistry(t)
	fixture := defaultTradeEvent()

	event, err := reg.DecodeAs("TradeEvent", fixture.body(t))
	require.NoError(t, err)
	assert.Equal(t, "TradeEvent", event.Name)

	_, err = reg.DecodeAs("NoSuchEvent", fixture.body(t))
	assert.Error(t, err)
}

func TestDecodeShortBuffer(t *testing.T) {
	reg := mustRegistry(t)
	payload := defaultTradeEvent().payload(t)

	for _, cut := range []int{1, 8, len(payload) / 2, len(payload) - 1} {
		_, err := reg.Decode(payload[:cut])
		assert.ErrorIs(t, err, ErrMalformedEvent, "cut at %d", cut)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	reg := mustRegistry(t)
	payload := defaultTradeEvent().payload(t)

	_, err := reg.Decode(append(payload, 0x00))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestDecodeUnknownDiscriminator(t *testing.T) {
	reg := mustRegistry(t)
	payload := defaultTradeEvent().payload(t)

	other := EventDiscriminator("CreateEvent")
	copy(payload[:DiscriminatorSize], other[:])

	_, err := reg.Decode(payload)
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestLoadIDLRejectsUnknownFieldType(t *testing.T) {
	raw := []byte(`{"name":"bad","events":[{"name":"E","fields":[{"name":"x","type":"string"}]}]}`)

	_, err := LoadIDL(raw)
	assert.Error(t, err)
}

func TestLoadIDLExplicitDiscriminator(t *testing.T) {
	raw := []byte(`{"name":"p","events":[{"name":"E","discriminator":[1,2,3,4,5,6,7,8],"fields":[{"name":"x","type":"u64"}]}]}`)

	reg, err := LoadIDL(raw)
	require.NoError(t, err)

	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 0xff, 0, 0, 0, 0, 0, 0, 0}
	event, err := reg.Decode(payload)
	require.NoError(t, err)

	x, err := event.Uint64("x")
	require.NoError(t, err)
	assert.Equal(t, uint64(255), x)
}
