package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soltrackdao/pump_relay/core/codec"
	"github.com/soltrackdao/pump_relay/core/model"
	"github.com/soltrackdao/pump_relay/utils/logger"
)

// ErrNotifyFailed reports an outbound delivery failure, as opposed to a
// malformed inbound record.
var ErrNotifyFailed = errors.New("notification delivery failed")

const (
	txTypeSwap     = "SWAP"
	txTypeTransfer = "TRANSFER"

	dedupTimeout = 5 * time.Second
)

// per-record terminal outcomes
const (
	OutcomeSkipped    = "skipped"
	OutcomeNotified   = "notified"
	OutcomeSuppressed = "suppressed"
	OutcomeDeduped    = "deduped"
	OutcomeFailed     = "failed"
)

// Deduper records already-relayed signatures within a TTL window. The
// check-and-mark must be one atomic call where the backend allows it.
type Deduper interface {
	CheckAndMark(ctx context.Context, signature string, ttl time.Duration) (bool, error)
}

// Notifier is the outbound chat endpoint.
type Notifier interface {
	PublishText(ctx context.Context, text string) error
	PublishTrade(ctx context.Context, trade model.PumpTradeData) error
}

// TradeStream mirrors normalized trades to a message bus. Optional.
type TradeStream interface {
	PublishTrade(trade model.PumpTradeData) error
}

type WebhookParams struct {
	ProgramID     string
	BaseDecimals  int
	TokenDecimals int
	DedupTTL      time.Duration
	Selector      InstructionSelector
}

type WebhookHandler struct {
	params   WebhookParams
	registry *codec.Registry
	dedup    Deduper
	notifier Notifier
	stream   TradeStream
}

func NewWebhookHandler(params WebhookParams, registry *codec.Registry, dedup Deduper, notifier Notifier, stream TradeStream) *WebhookHandler {
	if params.Selector == nil {
		params.Selector = SelectLastInstruction
	}

	return &WebhookHandler{
		params:   params,
		registry: registry,
		dedup:    dedup,
		notifier: notifier,
		stream:   stream,
	}
}

func PrintStack() string {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	return string(buf[:n])
}

// Handle processes one webhook delivery: an array of transaction records,
// each classified and relayed independently so one bad record never blocks
// the rest of the batch.
func (h *WebhookHandler) Handle(c *gin.Context) {
	r := &Response{
		Code:    http.StatusOK,
		Message: "success",
	}
	httpStatus := http.StatusOK

	defer func() {
		err := recover()
		if err != nil {
			logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err, "Stack": PrintStack()}).Error("WebhookHandler panic")
			r.Code = http.StatusInternalServerError
			r.Message = "internal error"
			c.JSON(http.StatusInternalServerError, r)
		} else {
			c.JSON(httpStatus, r)
		}
	}()

	var inp []HeliusData
	err := c.ShouldBind(&inp)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Error("WebhookHandler parse parameter failed")
		r.Code = http.StatusBadRequest
		r.Message = "invalid input parameters"
		httpStatus = http.StatusBadRequest
		return
	}

	if len(inp) == 0 {
		logger.Logrus.Error("WebhookHandler no transaction records")
		r.Code = http.StatusBadRequest
		r.Message = "no transaction records"
		httpStatus = http.StatusBadRequest
		return
	}

	outcomes := make([]string, 0, len(inp))
	relayed := 0
	deduped := 0
	var firstErr error

	for i := range inp {
		tx := &inp[i]

		outcome, err := h.processRecord(c.Request.Context(), tx)
		outcomes = append(outcomes, outcome)

		switch outcome {
		case OutcomeDeduped:
			deduped++
		case OutcomeFailed:
			if firstErr == nil {
				firstErr = err
			}
			logger.Logrus.WithFields(logrus.Fields{"Signature": tx.Signature, "Type": tx.Type, "ErrMsg": err}).Error("WebhookHandler process record failed")
		default:
			relayed++
		}
	}

	r.Data = outcomes

	switch {
	case firstErr != nil:
		r.Message = firstErr.Error()
		if errors.Is(firstErr, ErrNotifyFailed) {
			r.Code = http.StatusBadGateway
			httpStatus = http.StatusBadGateway
		} else {
			r.Code = http.StatusBadRequest
			httpStatus = http.StatusBadRequest
		}
	case deduped > 0 && relayed == 0:
		r.Code = http.StatusConflict
		r.Message = fmt.Sprintf("duplicated signature within %s", h.params.DedupTTL)
		httpStatus = http.StatusConflict
	}
}

func (h *WebhookHandler) processRecord(ctx context.Context, tx *HeliusData) (string, error) {
	switch tx.Type {
	case txTypeSwap:
		// swap records already arrive summarized, forward the description
		// as-is with no decoding
		if err := h.notifier.PublishText(ctx, tx.Description); err != nil {
			return OutcomeFailed, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
		}

		logger.Logrus.WithFields(logrus.Fields{"Signature": tx.Signature}).Info("relayed swap description")
		return OutcomeNotified, nil

	case txTypeTransfer:
		return h.processTransfer(ctx, tx)

	default:
		return OutcomeSkipped, nil
	}
}

func (h *WebhookHandler) processTransfer(ctx context.Context, tx *HeliusData) (string, error) {
	// helius delivers several TRANSFER callbacks for one transaction, so the
	// signature is marked before any decoding to suppress the
	// near-simultaneous siblings
	dedupCtx, cancel := context.WithTimeout(ctx, dedupTimeout)
	seen, err := h.dedup.CheckAndMark(dedupCtx, tx.Signature, h.params.DedupTTL)
	cancel()
	if err != nil {
		// fail open: a duplicate alert beats a dropped one
		logger.Logrus.WithFields(logrus.Fields{"Signature": tx.Signature, "ErrMsg": err}).Error("dedup store unavailable, relaying anyway")
	} else if seen {
		logger.Logrus.WithFields(logrus.Fields{"Signature": tx.Signature}).Info("duplicated signature suppressed")
		return OutcomeDeduped, nil
	}

	payload, err := extractPumpEvent(tx, h.params.ProgramID, h.params.Selector)
	if err != nil {
		return OutcomeFailed, err
	}
	if payload == nil {
		return OutcomeSuppressed, nil
	}

	event, err := h.registry.Decode(payload)
	if err != nil {
		return OutcomeFailed, err
	}

	trade, err := normalizeTradeEvent(event, tx, h.params.BaseDecimals, h.params.TokenDecimals)
	if err != nil {
		return OutcomeFailed, err
	}

	if err := h.notifier.PublishTrade(ctx, trade); err != nil {
		return OutcomeFailed, fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	if h.stream != nil {
		if err := h.stream.PublishTrade(trade); err != nil {
			logger.Logrus.WithFields(logrus.Fields{"Signature": tx.Signature, "ErrMsg": err}).Error("mirror trade to kafka failed")
		}
	}

	logger.Logrus.WithFields(logrus.Fields{"Trade": trade.String()}).Info("relayed pump.fun trade")
	return OutcomeNotified, nil
}
