package entity

import "errors"

// Domain errors
var (
	// Flow errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoActiveFlow   = errors.New("no active flow")
	ErrUnknownVariant = errors.New("unknown flow variant")
	ErrFlowComplete   = errors.New("flow is already complete")

	// Pricing engine errors
	ErrPricingTransport = errors.New("pricing engine unreachable")
	ErrPricingProtocol  = errors.New("pricing engine protocol error")
	ErrPricingContract  = errors.New("pricing engine response missing price")

	// Document errors
	ErrDocumentMissing = errors.New("document reference missing")
	ErrDocument        = errors.New("document download failed")

	// Assistant errors
	ErrAssistant      = errors.New("assistant backend failed")
	ErrEmptyAssistant = errors.New("assistant returned empty reply")
)
