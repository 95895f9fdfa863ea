package domain

import "errors"

var (
	// ErrCollectionNotFound signals a search or insert against an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrEmptyInput signals an empty or whitespace-only embedding input.
	ErrEmptyInput = errors.New("empty input text")
	// ErrEmbedding signals a degenerate embedding result (e.g. zero-norm mean vector).
	ErrEmbedding = errors.New("embedding failed")
	// ErrProvider signals an LLM or embedding provider failure
	// (network, auth, quota, timeout, malformed response).
	ErrProvider = errors.New("provider error")
	// ErrInputBlocked signals that the safety screen rejected the user input.
	// Always answered with a fixed safe refusal, never surfaced as a system error.
	ErrInputBlocked = errors.New("input blocked by safety policy")
	// ErrLoopExhausted signals that the agent hit its round cap without resolving.
	ErrLoopExhausted = errors.New("reasoning loop exhausted")
	// ErrVectorDimMismatch signals a vector dimension mismatch on insert.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrUnknownTool signals a tool call naming a tool absent from the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrProductNotFound signals a cart or detail operation against an unknown product.
	ErrProductNotFound = errors.New("product not found")
	// ErrStoreNotFound signals a detail operation against an unknown store.
	ErrStoreNotFound = errors.New("store not found")
	// ErrCartEmpty signals an order attempt on an empty cart.
	ErrCartEmpty = errors.New("cart is empty")
)
