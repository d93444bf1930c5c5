package domain

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrTargetNotFound   = errors.New("target not in campaign")
	ErrTargetSent       = errors.New("target already sent")
	ErrInvalidIdentity  = errors.New("invalid handle")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrSessionNotFound  = errors.New("no cached session")
	ErrConfigMissing    = errors.New("no accounts configured")

	ErrAuthFailed          = errors.New("authentication failed")
	ErrTwoFactorRequired   = errors.New("two-factor code required")
	ErrNoAccountsAvailable = errors.New("no accounts available")

	// Classified remote failures returned by account clients.
	ErrAuthExpired = errors.New("session expired")
	ErrTransient   = errors.New("transient remote failure")
	ErrNotFound    = errors.New("remote resource not found")

	ErrEncodeFailed   = errors.New("encode failed")
	ErrEncodeTimeout  = errors.New("encode timed out")
	ErrNoSourceMedia  = errors.New("no source media")
	ErrSourceTooShort = errors.New("source shorter than requested chunk")
	ErrChunkNotFound  = errors.New("chunk not found")
	ErrNoVideoSources = errors.New("no video sources available")

	ErrPublishFailed = errors.New("publish failed")
	ErrShareFailed   = errors.New("share failed")
	ErrMessageFailed = errors.New("message failed")

	ErrInsufficientAudience = errors.New("not enough users available")
)
