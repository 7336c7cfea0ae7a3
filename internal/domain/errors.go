package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrRateLimited       = errors.New("rate limited")
	ErrCampaignBusy      = errors.New("campaign already generating or complete")
	ErrNothingPending    = errors.New("no pending assets")
	ErrProviderFailure   = errors.New("provider failure")
	ErrNoBackground      = errors.New("background synthesis produced no image")
	ErrRenderUnavailable = errors.New("no render backend available")
)
