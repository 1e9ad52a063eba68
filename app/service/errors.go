package service

import "errors"

var (
	ErrPlanCancelled  = errors.New("plan is cancelled")
	ErrSellerMismatch = errors.New("access token does not belong to the expected seller")
	ErrSecretMismatch = errors.New("webhook secret mismatch")
)
