// Package common — errors.go defines the sentinel errors shared by all
// features. Handlers at the presentation boundary render these verbatim,
// so the messages are written for end users.
package common

import "errors"

// Economy errors (balances, payments).
var (
	// ErrInsufficientBalance — the purse does not hold enough gold.
	ErrInsufficientBalance = errors.New("thy purse contains insufficient coin")
	// ErrSelfPayment — attempted to pay oneself.
	ErrSelfPayment = errors.New("thou canst not pay thyself")
	// ErrInvalidAmount — zero or negative amount.
	ErrInvalidAmount = errors.New("the sum must be positive")
	// ErrRecipientAtCeiling — the transfer would push the recipient past the cap.
	ErrRecipientAtCeiling = errors.New("the recipient's purse cannot hold that much gold")
)

// Claim errors (stipend, labour, admin bounty).
var (
	// ErrOnCooldown — the claim's cooldown has not yet elapsed.
	ErrOnCooldown = errors.New("this claim is still on cooldown")
	// ErrNotPrivileged — the admin bounty requires the privileged tier.
	ErrNotPrivileged = errors.New("only royal administrators may claim this bounty")
)

// Wagering errors.
var (
	// ErrQuotaExhausted — all weekly wager tries are used up.
	ErrQuotaExhausted = errors.New("thou hast exhausted thy weekly gambling allowance")
	// ErrUnknownGame — the game variant is not one of the known tables.
	ErrUnknownGame = errors.New("such games are unknown in our realm")
	// ErrAtCeiling — an account at its ceiling cannot wager (a win could not be credited).
	ErrAtCeiling = errors.New("thy purse is already at its maximum")
)

// Shop errors.
var (
	// ErrItemNotFound — no such item in the guild's shop.
	ErrItemNotFound = errors.New("such merchandise exists not in our realm")
	// ErrBlankItemName — a catalog item must bear a name.
	ErrBlankItemName = errors.New("the ware must bear a name")
	// ErrSoldOut — the item's stock is exhausted.
	ErrSoldOut = errors.New("this treasure is sold out")
)

// Drawing errors.
var (
	// ErrDrawingNotFound — no such drawing, or it has already ended.
	ErrDrawingNotFound = errors.New("no such tournament is proclaimed")
	// ErrAlreadyEntered — the entrant is already registered.
	ErrAlreadyEntered = errors.New("thou hast already entered this tournament")
	// ErrNotHostEligible — the would-be host lacks a configured host role.
	ErrNotHostEligible = errors.New("thou lacketh permission to host tournaments")
	// ErrDrawingBounds — duration, winner count or prize outside the allowed bounds.
	ErrDrawingBounds = errors.New("tournament parameters are outside the allowed bounds")
)

// Admin errors.
var (
	// ErrWrongPassword — the admin password did not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrTooManyAttempts — too many failed logins within the window.
	ErrTooManyAttempts = errors.New("too many attempts, wait an hour")
	// ErrSessionExpired — no active admin session.
	ErrSessionExpired = errors.New("session expired, authenticate again")
)
