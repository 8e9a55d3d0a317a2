package domain

import "net/url"

// InstallRequest is what the installer hands back to the HTTP layer
type InstallRequest struct {
	Shop    string
	State   string // Nonce to store in the state cookie
	AuthURL string
}

// CallbackInput carries everything the OAuth callback received
type CallbackInput struct {
	Shop        string
	HMAC        string
	Code        string
	State       string
	StateCookie string
	Query       url.Values // Full raw query, used for HMAC validation
}

// InstallResult describes a completed installation
type InstallResult struct {
	Shop     string
	ShopName string
}
