package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/ccauth/internal/auth/domain"
	"github.com/aussiebroadwan/ccauth/pkg/slogx"
)

// GrantState is a step of a token request through the grant validator.
type GrantState int

const (
	GrantReceived GrantState = iota
	GrantClientAuthenticated
	GrantTokenIssued
	GrantRejected
)

func (s GrantState) String() string {
	switch s {
	case GrantReceived:
		return "received"
	case GrantClientAuthenticated:
		return "client_authenticated"
	case GrantTokenIssued:
		return "token_issued"
	case GrantRejected:
		return "rejected"
	}
	return "unknown"
}

// TokenRequest is a token endpoint request after transport decoding.
type TokenRequest struct {
	GrantType    string
	ClientID     string
	ClientSecret string
	Scope        string

	// Secure reports whether the request arrived over TLS.
	Secure bool
}

// GrantResult is where a request ended up and how it got there.
type GrantResult struct {
	State  GrantState
	Trail  []GrantState
	Client domain.Client
	Token  domain.Token
}

func (r *GrantResult) enter(s GrantState) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

// TokenGrant is a grant served by the token endpoint.
type TokenGrant interface {
	GrantType() string
	Exchange(ctx context.Context, req TokenRequest) (GrantResult, error)
}

// AuthorizationGrant is a grant served by the authorization endpoint.
// Nothing implements it: client credentials never involve a resource owner,
// so the authorization endpoint has no grant to dispatch to.
type AuthorizationGrant interface {
	ResponseType() string
}

var _ TokenGrant = (*ClientCredentialsGrant)(nil)

// ClientCredentialsGrant validates RFC 6749 §4.4 token requests. Checks run
// in a fixed order: transport, grant type, client authentication, issuance.
type ClientCredentialsGrant struct {
	Clients                *ClientService
	Issuer                 *TokenIssuer
	AllowInsecureTransport bool
}

func (g *ClientCredentialsGrant) GrantType() string {
	return domain.GrantTypeClientCredentials
}

// Exchange runs req through the grant state machine. On rejection the
// result's State is GrantRejected and the error names the failed check.
func (g *ClientCredentialsGrant) Exchange(ctx context.Context, req TokenRequest) (GrantResult, error) {
	l := slogx.FromContext(ctx)

	var res GrantResult
	res.enter(GrantReceived)

	reject := func(err error) (GrantResult, error) {
		res.enter(GrantRejected)
		l.Info("token request rejected", "client_id", req.ClientID, "reason", err.Error())
		return res, err
	}

	if !req.Secure && !g.AllowInsecureTransport {
		return reject(ErrInsecureTransport)
	}
	if req.GrantType != domain.GrantTypeClientCredentials {
		return reject(ErrUnsupportedGrantType)
	}

	client, err := g.Clients.Authenticate(ctx, req.ClientID, req.ClientSecret)
	if err != nil {
		if !errors.Is(err, ErrInvalidClient) {
			l.Error("client authentication errored", "client_id", req.ClientID, "error", err)
		}
		return reject(err)
	}
	res.Client = client
	res.enter(GrantClientAuthenticated)

	token, err := g.Issuer.Issue(ctx, client, req.Scope)
	if err != nil {
		if !errors.Is(err, ErrIssuanceFailed) {
			err = errors.Join(ErrIssuanceFailed, err)
		}
		return reject(err)
	}
	res.Token = token
	res.enter(GrantTokenIssued)
	return res, nil
}
