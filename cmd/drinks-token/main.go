package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-authgate/coffeeshop/internal/config"
	"github.com/go-authgate/coffeeshop/internal/httpclient"
	"github.com/go-authgate/coffeeshop/internal/jwks"
	"github.com/go-authgate/coffeeshop/internal/logger"
	"github.com/go-authgate/coffeeshop/internal/token"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	domain       string
	audience     string
	clientID     string
	clientSecret string
	rawToken     string
	permission   string
	timeout      time.Duration
	logLevel     string
)

func initConfig() {
	_ = godotenv.Load()

	flag.StringVar(&domain, "domain", getEnv("AUTH0_DOMAIN", "andre-mpoudi.us.auth0.com"), "identity provider domain")
	flag.StringVar(&audience, "audience", getEnv("API_AUDIENCE", "drinks"), "API audience")
	flag.StringVar(&clientID, "client-id", getEnv("CLIENT_ID", ""), "OAuth client ID for client credentials")
	flag.StringVar(&clientSecret, "client-secret", getEnv("CLIENT_SECRET", ""), "OAuth client secret")
	flag.StringVar(&rawToken, "token", getEnv("ACCESS_TOKEN", ""), "check this token instead of requesting one")
	flag.StringVar(&permission, "permission", "get:drinks-detail", "permission the token must grant")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "overall timeout")
	flag.StringVar(&logLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "log level")
	flag.Parse()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// result is printed as JSON on stdout.
type result struct {
	Allowed     bool         `json:"allowed"`
	Code        string       `json:"code,omitempty"`
	Description string       `json:"description,omitempty"`
	Status      int          `json:"status,omitempty"`
	Claims      token.Claims `json:"claims,omitempty"`
}

func main() {
	initConfig()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if !res.Allowed {
		os.Exit(1)
	}
}

func run(ctx context.Context) (*result, error) {
	cfg := &config.Config{
		Auth0Domain: domain,
		APIAudience: audience,
		Algorithms:  token.DefaultAlgorithms,
		JWKSTimeout: timeout,
	}

	if rawToken == "" {
		client := httpclient.NewHTTPClient(httpclient.Config{Timeout: timeout})
		tok, err := fetchToken(ctx, client, cfg.Issuer()+"oauth/token", cfg.APIAudience)
		if err != nil {
			return nil, err
		}
		rawToken = tok
	}

	gate, err := newGate(cfg)
	if err != nil {
		return nil, err
	}
	return check(ctx, gate, rawToken, permission), nil
}

// check runs raw through the gate as if it arrived in an Authorization header.
func check(ctx context.Context, gate *token.Gate, raw, permission string) *result {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+raw)
	claims, err := gate.Authorize(ctx, h, permission)
	if err != nil {
		ae := token.AsAuthError(err)
		return &result{Code: ae.Code(), Description: ae.Description(), Status: ae.Status()}
	}
	return &result{Allowed: true, Claims: claims}
}

// fetchToken performs the client credentials grant against tokenURL.
func fetchToken(ctx context.Context, client *http.Client, tokenURL, audience string) (string, error) {
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("-client-id and -client-secret are required when -token is not set")
	}

	cc := clientcredentials.Config{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		TokenURL:       tokenURL,
		EndpointParams: url.Values{"audience": {audience}},
		AuthStyle:      oauth2.AuthStyleInParams,
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	tok, err := cc.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain token: %w", err)
	}
	return tok.AccessToken, nil
}

func newGate(cfg *config.Config) (*token.Gate, error) {
	client, err := httpclient.New(httpclient.Config{Timeout: cfg.JWKSTimeout})
	if err != nil {
		return nil, err
	}
	src, err := jwks.NewHTTPSource(cfg.JWKSEndpoint(), client, jwks.WithTimeout(cfg.JWKSTimeout))
	if err != nil {
		return nil, err
	}
	verifier, err := token.NewVerifier(token.NewKeyResolver(src), cfg.Issuer(), cfg.APIAudience)
	if err != nil {
		return nil, err
	}
	return token.NewGate(verifier, token.WithLogger(logger.New(os.Stderr, logLevel))), nil
}
