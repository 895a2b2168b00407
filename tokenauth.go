package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"time"

	"cloud.google.com/go/compute/metadata"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"github.com/cenkalti/backoff/v4"
	"github.com/justinas/alice"
	log "github.com/sirupsen/logrus"

	"github.com/m-lab/go/flagx"
	"github.com/m-lab/go/httpx"
	"github.com/m-lab/go/prometheusx"
	"github.com/m-lab/go/rtx"
	"github.com/m-lab/tokenauth/auth"
	"github.com/m-lab/tokenauth/auth/jwtverifier"
	"github.com/m-lab/tokenauth/handler"
	"github.com/m-lab/tokenauth/metrics"
	"github.com/m-lab/tokenauth/secrets"
	"github.com/m-lab/tokenauth/static"
)

var (
	listenPort   string
	project      string
	header       string
	prefix       string
	secret       string
	secretFile   string
	secretName   string
	leeway       time.Duration
	logLevel     string
	verifierMode = flagx.Enum{
		Options: []string{"hmac", "insecure"},
		Value:   "hmac",
	}
)

func init() {
	flag.StringVar(&listenPort, "port", "8080", "Listen port for the service")
	flag.StringVar(&project, "google-cloud-project", "", "GCP project holding the signing secret; discovered from metadata when empty")
	flag.StringVar(&header, "header", static.DefaultHeader, "Request header carrying the token")
	flag.StringVar(&prefix, "prefix", static.DefaultPrefix, "Literal prefix preceding the token in the header value")
	flag.StringVar(&secret, "secret", "", "Base64 encoded token signing secret")
	flag.StringVar(&secretFile, "secret-file", "", "File containing the base64 encoded token signing secret")
	flag.StringVar(&secretName, "secret-name", "", "Secret Manager secret containing the base64 encoded token signing secret")
	flag.DurationVar(&leeway, "leeway", static.DefaultLeeway, "Clock skew tolerated when checking token expiry")
	flag.StringVar(&logLevel, "log-level", "info", "Log level")
	flag.Var(&verifierMode, "verifier", "Token verification mode: hmac or insecure")

	log.SetFormatter(&log.JSONFormatter{})
}

var mainCtx, mainCancel = context.WithCancel(context.Background())

func main() {
	flag.Parse()
	rtx.Must(flagx.ArgsFromEnv(flag.CommandLine), "Could not parse env args")
	lvl, err := log.ParseLevel(logLevel)
	rtx.Must(err, "Invalid log level %q", logLevel)
	log.SetLevel(lvl)

	// CONFIG - resolve the signing secret once; it is read-only afterwards.
	key, err := loadSecret(mainCtx)
	rtx.Must(err, "Failed to load signing secret")
	cfg := auth.NewConfig(header, prefix, key)

	// VERIFIER - verify token signatures with the shared secret.
	var v auth.TokenVerifier
	switch verifierMode.Value {
	case "insecure":
		v, err = jwtverifier.NewInsecure()
		rtx.Must(err, "Failed to create insecure verifier")
	default:
		rtx.Must(cfg.Validate(), "Invalid token configuration")
		v, err = jwtverifier.NewHMAC(cfg.Secret, jwtverifier.WithLeeway(leeway))
		rtx.Must(err, "Failed to create verifier")
	}
	ic := handler.NewInterceptor(auth.NewTokenAuthenticator(cfg, v))
	chain := alice.New(ic.Intercept)

	prom := prometheusx.MustServeMetrics()
	defer prom.Close()

	mux := http.NewServeMux()
	// Reports the principal bound to the request, or anonymous.
	mux.Handle("/v1/whoami", chain.ThenFunc(handler.Whoami))

	srv := &http.Server{
		Addr:    ":" + listenPort,
		Handler: mux,
	}
	log.WithFields(log.Fields{
		"port":     listenPort,
		"header":   cfg.Header,
		"verifier": v.Mode(),
	}).Info("Listening for requests")
	rtx.Must(httpx.ListenAndServeAsync(srv), "Could not start server")
	defer srv.Close()
	<-mainCtx.Done()
}

// loadSecret returns the signing secret from Secret Manager, a local file, or
// the -secret flag, in that order of preference.
func loadSecret(ctx context.Context) (string, error) {
	switch {
	case secretName != "":
		s, err := loadFromSecretManager(ctx)
		recordLoad("secretmanager", err)
		return s, err
	case secretFile != "":
		s, err := secrets.NewLocalConfig().LoadSecret(ctx, secretFile)
		recordLoad("file", err)
		return s, err
	case secret != "":
		recordLoad("flag", nil)
		return secret, nil
	case verifierMode.Value == "insecure":
		return "", nil
	}
	return "", errors.New("one of -secret, -secret-file or -secret-name is required")
}

func loadFromSecretManager(ctx context.Context) (string, error) {
	if project == "" && metadata.OnGCE() {
		p, err := metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return "", err
		}
		project = p
	}
	if project == "" {
		return "", errors.New("-google-cloud-project is required outside of GCP")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	cfg := secrets.NewConfig(project, secretName)
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = static.SecretLoadMaxElapsedTime
	var s string
	err = backoff.Retry(func() error {
		var err error
		s, err = cfg.LoadSecret(ctx, client)
		if err != nil {
			log.WithFields(log.Fields{"secret": secretName, "error": err}).Warn("Failed to load signing secret")
		}
		return err
	}, backoff.WithContext(b, ctx))
	return s, err
}

func recordLoad(source string, err error) {
	status := "OK"
	if err != nil {
		status = "error"
	}
	metrics.SecretLoadsTotal.WithLabelValues(source, status).Inc()
}
