package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/smeghaderi/resicord"
)

// ErrorClass tells the resilience layer how to treat an HTTP status code.
type ErrorClass int

const (
	// Success means the request succeeded (e.g. 2xx).
	Success ErrorClass = iota
	// ClassTransient means the error is retriable (e.g. 429, 503).
	ClassTransient
	// ClassPermanent means the error is non-retriable (e.g. 400).
	ClassPermanent
)

// Classifier maps an HTTP status code to an ErrorClass.
//
// Pattern: Strategy — caller injects classification logic without
// modifying the adapter.
type Classifier func(statusCode int) ErrorClass

// DefaultClassifier treats 2xx as success, 408/429 and 5xx as transient,
// and everything else as permanent.
func DefaultClassifier(statusCode int) ErrorClass {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return Success
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return ClassTransient
	case statusCode >= 500:
		return ClassTransient
	default:
		return ClassPermanent
	}
}

// StatusError is returned when the Classifier marks a status code as
// ClassTransient or ClassPermanent.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return "httpx: status " + strconv.Itoa(e.StatusCode)
}

// classify wraps a non-success status code per cl, so the result feeds
// straight into resicord.IsTransient/resicord.IsPermanent for RetryIf.
func classify(cl Classifier, statusCode int) error {
	statusErr := &StatusError{StatusCode: statusCode}

	switch cl(statusCode) {
	case Success:
		return nil
	case ClassTransient:
		return resicord.Transient(statusErr)
	default:
		return resicord.Permanent(statusErr)
	}
}

// GetString issues a GET to url via client and returns the response body
// as a string, classifying non-2xx responses via cl.
func GetString(client *http.Client, cl Classifier, url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", resicord.Transient(fmt.Errorf("httpx: get %s: %w", url, err))
	}
	defer resp.Body.Close()

	if err = classify(cl, resp.StatusCode); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resicord.Transient(fmt.Errorf("httpx: read body of %s: %w", url, err))
	}

	return string(body), nil
}

// Get wraps GetString in a resicord.Try[string], the adapter's on-ramp
// into the rest of the fluent resilience surface.
func Get(client *http.Client, cl Classifier, url string) *resicord.Try[string] {
	return resicord.New(func() (string, error) {
		return GetString(client, cl, url)
	}).Name(url)
}
