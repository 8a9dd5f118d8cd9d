package spacetraders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	msgUnreachable = "unable to reach the SpaceTraders API"
	msgMaintenance = "the SpaceTraders API is currently down or under maintenance, see https://api.spacetraders.io for more information"
	msgMalformed   = "the SpaceTraders API returned a malformed response"

	maxBodySnippet = 200
)

var maintenancePattern = regexp.MustCompile(`(?i)\b(maintenance|offline|unavailable|down)\b`)

// Exchange is the observable outcome of one HTTP round trip.
type Exchange struct {
	Method string
	Path   string
	// StatusCode is 0 when no response was received
	StatusCode int
	Body       []byte
	// Err is the transport error, nil when the round trip completed
	Err error
}

func (ex Exchange) hasResponse() bool {
	return ex.StatusCode != 0
}

func (ex Exchange) successful() bool {
	return ex.StatusCode >= 200 && ex.StatusCode < 300
}

// Classify normalizes the outcome of an exchange. It returns nil when the
// exchange succeeded and the payload does not signal a failure.
func Classify(ex Exchange) *Error {
	if !ex.hasResponse() {
		switch {
		case errors.Is(ex.Err, context.Canceled):
			return newTerminated("request cancelled", ex.Err)
		case errors.Is(ex.Err, ErrConnectionTerminated):
			return newTerminated("client is stopped", ex.Err)
		}
		return &Error{Kind: KindUpstreamUnavailable, Message: msgUnreachable, Err: ex.Err}
	}

	structured := len(ex.Body) > 0 && gjson.ValidBytes(ex.Body)
	var body gjson.Result
	if structured {
		body = gjson.ParseBytes(ex.Body)
	}

	if ex.successful() && structured {
		if notice, down := CheckMaintenance(ex.StatusCode, body); down {
			return &Error{Kind: KindUpstreamUnavailable, Message: notice, StatusCode: ex.StatusCode}
		}
	}

	if msg := body.Get("error.message"); structured && msg.Exists() {
		return &Error{
			Kind:       KindValidation,
			Message:    msg.String(),
			Code:       body.Get("error.code").String(),
			StatusCode: ex.StatusCode,
		}
	}

	if !ex.successful() {
		return &Error{
			Kind:       KindUpstreamUnavailable,
			Message:    unstructuredMessage(ex),
			StatusCode: ex.StatusCode,
			Err:        ex.Err,
		}
	}

	if !structured {
		return &Error{Kind: KindUpstreamUnavailable, Message: msgMalformed, StatusCode: ex.StatusCode, Err: ex.Err}
	}

	return nil
}

// CheckMaintenance reports whether a successful payload announces an outage,
// returning the notice to surface to the caller.
func CheckMaintenance(statusCode int, body gjson.Result) (string, bool) {
	if statusCode < 200 || statusCode >= 300 || !body.IsObject() {
		return "", false
	}

	if m := body.Get("maintenance"); m.Exists() && m.Type != gjson.Null && m.Type != gjson.False {
		for _, candidate := range []string{m.Get("message").String(), body.Get("status").String()} {
			if candidate != "" {
				return candidate, true
			}
		}
		if m.Type == gjson.String && m.String() != "" {
			return m.String(), true
		}
		return msgMaintenance, true
	}

	if s := body.Get("status"); s.Type == gjson.String && maintenancePattern.MatchString(s.String()) {
		return s.String(), true
	}

	return "", false
}

// classifyAdmission normalizes an error returned by the scheduler before the
// exchange ran.
func classifyAdmission(err error) *Error {
	var e *Error
	switch {
	case errors.As(err, &e):
		return e
	case errors.Is(err, ErrSchedulerStopped):
		return newTerminated("client is stopped", err)
	case errors.Is(err, context.Canceled):
		return newTerminated("request cancelled", err)
	default:
		return &Error{Kind: KindUpstreamUnavailable, Message: msgUnreachable, Err: err}
	}
}

func unstructuredMessage(ex Exchange) string {
	msg := fmt.Sprintf("unexpected status %d %s", ex.StatusCode, http.StatusText(ex.StatusCode))
	snippet := strings.TrimSpace(string(ex.Body))
	if snippet == "" {
		return msg
	}
	if len(snippet) > maxBodySnippet {
		cut := maxBodySnippet
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut] + "..."
	}
	return msg + ": " + snippet
}
