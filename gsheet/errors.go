package gsheet

import (
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/teranos/dugout/errors"
)

// classify wraps a Sheets or Drive API error and marks it with the sentinel
// matching its HTTP status, the same kinds internal/httpclient.CheckStatus
// reports for the other fetchers.
func classify(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return wrapped
	}
	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.WithHint(
			errors.Mark(wrapped, errors.ErrAuthFailure),
			"check sheets.credentials_file and that the spreadsheet is shared with the account")
	case http.StatusNotFound:
		return errors.Mark(wrapped, errors.ErrNotFound)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return errors.Mark(wrapped, errors.ErrTimeout)
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return errors.Mark(wrapped, errors.ErrServiceUnavailable)
	}
	return wrapped
}
