package page

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/identity-console/internal/constants"
	"github.com/fivetwenty-io/identity-console/pkg/ops"
)

// BannerFor turns a load error into the message shown above a page.
func BannerFor(err error) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	if errors.Is(err, constants.ErrNotLoggedIn) || errors.Is(err, constants.ErrTokenExpired) || ops.IsUnauthorized(err) {
		return "Your session has ended. Run 'idops login' to sign in again."
	}

	var apiErr *ops.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}

	switch {
	case apiErr.Kind() == ops.ErrorKindNetwork:
		return "Cannot reach the backend API. Check the API URL and your connection."
	case apiErr.StatusCode == http.StatusForbidden:
		return "You do not have permission to view this page."
	case apiErr.StatusCode == http.StatusNotFound:
		return withDetail("Not found", apiErr.Detail) + " Go back to the list."
	case apiErr.Kind() == ops.ErrorKindServer:
		return withDetail(fmt.Sprintf("The backend failed to answer (status %d)", apiErr.StatusCode), apiErr.Detail)
	default:
		return withDetail(fmt.Sprintf("The request was rejected (status %d)", apiErr.StatusCode), apiErr.Detail)
	}
}

func withDetail(message, detail string) string {
	if detail == "" {
		return message + "."
	}

	return message + ": " + detail + "."
}
