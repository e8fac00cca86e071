package commerce

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"ott-webapp/internal/model"
)

// orderNotFound matches the message the commerce API returns for orders
// that no longer exist.
var orderNotFound = regexp.MustCompile(`Order with id (\d+) not found`)

// Classify turns an HTTP status and error message into a tagged error.
// payment marks payment endpoints, where client errors are processing
// failures rather than input validation.
func Classify(status int, message string, payment bool) *model.CommerceError {
	kind := model.KindUnknown

	var orderID int64
	if m := orderNotFound.FindStringSubmatch(message); m != nil {
		orderID, _ = strconv.ParseInt(m[1], 10, 64)
	}

	switch {
	case orderID != 0:
		kind = model.KindNotFound
	case status == http.StatusNotFound:
		kind = model.KindNotFound
	case status == http.StatusPaymentRequired || status == http.StatusConflict:
		kind = model.KindProcessing
	case status >= 400 && status < 500 && status != http.StatusUnauthorized && status != http.StatusForbidden:
		if payment {
			kind = model.KindProcessing
		} else {
			kind = model.KindValidation
		}
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = http.StatusText(status)
	}

	return &model.CommerceError{
		Kind:    kind,
		Status:  status,
		Message: message,
		OrderID: orderID,
	}
}
