package webapp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/tgsession/internal/domain"
	"github.com/bnema/tgsession/internal/ports"
)

// ParseInitData decodes the raw query-string payload a Telegram mini-app
// receives. The result is unverified; only the backend checks the hash.
func ParseInitData(raw string) (ports.InitDataUnsafe, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ports.InitDataUnsafe{}, fmt.Errorf("%w: empty payload", domain.ErrInvalidInitData)
	}

	values, err := url.ParseQuery(strings.TrimPrefix(trimmed, "#"))
	if err != nil {
		return ports.InitDataUnsafe{}, fmt.Errorf("%w: %v", domain.ErrInvalidInitData, err)
	}

	unsafe := ports.InitDataUnsafe{
		QueryID:    values.Get("query_id"),
		Hash:       values.Get("hash"),
		StartParam: values.Get("start_param"),
	}

	if rawDate := values.Get("auth_date"); rawDate != "" {
		authDate, err := strconv.ParseInt(rawDate, 10, 64)
		if err != nil {
			return ports.InitDataUnsafe{}, fmt.Errorf("%w: auth_date %q", domain.ErrInvalidInitData, rawDate)
		}
		unsafe.AuthDate = authDate
	}

	if rawUser := values.Get("user"); rawUser != "" {
		var user domain.HostUser
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			return ports.InitDataUnsafe{}, fmt.Errorf("%w: decode user: %v", domain.ErrInvalidInitData, err)
		}
		unsafe.User = &user
	}

	return unsafe, nil
}

// EncodeInitData builds a payload in the host's wire format. It is the
// inverse of ParseInitData.
func EncodeInitData(unsafe ports.InitDataUnsafe) (string, error) {
	values := url.Values{}
	if unsafe.QueryID != "" {
		values.Set("query_id", unsafe.QueryID)
	}
	if unsafe.User != nil {
		user, err := json.Marshal(unsafe.User)
		if err != nil {
			return "", fmt.Errorf("encode user: %w", err)
		}
		values.Set("user", string(user))
	}
	if unsafe.AuthDate != 0 {
		values.Set("auth_date", strconv.FormatInt(unsafe.AuthDate, 10))
	}
	if unsafe.StartParam != "" {
		values.Set("start_param", unsafe.StartParam)
	}
	if unsafe.Hash != "" {
		values.Set("hash", unsafe.Hash)
	}
	return values.Encode(), nil
}
