package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const DefaultLanguageCode = "en"

// UserID is the host-assigned user identifier. Telegram sends it as a
// number; other hosts may use strings, so it is kept opaque.
type UserID string

func (id UserID) String() string {
	return string(id)
}

func (id UserID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// MarshalJSON emits numeric ids as JSON numbers and everything else as strings.
func (id UserID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *UserID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode user id: %w", err)
		}
		*id = UserID(raw)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("decode user id: %w", err)
	}
	*id = UserID(number.String())
	return nil
}

// HostUser is the user object as the host hands it over. Every field but
// ID may be missing.
type HostUser struct {
	ID           UserID `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

type Identity struct {
	ID           UserID `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
}

// NormalizeIdentity fills the defaults a login request expects. It fails
// with ErrIdentityMissing when there is no user or the user has no id.
func NormalizeIdentity(user *HostUser) (Identity, error) {
	if user == nil || user.ID.IsZero() {
		return Identity{}, ErrIdentityMissing
	}

	id := UserID(strings.TrimSpace(string(user.ID)))

	username := strings.TrimSpace(user.Username)
	if username == "" {
		username = FallbackUsername(id)
	}

	languageCode := strings.TrimSpace(user.LanguageCode)
	if languageCode == "" {
		languageCode = DefaultLanguageCode
	}

	return Identity{
		ID:           id,
		Username:     username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		LanguageCode: languageCode,
		IsPremium:    user.IsPremium,
	}, nil
}

func FallbackUsername(id UserID) string {
	return "user_" + string(id)
}

func (i Identity) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(i.FirstName) + " " + strings.TrimSpace(i.LastName))
	if name == "" {
		return i.Username
	}
	return name
}
