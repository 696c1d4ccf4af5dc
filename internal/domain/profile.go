package domain

import (
	"fmt"
	"strings"
)

// HostProfile describes a host environment the CLI can replay: the raw
// signed init data (inline or through a secret reference) and a few host
// attributes.
type HostProfile struct {
	Name     string
	InitData string
	// InitDataRef points to a secret-store entry holding the init data.
	InitDataRef string
	Platform    string
	VideoID     string
}

func (p HostProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(p.InitData) == "" && strings.TrimSpace(p.InitDataRef) == "" {
		return fmt.Errorf("init data or init data ref is required")
	}
	return nil
}

func InitDataSecretKey(profile string) string {
	return fmt.Sprintf("profiles/%s/init_data", strings.TrimSpace(profile))
}
