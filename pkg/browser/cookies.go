package browser

import (
	"encoding/json"
	"fmt"
	"os"
)

// Cookie mirrors the JSON shape produced by browser cookie exporters and by
// the login command. Expires is seconds since epoch; <= 0 means a session
// cookie.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// LoadCookies reads a cookie export file. A missing file returns an empty
// slice: collection proceeds unauthenticated and sees whatever public content
// is visible.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cookies: failed to read %s: %w", path, err)
	}

	var cookies []Cookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("cookies: failed to parse %s: %w", path, err)
	}
	return cookies, nil
}

// SaveCookies writes the cookie export file used by later collection runs.
func SaveCookies(path string, cookies []Cookie) error {
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("cookies: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("cookies: failed to write %s: %w", path, err)
	}
	return nil
}
