package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/gomesmr/remod/internal/stackspot"
)

// credentialsFile mirrors the JSON credentials file layout.
type credentialsFile struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Realm        string `json:"realm"`
}

// LoadCredentials assembles StackSpot credentials from, in increasing
// precedence: a .env file in the current directory, the JSON credentials
// file at path, and STACKSPOT_* environment variables. A missing .env or
// credentials file is not an error as long as the final set validates.
func LoadCredentials(path string) (stackspot.Credentials, error) {
	// Populates the process environment only for variables not already set,
	// so real env vars keep precedence over .env entries.
	_ = godotenv.Load()

	var creds stackspot.Credentials

	data, err := os.ReadFile(path)
	if err == nil {
		var file credentialsFile
		if jsonErr := json.Unmarshal(data, &file); jsonErr != nil {
			return stackspot.Credentials{}, fmt.Errorf("invalid credentials file %s: %w", path, jsonErr)
		}
		creds.ClientID = file.ClientID
		creds.ClientSecret = file.ClientSecret
		creds.Realm = file.Realm
	} else if !os.IsNotExist(err) {
		return stackspot.Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}

	if v := os.Getenv("STACKSPOT_CLIENT_ID"); v != "" {
		creds.ClientID = v
	}
	if v := os.Getenv("STACKSPOT_CLIENT_SECRET"); v != "" {
		creds.ClientSecret = v
	}
	if v := os.Getenv("STACKSPOT_REALM"); v != "" {
		creds.Realm = v
	}

	if err := creds.Validate(); err != nil {
		return stackspot.Credentials{}, fmt.Errorf(
			"missing StackSpot credentials (set STACKSPOT_CLIENT_ID/STACKSPOT_CLIENT_SECRET or provide %s): %w", path, err)
	}
	return creds, nil
}
