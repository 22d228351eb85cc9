package auth

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// ServiceAccount is the subset of a Firebase service account key the
// verifier needs.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
}

// LoadServiceAccount parses inline when it is set and otherwise reads the key
// file at path.
func LoadServiceAccount(inline, path string) (*ServiceAccount, error) {
	raw := []byte(inline)
	if inline == "" {
		if path == "" {
			return nil, errors.New("no service account configured")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading service account file %s", path)
		}
		raw = data
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, errors.Wrap(err, "parsing service account")
	}
	if sa.ProjectID == "" {
		return nil, errors.New("service account has no project_id")
	}
	return &sa, nil
}
